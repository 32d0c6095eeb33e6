// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"github.com/pkg/errors"
)

// MeanPartial carries the sufficient statistics of a mean over one block:
// per output position, the number of elements aggregated and their sum.
//
// Merging partials from disjoint blocks (by concatenating and summing the
// fields) yields the partial of the union, which is what makes the blocked
// mean exact for any partitioning up to floating-point rounding.
type MeanPartial struct {
	Count, Total *Chunk
}

// VariancePartial carries the sufficient statistics of a variance over one
// block: per output position, the element count, the sum and the sum of
// squares, accumulated in float64.
type VariancePartial struct {
	Count, Sum, SumSq *Chunk
}

var (
	_ Value = (*MeanPartial)(nil)
	_ Value = (*VariancePartial)(nil)
)

// MeanChunk is the block-local kernel of the blocked mean: it reduces one
// block along the given axes into a MeanPartial.
func MeanChunk(c *Chunk, axes []int, keepdims bool) (*MeanPartial, error) {
	n, err := count(c, axes, keepdims)
	if err != nil {
		return nil, err
	}
	total, err := Sum(c, axes, keepdims)
	if err != nil {
		return nil, err
	}
	return &MeanPartial{Count: n, Total: total}, nil
}

// MeanAggregate is the cross-block kernel of the blocked mean: given the
// concatenation of per-block partials, it sums counts and totals along the
// reduced axes and divides.
func MeanAggregate(p *MeanPartial, axes []int, keepdims bool) (*Chunk, error) {
	n, err := Sum(p.Count, axes, keepdims)
	if err != nil {
		return nil, err
	}
	total, err := Sum(p.Total, axes, keepdims)
	if err != nil {
		return nil, err
	}
	return Div(total, n)
}

// VarianceChunk is the block-local kernel of the blocked variance.
func VarianceChunk(c *Chunk, axes []int, keepdims bool) (*VariancePartial, error) {
	n, err := count(c, axes, keepdims)
	if err != nil {
		return nil, err
	}
	sum, err := Sum(c, axes, keepdims)
	if err != nil {
		return nil, err
	}
	sumSq, err := Sum(c.Map(func(v float64) float64 { return v * v }), axes, keepdims)
	if err != nil {
		return nil, err
	}
	return &VariancePartial{Count: n, Sum: sum, SumSq: sumSq}, nil
}

// VarianceAggregate is the cross-block kernel of the blocked variance:
// variance = x2/n - (x/n)^2, rescaled by n/(n-ddof) when ddof is nonzero.
//
// This is the naive two-moment formula: it merges associatively across any
// partitioning, at the cost of catastrophic cancellation when the data's
// mean is large relative to its spread. That trade-off is kept knowingly;
// callers needing better conditioning should center their data first.
func VarianceAggregate(p *VariancePartial, ddof int, axes []int, keepdims bool) (*Chunk, error) {
	n, err := Sum(p.Count, axes, keepdims)
	if err != nil {
		return nil, err
	}
	x, err := Sum(p.Sum, axes, keepdims)
	if err != nil {
		return nil, err
	}
	x2, err := Sum(p.SumSq, axes, keepdims)
	if err != nil {
		return nil, err
	}
	out := &Chunk{Dims: n.Dims, Data: make([]float64, len(n.Data))}
	for ii := range out.Data {
		nn := n.Data[ii]
		mean := x.Data[ii] / nn
		variance := x2.Data[ii]/nn - mean*mean
		if ddof != 0 {
			if nn <= float64(ddof) {
				return nil, errors.Errorf("variance with ddof=%d requires more than %d elements per position, got %g",
					ddof, ddof, nn)
			}
			variance = variance * nn / (nn - float64(ddof))
		}
		out.Data[ii] = variance
	}
	return out, nil
}

// Rank returns the number of axes of the partial's fields.
func (p *MeanPartial) Rank() int { return p.Count.Rank() }

// Rank returns the number of axes of the partial's fields.
func (p *VariancePartial) Rank() int { return p.Count.Rank() }

func (p *MeanPartial) concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	ps, err := valuesAs[*MeanPartial](parts)
	if err != nil {
		return nil, err
	}
	counts, err := ConcatGrid(fieldOf(ps, func(p *MeanPartial) *Chunk { return p.Count }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	totals, err := ConcatGrid(fieldOf(ps, func(p *MeanPartial) *Chunk { return p.Total }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	return &MeanPartial{Count: counts, Total: totals}, nil
}

func (p *VariancePartial) concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	ps, err := valuesAs[*VariancePartial](parts)
	if err != nil {
		return nil, err
	}
	counts, err := ConcatGrid(fieldOf(ps, func(p *VariancePartial) *Chunk { return p.Count }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	sums, err := ConcatGrid(fieldOf(ps, func(p *VariancePartial) *Chunk { return p.Sum }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	sumSqs, err := ConcatGrid(fieldOf(ps, func(p *VariancePartial) *Chunk { return p.SumSq }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	return &VariancePartial{Count: counts, Sum: sums, SumSq: sumSqs}, nil
}

// fieldOf projects one chunk field out of a slice of records.
func fieldOf[P any](parts []P, get func(P) *Chunk) []*Chunk {
	out := make([]*Chunk, len(parts))
	for ii, p := range parts {
		out[ii] = get(p)
	}
	return out
}
