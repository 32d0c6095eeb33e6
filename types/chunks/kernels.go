// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/xslices"
)

// Kernel is the signature every per-block numeric reduction shares:
// it reduces one block along the given axes, keeping the reduced axes with
// extent 1 when keepdims is set.
//
// Any kernel satisfying the aggregation contract -- kernel applied to the
// concatenation of per-block partials equals the kernel applied to the
// unpartitioned block -- can serve as both the chunk and the aggregate
// function of a blocked reduction.
type Kernel func(c *Chunk, axes []int, keepdims bool) (*Chunk, error)

// NormalizeAxes resolves an axes specification against a rank: nil (or
// empty) selects all axes, negative axes count from the end. The result is
// sorted and checked for duplicates and range.
func NormalizeAxes(rank int, axes []int) ([]int, error) {
	if len(axes) == 0 {
		return xslices.Iota(0, rank), nil
	}
	normalized := make([]int, len(axes))
	for ii, axis := range axes {
		adjusted := axis
		if adjusted < 0 {
			adjusted += rank
		}
		if adjusted < 0 || adjusted >= rank {
			return nil, errors.Errorf("invalid axis %d for a rank-%d block", axis, rank)
		}
		normalized[ii] = adjusted
	}
	slices.Sort(normalized)
	for ii := 1; ii < len(normalized); ii++ {
		if normalized[ii] == normalized[ii-1] {
			return nil, errors.Errorf("duplicate axis %d in axes specification %v", normalized[ii], axes)
		}
	}
	return normalized, nil
}

// reducedDims returns the output dimensions after reducing dims along the
// (normalized) axes, under the given keepdims policy.
func reducedDims(dims, axes []int, keepdims bool) []int {
	reduced := make(map[int]bool, len(axes))
	for _, axis := range axes {
		reduced[axis] = true
	}
	out := make([]int, 0, len(dims))
	for axis, dim := range dims {
		switch {
		case !reduced[axis]:
			out = append(out, dim)
		case keepdims:
			out = append(out, 1)
		}
	}
	return out
}

// reduce folds every element of c into its output position with combine,
// starting each output position from init. The output position of an input
// element is its coordinate tuple with the reduced axes collapsed.
func reduce(c *Chunk, axes []int, keepdims bool, init float64, combine func(acc, v float64) float64) (*Chunk, error) {
	axes, err := NormalizeAxes(c.Rank(), axes)
	if err != nil {
		return nil, err
	}
	outDims := reducedDims(c.Dims, axes, keepdims)
	out := &Chunk{Dims: outDims, Data: make([]float64, xslices.Prod(outDims))}
	for ii := range out.Data {
		out.Data[ii] = init
	}

	// outStride[axis] is the contribution of the input coordinate on that
	// axis to the output flat index; zero on reduced axes.
	reduced := make(map[int]bool, len(axes))
	for _, axis := range axes {
		reduced[axis] = true
	}
	outStrides := stridesFor(outDims)
	outStride := make([]int, c.Rank())
	outAxis := 0
	for axis := range c.Dims {
		if reduced[axis] {
			if keepdims {
				outAxis++
			}
			continue
		}
		outStride[axis] = outStrides[outAxis]
		outAxis++
	}

	coords := make([]int, c.Rank())
	for inFlat := 0; ; inFlat++ {
		outFlat := 0
		for axis, coord := range coords {
			outFlat += coord * outStride[axis]
		}
		out.Data[outFlat] = combine(out.Data[outFlat], c.Data[inFlat])
		if !nextCoords(coords, c.Dims) {
			break
		}
	}
	return out, nil
}

// Sum reduces by adding elements along the given axes.
func Sum(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, 0, func(acc, v float64) float64 { return acc + v })
}

// Min reduces to the smallest element along the given axes.
func Min(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, math.Inf(1), math.Min)
}

// Max reduces to the largest element along the given axes.
func Max(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, math.Inf(-1), math.Max)
}

// Any reduces to 1 where any element along the given axes is nonzero,
// 0 otherwise.
func Any(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, 0, func(acc, v float64) float64 {
		if v != 0 {
			return 1
		}
		return acc
	})
}

// All reduces to 1 where every element along the given axes is nonzero,
// 0 otherwise.
func All(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, 1, func(acc, v float64) float64 {
		if v == 0 {
			return 0
		}
		return acc
	})
}

// count reduces to the number of elements aggregated into each output
// position.
func count(c *Chunk, axes []int, keepdims bool) (*Chunk, error) {
	return reduce(c, axes, keepdims, 0, func(acc, _ float64) float64 { return acc + 1 })
}

// Div returns the elementwise quotient of two same-shaped chunks.
func Div(a, b *Chunk) (*Chunk, error) {
	if err := sameDims(a.Dims, b.Dims); err != nil {
		return nil, errors.WithMessage(err, "chunks.Div")
	}
	out := &Chunk{Dims: xslices.Copy(a.Dims), Data: make([]float64, len(a.Data))}
	for ii := range a.Data {
		out.Data[ii] = a.Data[ii] / b.Data[ii]
	}
	return out, nil
}
