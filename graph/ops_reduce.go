// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/chunks"
	"github.com/blockflow/blockflow/types/xslices"
)

// ChunkFn is the block-local phase of a blocked reduction: it reduces one
// block along the given axes into a partial result. It is always invoked
// with keepdims=true so partials stay shape-aligned on the reduced axes.
type ChunkFn func(c *chunks.Chunk, axes []int, keepdims bool) (chunks.Value, error)

// AggFn is the cross-block phase of a blocked reduction: it reduces the
// concatenation of block-local partials along the same axes into the final
// block.
//
// The pair (ChunkFn, AggFn) must satisfy the aggregation contract: AggFn
// applied to the concatenation of per-block ChunkFn results must equal the
// pair applied to the unpartitioned data. All built-in pairs do.
type AggFn func(v chunks.Value, axes []int, keepdims bool) (chunks.Value, error)

// Reduction builds the general two-phase blocked reduction of x along the
// given axes: chunkFn runs on every block (keeping reduced axes at extent
// 1), then per group of blocks agreeing on all non-reduced block indices,
// aggFn runs on the concatenation of the partials along the reduced axes.
//
// A nil axes reduces all axes; negative axes count from the end. With
// keepdims, reduced axes survive in the result with extent 1 (and block
// index fixed at 0); otherwise they are removed.
//
// Reduction panics on invalid axes. Kernel failures surface at execution
// time.
func Reduction(x *Array, chunkFn ChunkFn, aggFn AggFn, axes []int, keepdims bool) *Array {
	axes = reductionAxes(x, axes)

	partials := Blockwise(x, "reduce-chunk", func(input any) (any, error) {
		c, ok := input.(*chunks.Chunk)
		if !ok {
			return nil, errors.Errorf("reduce-chunk: expected a float block, got %T", input)
		}
		return chunkFn(c, axes, true)
	})

	out := Contract(partials, axes, "reduce-agg", func(parts []any, gridDims []int) (any, error) {
		values := make([]chunks.Value, len(parts))
		for ii, part := range parts {
			v, ok := part.(chunks.Value)
			if !ok {
				return nil, errors.Errorf("reduce-agg: block %d is not a reducible value, got %T", ii, part)
			}
			values[ii] = v
		}
		joined, err := chunks.Concat(values, gridDims, axes)
		if err != nil {
			return nil, err
		}
		return aggFn(joined, axes, keepdims)
	})

	if keepdims {
		out = reinsertReducedAxes(out, axes)
	}
	return out
}

// reductionAxes normalizes an axes specification against x's rank, or
// panics with an InvalidArgument error.
func reductionAxes(x *Array, axes []int) []int {
	normalized, err := chunks.NormalizeAxes(x.Rank(), axes)
	if err != nil {
		exceptions.Panicf("reduction over array of rank %d: %v", x.Rank(), err)
	}
	return normalized
}

// reinsertReducedAxes rewrites a contracted array for keepdims semantics:
// each reduced axis position gets block index 0 and a single block of
// extent 1. Only the array's own freshly created keys are rewritten.
func reinsertReducedAxes(a *Array, axes []int) *Array {
	for _, key := range a.Keys() {
		newKey := Key{Name: a.name, Index: xslices.InsertMany(key.Index, axes, 0)}
		a.graph.rekey(key, newKey)
	}
	return &Array{
		graph:     a.graph,
		name:      a.name,
		blockdims: xslices.InsertMany(a.blockdims, axes, []int{1}),
	}
}

// chunkKernel adapts a plain per-block kernel into the block-local phase of
// a reduction.
func chunkKernel(kernel chunks.Kernel) ChunkFn {
	return func(c *chunks.Chunk, axes []int, keepdims bool) (chunks.Value, error) {
		return kernel(c, axes, keepdims)
	}
}

// aggKernel adapts a plain per-block kernel into the cross-block phase of a
// reduction. Simple associative kernels (sum, min, max, any, all) reuse the
// same kernel for both phases: their block-local partial is already in
// final form, so concatenate-then-reapply is all the aggregation needed.
func aggKernel(kernel chunks.Kernel) AggFn {
	return func(v chunks.Value, axes []int, keepdims bool) (chunks.Value, error) {
		c, ok := v.(*chunks.Chunk)
		if !ok {
			return nil, errors.Errorf("aggregate kernel expected a float block, got %T", v)
		}
		return kernel(c, axes, keepdims)
	}
}

// Sum reduces x by summation along the given axes (nil for all axes).
func Sum(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x, chunkKernel(chunks.Sum), aggKernel(chunks.Sum), axes, keepdims)
}

// Min reduces x to its smallest elements along the given axes (nil for all
// axes).
func Min(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x, chunkKernel(chunks.Min), aggKernel(chunks.Min), axes, keepdims)
}

// Max reduces x to its largest elements along the given axes (nil for all
// axes).
func Max(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x, chunkKernel(chunks.Max), aggKernel(chunks.Max), axes, keepdims)
}

// Any reduces x to 1 where any element along the given axes is nonzero, 0
// otherwise.
func Any(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x, chunkKernel(chunks.Any), aggKernel(chunks.Any), axes, keepdims)
}

// All reduces x to 1 where every element along the given axes is nonzero, 0
// otherwise.
func All(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x, chunkKernel(chunks.All), aggKernel(chunks.All), axes, keepdims)
}
