// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/chunks"
)

// ArgMin builds the blocked arg-reduction returning, along the given axis,
// the global flat index of the smallest element. Ties resolve to the first
// (lowest global index) occurrence, within and across blocks.
func ArgMin(x *Array, axis int) *Array {
	return ArgReduction(x, chunks.ArgMin, axis)
}

// ArgMax builds the blocked arg-reduction returning, along the given axis,
// the global flat index of the largest element. Ties resolve to the first
// (lowest global index) occurrence, within and across blocks.
func ArgMax(x *Array, axis int) *Array {
	return ArgReduction(x, chunks.ArgMax, axis)
}

// ArgReduction builds the general blocked arg-reduction of x along exactly
// one axis. The result is an integer array (the axis removed) of global
// flat indices along that axis.
//
// The same kernel drives both phases. Per block it produces the block's
// extreme value and its local index. Per group of blocks aligned on the
// other axes, the merge stacks the candidate values along a new leading
// axis, runs the kernel over it to pick the winning block per position, and
// translates that block's local index to a global one by adding the block's
// offset (the prefix sum of block extents along the reduced axis, broadcast
// over the stacked local indices, the winner then chosen per position).
//
// Unlike Reduction, an arg-reduction cannot span multiple axes or default
// to all axes: a global flat index is only defined along one axis. An
// invalid axis panics with a corrective hint before any task is created.
//
// A single-block axis goes through the same merge path with an offset table
// of [0]; there is no special case.
func ArgReduction(x *Array, kernel chunks.ArgKernel, axis int) *Array {
	rank := x.Rank()
	adjusted := axis
	if adjusted < 0 {
		adjusted += rank
	}
	if rank == 0 || adjusted < 0 || adjusted >= rank {
		exceptions.Panicf("arg-reductions reduce exactly one axis: axis=%d is invalid for an array of rank %d.\n"+
			"For example:\n"+
			"  Before:  ArgMin(x, %d)\n"+
			"  After:   ArgMin(x, 0)\n",
			axis, rank, axis)
	}
	axis = adjusted
	extents := x.blockdims[axis]

	partials := Blockwise(x, "arg-chunk", func(input any) (any, error) {
		c, ok := input.(*chunks.Chunk)
		if !ok {
			return nil, errors.Errorf("arg-chunk: expected a float block, got %T", input)
		}
		return kernel(c, axis)
	})

	return Contract(partials, []int{axis}, "arg-agg", func(parts []any, gridDims []int) (any, error) {
		pairs := make([]*chunks.ArgPartial, len(parts))
		for ii, part := range parts {
			pair, ok := part.(*chunks.ArgPartial)
			if !ok {
				return nil, errors.Errorf("arg-agg: block %d is not an arg partial, got %T", ii, part)
			}
			pairs[ii] = pair
		}

		values := make([]*chunks.Chunk, len(pairs))
		indices := make([]*chunks.IntChunk, len(pairs))
		for ii, pair := range pairs {
			values[ii] = pair.Value
			indices[ii] = pair.Index
		}
		stackedValues, err := chunks.Stack(values)
		if err != nil {
			return nil, err
		}
		// Which block holds the global extremum, per output position. The
		// kernel's own tie-breaking picks the lowest block index, which
		// composed with the per-block first-occurrence rule keeps the
		// global first-occurrence semantics.
		winners, err := kernel(stackedValues, 0)
		if err != nil {
			return nil, err
		}

		stackedIndices, err := chunks.StackInt(indices)
		if err != nil {
			return nil, err
		}
		globalIndices, err := chunks.AddLeadingOffsets(stackedIndices, chunks.Offsets(extents))
		if err != nil {
			return nil, err
		}
		return chunks.Choose(winners.Index, globalIndices)
	})
}
