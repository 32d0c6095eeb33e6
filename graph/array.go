// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/exceptions"

	"github.com/blockflow/blockflow/types/chunks"
	"github.com/blockflow/blockflow/types/xslices"
)

// Array is a handle to one partitioned array in a Graph: a name plus the
// per-axis block extents describing how the logical array is partitioned.
// The blocks themselves live as tasks in the Graph, keyed by
// (name, block-index tuple).
//
// An Array is an immutable description; ops derive new Arrays, they never
// change an existing one.
type Array struct {
	graph     *Graph
	name      string
	blockdims [][]int
}

// Graph returns the graph holding the array's tasks.
func (a *Array) Graph() *Graph { return a.graph }

// Name returns the array's unique name.
func (a *Array) Name() string { return a.name }

// Blockdims returns the per-axis ordered block extents. The returned slices
// are owned by the array and must not be modified.
func (a *Array) Blockdims() [][]int { return a.blockdims }

// Rank returns the number of axes of the array.
func (a *Array) Rank() int { return len(a.blockdims) }

// Shape returns the logical dimensions of the array: per axis, the sum of
// its block extents.
func (a *Array) Shape() []int {
	return xslices.Map(a.blockdims, func(extents []int) int { return xslices.Sum(extents) })
}

// NumBlocks returns, per axis, how many blocks the array is cut into.
func (a *Array) NumBlocks() []int {
	return xslices.Map(a.blockdims, func(extents []int) int { return len(extents) })
}

// Keys returns the keys of all blocks of the array, in row-major
// block-index order.
func (a *Array) Keys() []Key {
	numBlocks := a.NumBlocks()
	keys := make([]Key, 0, xslices.Prod(numBlocks))
	index := make([]int, a.Rank())
	for {
		keys = append(keys, Key{Name: a.name, Index: xslices.Copy(index)})
		if !nextIndex(index, numBlocks) {
			break
		}
	}
	return keys
}

// FromDense creates a source array in g by cutting a dense chunk into the
// blocks described by blockdims: blockdims[axis] lists, in order, the
// extent of each block along that axis and must sum to the chunk's
// dimension there. Every block becomes a materialized source task.
//
// It panics if blockdims don't tile the chunk exactly.
func FromDense(g *Graph, dense *chunks.Chunk, blockdims [][]int) *Array {
	blocks, err := chunks.SplitGrid(dense, blockdims)
	if err != nil {
		exceptions.Panicf("graph.FromDense: %v", err)
	}
	a := &Array{
		graph:     g,
		name:      g.names.New("array"),
		blockdims: xslices.Map(blockdims, xslices.Copy[int]),
	}
	for ii, key := range a.Keys() {
		g.add(&Task{Key: key, Value: blocks[ii]})
	}
	return a
}

// RegularBlockdims cuts each dimension into blocks of the given size (the
// last block of an axis may be smaller). A helper for the common case of
// evenly partitioned arrays.
func RegularBlockdims(dims []int, blockSizes []int) [][]int {
	if len(blockSizes) != len(dims) {
		exceptions.Panicf("graph.RegularBlockdims: got %d block sizes for %d dimensions", len(blockSizes), len(dims))
	}
	blockdims := make([][]int, len(dims))
	for axis, dim := range dims {
		size := blockSizes[axis]
		if size <= 0 {
			exceptions.Panicf("graph.RegularBlockdims: block size on axis %d must be positive, got %d", axis, size)
		}
		for remaining := dim; remaining > 0; remaining -= size {
			blockdims[axis] = append(blockdims[axis], min(size, remaining))
		}
	}
	return blockdims
}

// nextIndex advances index as a row-major odometer over numBlocks.
// It returns false after the last position.
func nextIndex(index, numBlocks []int) bool {
	for axis := len(numBlocks) - 1; axis >= 0; axis-- {
		index[axis]++
		if index[axis] < numBlocks[axis] {
			return true
		}
		index[axis] = 0
	}
	return false
}
