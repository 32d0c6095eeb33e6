// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"math"

	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/chunks"
	"github.com/blockflow/blockflow/types/xslices"
)

// BlockFn transforms the value of one block independently of all others.
type BlockFn func(input any) (any, error)

// GroupFn combines a group of block values laid out row-major on a grid of
// gridDims blocks (one axis per contracted axis, in ascending axis order).
type GroupFn func(parts []any, gridDims []int) (any, error)

// Blockwise derives a new array by applying fn to every block of x,
// preserving the block structure. opName prefixes the new array's name.
//
// fn need not preserve block shapes: the derived array keeps x's blockdims
// as its partition-grid bookkeeping, which is all downstream grouping uses.
func Blockwise(x *Array, opName string, fn BlockFn) *Array {
	out := &Array{
		graph:     x.graph,
		name:      x.graph.names.New(opName),
		blockdims: x.blockdims,
	}
	for _, key := range x.Keys() {
		dep := Key{Name: x.name, Index: key.Index}
		out.graph.add(&Task{
			Key:  Key{Name: out.name, Index: key.Index},
			Deps: []Key{dep},
			Fn: func(inputs []any) (any, error) {
				return fn(inputs[0])
			},
		})
	}
	return out
}

// Contract derives a new array with the given axes removed: every output
// block depends on all blocks of x that share its block index on the
// remaining axes, and fn combines them. Blocks reach fn in row-major order
// over their block indices along the contracted axes.
//
// axes must be normalized (sorted, unique, in range); that is the caller's
// obligation.
func Contract(x *Array, axes []int, opName string, fn GroupFn) *Array {
	numBlocks := x.NumBlocks()
	gridDims := xslices.Map(axes, func(axis int) int { return numBlocks[axis] })

	contracted := make(map[int]bool, len(axes))
	for _, axis := range axes {
		contracted[axis] = true
	}
	keptAxes := make([]int, 0, x.Rank()-len(axes))
	outBlockdims := make([][]int, 0, x.Rank()-len(axes))
	outNumBlocks := make([]int, 0, x.Rank()-len(axes))
	for axis := range x.blockdims {
		if contracted[axis] {
			continue
		}
		keptAxes = append(keptAxes, axis)
		outBlockdims = append(outBlockdims, x.blockdims[axis])
		outNumBlocks = append(outNumBlocks, numBlocks[axis])
	}

	out := &Array{
		graph:     x.graph,
		name:      x.graph.names.New(opName),
		blockdims: outBlockdims,
	}
	outIndex := make([]int, len(outNumBlocks))
	for {
		// One dependency per position of the contracted grid, row-major.
		deps := make([]Key, 0, xslices.Prod(gridDims))
		gridIndex := make([]int, len(gridDims))
		for {
			depIndex := make([]int, x.Rank())
			for ii, axis := range keptAxes {
				depIndex[axis] = outIndex[ii]
			}
			for jj, axis := range axes {
				depIndex[axis] = gridIndex[jj]
			}
			deps = append(deps, Key{Name: x.name, Index: depIndex})
			if !nextIndex(gridIndex, gridDims) {
				break
			}
		}
		out.graph.add(&Task{
			Key:  Key{Name: out.name, Index: xslices.Copy(outIndex)},
			Deps: deps,
			Fn: func(inputs []any) (any, error) {
				return fn(inputs, gridDims)
			},
		})
		if !nextIndex(outIndex, outNumBlocks) {
			break
		}
	}
	return out
}

// MapBlocks derives a new array by applying fn to every element of x.
func MapBlocks(x *Array, opName string, fn func(float64) float64) *Array {
	return Blockwise(x, opName, func(input any) (any, error) {
		c, ok := input.(*chunks.Chunk)
		if !ok {
			return nil, errors.Errorf("%s: expected a float block, got %T", opName, input)
		}
		return c.Map(fn), nil
	})
}

// Abs derives a new array with the absolute value of every element of x.
func Abs(x *Array) *Array { return MapBlocks(x, "abs", math.Abs) }

// Sqrt derives a new array with the square root of every element of x.
func Sqrt(x *Array) *Array { return MapBlocks(x, "sqrt", math.Sqrt) }

// Pow derives a new array with every element of x raised to the given power.
func Pow(x *Array, power float64) *Array {
	return MapBlocks(x, "pow", func(v float64) float64 { return math.Pow(v, power) })
}
