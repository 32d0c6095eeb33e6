// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/xslices"
)

// ArgPartial is the block-local result of an arg-reduction: per output
// position, the extreme value found in the block along the reduced axis and
// its index local to the block. The index is meaningful globally only after
// the block's offset along the reduced axis is added.
type ArgPartial struct {
	Value *Chunk
	Index *IntChunk
}

var _ Value = (*ArgPartial)(nil)

// ArgKernel computes the (extremum, local index) pair of one block along a
// single axis. The axis is removed from the outputs. The same kernel drives
// both phases of a blocked arg-reduction: per block, and again over the
// per-block candidates stacked along a new leading axis.
type ArgKernel func(c *Chunk, axis int) (*ArgPartial, error)

// ArgMin returns, along the given axis, the smallest value of the block and
// its index. Ties resolve to the first (lowest-index) occurrence.
func ArgMin(c *Chunk, axis int) (*ArgPartial, error) {
	return argReduce(c, axis, false)
}

// ArgMax returns, along the given axis, the largest value of the block and
// its index. Ties resolve to the first (lowest-index) occurrence.
func ArgMax(c *Chunk, axis int) (*ArgPartial, error) {
	return argReduce(c, axis, true)
}

func argReduce(c *Chunk, axis int, isMax bool) (*ArgPartial, error) {
	rank := c.Rank()
	if rank == 0 {
		return nil, errors.New("arg-reduction requires a block of rank >= 1")
	}
	if axis < 0 || axis >= rank {
		return nil, errors.Errorf("invalid axis %d for a rank-%d block", axis, rank)
	}
	outer := xslices.Prod(c.Dims[:axis])
	axisDim := c.Dims[axis]
	inner := xslices.Prod(c.Dims[axis+1:])

	outDims := make([]int, 0, rank-1)
	outDims = append(outDims, c.Dims[:axis]...)
	outDims = append(outDims, c.Dims[axis+1:]...)
	value := &Chunk{Dims: outDims, Data: make([]float64, outer*inner)}
	index := &IntChunk{Dims: xslices.Copy(outDims), Data: make([]int, outer*inner)}

	for oo := 0; oo < outer; oo++ {
		srcBase := oo * axisDim * inner
		dstBase := oo * inner
		for in := 0; in < inner; in++ {
			best := c.Data[srcBase+in]
			bestIdx := 0
			for kk := 1; kk < axisDim; kk++ {
				candidate := c.Data[srcBase+kk*inner+in]
				if (isMax && candidate > best) || (!isMax && candidate < best) {
					best = candidate
					bestIdx = kk
				}
			}
			value.Data[dstBase+in] = best
			index.Data[dstBase+in] = bestIdx
		}
	}
	return &ArgPartial{Value: value, Index: index}, nil
}

// Rank returns the number of axes of the partial's fields.
func (p *ArgPartial) Rank() int { return p.Value.Rank() }

func (p *ArgPartial) concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	ps, err := valuesAs[*ArgPartial](parts)
	if err != nil {
		return nil, err
	}
	values, err := ConcatGrid(fieldOf(ps, func(p *ArgPartial) *Chunk { return p.Value }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	indices, err := ConcatGridInt(xslices.Map(ps, func(p *ArgPartial) *IntChunk { return p.Index }), gridDims, axes)
	if err != nil {
		return nil, err
	}
	return &ArgPartial{Value: values, Index: indices}, nil
}

// AddLeadingOffsets adds offsets[b] to every element of the b-th slab of a
// stacked index chunk (first axis indexes the slab). It is how block-local
// indices are translated to global ones before the winning block is chosen.
func AddLeadingOffsets(stacked *IntChunk, offsets []int) (*IntChunk, error) {
	if stacked.Rank() == 0 || stacked.Dims[0] != len(offsets) {
		return nil, errors.Errorf("chunks.AddLeadingOffsets: %d offsets for stacked dimensions %v",
			len(offsets), stacked.Dims)
	}
	out := &IntChunk{Dims: xslices.Copy(stacked.Dims), Data: make([]int, len(stacked.Data))}
	slabSize := xslices.Prod(stacked.Dims[1:])
	for b, offset := range offsets {
		base := b * slabSize
		for ii := 0; ii < slabSize; ii++ {
			out.Data[base+ii] = stacked.Data[base+ii] + offset
		}
	}
	return out, nil
}

// SplitGrid cuts a dense chunk into the grid of blocks described by the
// per-axis block extents: blockdims[axis] lists, in order, the extent of
// each block along that axis, and must sum to the chunk's dimension there.
// Blocks are returned in row-major block-index order.
func SplitGrid(c *Chunk, blockdims [][]int) ([]*Chunk, error) {
	if len(blockdims) != c.Rank() {
		return nil, errors.Errorf("SplitGrid: got block extents for %d axes, block has rank %d",
			len(blockdims), c.Rank())
	}
	offsets := make([][]int, c.Rank())
	gridDims := make([]int, c.Rank())
	for axis, extents := range blockdims {
		if xslices.Sum(extents) != c.Dims[axis] {
			return nil, errors.Errorf("SplitGrid: block extents %v on axis %d sum to %d, dimension is %d",
				extents, axis, xslices.Sum(extents), c.Dims[axis])
		}
		offsets[axis] = Offsets(extents)
		gridDims[axis] = len(extents)
	}

	strides := stridesFor(c.Dims)
	blocks := make([]*Chunk, 0, xslices.Prod(gridDims))
	gridCoords := make([]int, c.Rank())
	for {
		dims := make([]int, c.Rank())
		base := 0
		for axis := range dims {
			dims[axis] = blockdims[axis][gridCoords[axis]]
			base += offsets[axis][gridCoords[axis]] * strides[axis]
		}
		block := &Chunk{Dims: dims, Data: make([]float64, xslices.Prod(dims))}
		coords := make([]int, c.Rank())
		for outFlat := 0; ; outFlat++ {
			inFlat := base
			for axis, coord := range coords {
				inFlat += coord * strides[axis]
			}
			block.Data[outFlat] = c.Data[inFlat]
			if !nextCoords(coords, dims) {
				break
			}
		}
		blocks = append(blocks, block)
		if !nextCoords(gridCoords, gridDims) {
			break
		}
	}
	return blocks, nil
}
