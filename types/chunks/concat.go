// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/xslices"
)

// Offsets returns the block offset table for a list of block extents along
// one axis: offsets[i] is the sum of extents[0:i], so offsets[0] == 0. The
// offset translates a block-local index along that axis into a global one.
func Offsets(extents []int) []int {
	offsets := make([]int, len(extents))
	total := 0
	for ii, extent := range extents {
		offsets[ii] = total
		total += extent
	}
	return offsets
}

// Concat joins same-structured values, laid out row-major on a grid of
// gridDims blocks, along the given axes. It is the block concatenation
// primitive the cross-block aggregator applies before the aggregate kernel.
//
// All parts must have the same structure (type and rank) and may differ in
// extent only along the concatenated axes; the extent of a part along
// axes[j] may depend only on its grid coordinate j.
func Concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	if len(parts) == 0 {
		return nil, errors.New("chunks.Concat: no blocks to concatenate")
	}
	if len(gridDims) != len(axes) {
		return nil, errors.Errorf("chunks.Concat: grid has %d axes but %d concatenation axes given",
			len(gridDims), len(axes))
	}
	if xslices.Prod(gridDims) != len(parts) {
		return nil, errors.Errorf("chunks.Concat: grid %v requires %d blocks, got %d",
			gridDims, xslices.Prod(gridDims), len(parts))
	}
	return parts[0].concat(parts, gridDims, axes)
}

func (c *Chunk) concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	cs, err := valuesAs[*Chunk](parts)
	if err != nil {
		return nil, err
	}
	return ConcatGrid(cs, gridDims, axes)
}

func (c *IntChunk) concat(parts []Value, gridDims []int, axes []int) (Value, error) {
	cs, err := valuesAs[*IntChunk](parts)
	if err != nil {
		return nil, err
	}
	return ConcatGridInt(cs, gridDims, axes)
}

// ConcatGrid concatenates float chunks laid out on a grid. See Concat.
func ConcatGrid(parts []*Chunk, gridDims []int, axes []int) (*Chunk, error) {
	dimsList := xslices.Map(parts, func(p *Chunk) []int { return p.Dims })
	dataList := xslices.Map(parts, func(p *Chunk) []float64 { return p.Data })
	dims, data, err := concatGridData(dimsList, dataList, gridDims, axes)
	if err != nil {
		return nil, err
	}
	return &Chunk{Dims: dims, Data: data}, nil
}

// ConcatGridInt concatenates integer chunks laid out on a grid. See Concat.
func ConcatGridInt(parts []*IntChunk, gridDims []int, axes []int) (*IntChunk, error) {
	dimsList := xslices.Map(parts, func(p *IntChunk) []int { return p.Dims })
	dataList := xslices.Map(parts, func(p *IntChunk) []int { return p.Data })
	dims, data, err := concatGridData(dimsList, dataList, gridDims, axes)
	if err != nil {
		return nil, err
	}
	return &IntChunk{Dims: dims, Data: data}, nil
}

// concatGridData implements grid concatenation on raw dimension/data pairs,
// shared by the float and integer chunk types.
func concatGridData[T any](dimsList [][]int, dataList [][]T, gridDims, axes []int) ([]int, []T, error) {
	if len(dimsList) == 0 {
		return nil, nil, errors.New("no blocks to concatenate")
	}
	if len(gridDims) != len(axes) {
		return nil, nil, errors.Errorf("grid has %d axes but %d concatenation axes given", len(gridDims), len(axes))
	}
	if xslices.Prod(gridDims) != len(dimsList) {
		return nil, nil, errors.Errorf("grid %v requires %d blocks, got %d",
			gridDims, xslices.Prod(gridDims), len(dimsList))
	}
	rank := len(dimsList[0])
	for _, axis := range axes {
		if axis < 0 || axis >= rank {
			return nil, nil, errors.Errorf("concatenation axis %d out of range for rank %d", axis, rank)
		}
	}

	// Extent along axes[j] must be a function of the grid coordinate j
	// alone; extents along all other axes must agree everywhere.
	axisExtents := make([][]int, len(axes))
	for jj, gridDim := range gridDims {
		axisExtents[jj] = make([]int, gridDim)
	}
	gridCoords := make([]int, len(gridDims))
	for part := 0; ; part++ {
		dims := dimsList[part]
		if len(dims) != rank {
			return nil, nil, errors.Errorf("concatenated blocks have mismatching ranks: %d vs %d", len(dims), rank)
		}
		for axis := 0; axis < rank; axis++ {
			jj := indexOf(axes, axis)
			if jj < 0 {
				if dims[axis] != dimsList[0][axis] {
					return nil, nil, errors.Errorf(
						"concatenated blocks mismatch on non-concatenated axis %d: %v vs %v",
						axis, dims, dimsList[0])
				}
				continue
			}
			recorded := axisExtents[jj][gridCoords[jj]]
			if recorded == 0 {
				axisExtents[jj][gridCoords[jj]] = dims[axis]
			} else if recorded != dims[axis] {
				return nil, nil, errors.Errorf(
					"concatenated blocks mismatch on axis %d at grid position %d: %d vs %d",
					axis, gridCoords[jj], dims[axis], recorded)
			}
		}
		if !nextCoords(gridCoords, gridDims) {
			break
		}
	}

	outDims := xslices.Copy(dimsList[0])
	axisOffsets := make([][]int, len(axes))
	for jj, axis := range axes {
		outDims[axis] = xslices.Sum(axisExtents[jj])
		axisOffsets[jj] = Offsets(axisExtents[jj])
	}
	outStrides := stridesFor(outDims)
	outData := make([]T, xslices.Prod(outDims))

	gridCoords = make([]int, len(gridDims))
	for part := 0; ; part++ {
		dims := dimsList[part]
		base := 0
		for jj, axis := range axes {
			base += axisOffsets[jj][gridCoords[jj]] * outStrides[axis]
		}
		coords := make([]int, rank)
		for inFlat := 0; ; inFlat++ {
			outFlat := base
			for axis, coord := range coords {
				outFlat += coord * outStrides[axis]
			}
			outData[outFlat] = dataList[part][inFlat]
			if !nextCoords(coords, dims) {
				break
			}
		}
		if !nextCoords(gridCoords, gridDims) {
			break
		}
	}
	return outDims, outData, nil
}

// Stack joins same-shaped float chunks along a new leading axis.
func Stack(parts []*Chunk) (*Chunk, error) {
	if len(parts) == 0 {
		return nil, errors.New("chunks.Stack: no blocks to stack")
	}
	for _, p := range parts[1:] {
		if err := sameDims(parts[0].Dims, p.Dims); err != nil {
			return nil, errors.WithMessage(err, "chunks.Stack")
		}
	}
	dims := append([]int{len(parts)}, parts[0].Dims...)
	data := make([]float64, 0, len(parts)*parts[0].Size())
	for _, p := range parts {
		data = append(data, p.Data...)
	}
	return &Chunk{Dims: dims, Data: data}, nil
}

// StackInt joins same-shaped integer chunks along a new leading axis.
func StackInt(parts []*IntChunk) (*IntChunk, error) {
	if len(parts) == 0 {
		return nil, errors.New("chunks.StackInt: no blocks to stack")
	}
	for _, p := range parts[1:] {
		if err := sameDims(parts[0].Dims, p.Dims); err != nil {
			return nil, errors.WithMessage(err, "chunks.StackInt")
		}
	}
	dims := append([]int{len(parts)}, parts[0].Dims...)
	data := make([]int, 0, len(parts)*parts[0].Size())
	for _, p := range parts {
		data = append(data, p.Data...)
	}
	return &IntChunk{Dims: dims, Data: data}, nil
}

// Choose selects, for every position of sel, the element of stacked at the
// leading-axis index sel gives for that position: out[pos] =
// stacked[sel[pos], pos...]. The stacked chunk has one extra leading axis
// relative to sel.
func Choose(sel *IntChunk, stacked *IntChunk) (*IntChunk, error) {
	if stacked.Rank() != sel.Rank()+1 {
		return nil, errors.Errorf("chunks.Choose: stacked rank %d must be selector rank %d plus one",
			stacked.Rank(), sel.Rank())
	}
	if err := sameDims(stacked.Dims[1:], sel.Dims); err != nil {
		return nil, errors.WithMessage(err, "chunks.Choose")
	}
	depth := stacked.Dims[0]
	out := &IntChunk{Dims: xslices.Copy(sel.Dims), Data: make([]int, len(sel.Data))}
	size := sel.Size()
	for pos, which := range sel.Data {
		if which < 0 || which >= depth {
			return nil, errors.Errorf("chunks.Choose: selector %d out of range for %d stacked blocks", which, depth)
		}
		out.Data[pos] = stacked.Data[which*size+pos]
	}
	return out, nil
}

// valuesAs converts a slice of Value to their concrete type, or reports the
// first mismatch.
func valuesAs[T Value](parts []Value) ([]T, error) {
	out := make([]T, len(parts))
	for ii, v := range parts {
		t, ok := v.(T)
		if !ok {
			return nil, errors.Errorf("aggregation group mixes value types: block %d is %T", ii, v)
		}
		out[ii] = t
	}
	return out, nil
}

// indexOf returns the position of needle in haystack, or -1.
func indexOf(haystack []int, needle int) int {
	for ii, v := range haystack {
		if v == needle {
			return ii
		}
	}
	return -1
}
