// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

// Package chunks implements the dense in-memory block of a partitioned
// array, along with the per-block numeric kernels (sum, min, max, any, all,
// moment sums, argmin/argmax) and the grid concatenation primitive used to
// join block-local partial results.
//
// A Chunk is a row-major n-dimensional block of float64 values. An IntChunk
// is its integer-valued counterpart, used for index results of
// arg-reductions. Both, together with the partial-result records
// (MeanPartial, VariancePartial, ArgPartial), implement the Value interface,
// which is what flows through the task graph built by the graph package.
//
// Kernels follow the usual convention for axes: reducing with keepdims=true
// retains every reduced axis with extent 1, keepdims=false removes it.
// Reducing a rank-1 chunk without keepdims yields a rank-0 (scalar) chunk.
package chunks

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/xslices"
)

// Chunk is one dense block of a partitioned array: a row-major
// n-dimensional array of float64 values. A rank-0 chunk holds one scalar.
//
// Any/All results are represented as 0/1 valued chunks.
type Chunk struct {
	Dims []int
	Data []float64
}

// IntChunk is an integer-valued block, used for the index outputs of
// arg-reductions.
type IntChunk struct {
	Dims []int
	Data []int
}

// Value is anything that can live in one cell of a blocked computation:
// a plain chunk, an index chunk, or one of the structured partial-result
// records carried between the two phases of a blocked reduction.
//
// The set of implementations is closed on purpose: each one defines how a
// grid of same-structured values concatenates along a set of axes, which is
// all the cross-block aggregator needs to be generic over them.
type Value interface {
	// Rank is the number of axes of the value.
	Rank() int

	// concat joins parts, laid out row-major on a grid of gridDims blocks,
	// along the given axes. All parts have the same structure as the
	// receiver, which is parts[0].
	concat(parts []Value, gridDims []int, axes []int) (Value, error)
}

var (
	_ Value = (*Chunk)(nil)
	_ Value = (*IntChunk)(nil)
)

// NewChunk returns a zero-initialized chunk of the given dimensions.
// It panics if any dimension is <= 0. No dimensions make a scalar chunk.
func NewChunk(dims ...int) *Chunk {
	checkDims(dims)
	return &Chunk{Dims: xslices.Copy(dims), Data: make([]float64, xslices.Prod(dims))}
}

// FromFlat returns a chunk wrapping a copy of the given row-major data.
// It panics if the data length doesn't match the dimensions.
func FromFlat(data []float64, dims ...int) *Chunk {
	checkDims(dims)
	if len(data) != xslices.Prod(dims) {
		exceptions.Panicf("chunks.FromFlat: data has %d elements, dimensions %v require %d",
			len(data), dims, xslices.Prod(dims))
	}
	return &Chunk{Dims: xslices.Copy(dims), Data: xslices.Copy(data)}
}

// FromScalar returns a rank-0 chunk holding the given value.
func FromScalar(value float64) *Chunk {
	return &Chunk{Data: []float64{value}}
}

// NewIntChunk returns a zero-initialized integer chunk of the given dimensions.
func NewIntChunk(dims ...int) *IntChunk {
	checkDims(dims)
	return &IntChunk{Dims: xslices.Copy(dims), Data: make([]int, xslices.Prod(dims))}
}

// IntFromFlat returns an integer chunk wrapping a copy of the given
// row-major data. It panics if the data length doesn't match the dimensions.
func IntFromFlat(data []int, dims ...int) *IntChunk {
	checkDims(dims)
	if len(data) != xslices.Prod(dims) {
		exceptions.Panicf("chunks.IntFromFlat: data has %d elements, dimensions %v require %d",
			len(data), dims, xslices.Prod(dims))
	}
	return &IntChunk{Dims: xslices.Copy(dims), Data: xslices.Copy(data)}
}

func checkDims(dims []int) {
	for _, dim := range dims {
		if dim <= 0 {
			exceptions.Panicf("chunks: cannot create a block with an axis of dimension <= 0, got %v", dims)
		}
	}
}

// Rank returns the number of axes of the chunk.
func (c *Chunk) Rank() int { return len(c.Dims) }

// Size returns the total number of elements.
func (c *Chunk) Size() int { return xslices.Prod(c.Dims) }

// Scalar returns the single element of a size-1 chunk of any rank.
// It panics if the chunk has more than one element.
func (c *Chunk) Scalar() float64 {
	if c.Size() != 1 {
		exceptions.Panicf("Chunk.Scalar: chunk of dimensions %v is not a scalar", c.Dims)
	}
	return c.Data[0]
}

// At returns the element at the given coordinates, one per axis.
func (c *Chunk) At(coords ...int) float64 {
	return c.Data[flatIndex(c.Dims, coords)]
}

// Clone returns a deep copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	return &Chunk{Dims: xslices.Copy(c.Dims), Data: xslices.Copy(c.Data)}
}

// Map returns a new chunk with fn applied to every element.
func (c *Chunk) Map(fn func(float64) float64) *Chunk {
	out := &Chunk{Dims: xslices.Copy(c.Dims), Data: make([]float64, len(c.Data))}
	for ii, v := range c.Data {
		out.Data[ii] = fn(v)
	}
	return out
}

// String implements fmt.Stringer.
func (c *Chunk) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chunk%v%v", c.Dims, c.Data)
	return b.String()
}

// Rank returns the number of axes of the chunk.
func (c *IntChunk) Rank() int { return len(c.Dims) }

// Size returns the total number of elements.
func (c *IntChunk) Size() int { return xslices.Prod(c.Dims) }

// Scalar returns the single element of a size-1 chunk of any rank.
// It panics if the chunk has more than one element.
func (c *IntChunk) Scalar() int {
	if c.Size() != 1 {
		exceptions.Panicf("IntChunk.Scalar: chunk of dimensions %v is not a scalar", c.Dims)
	}
	return c.Data[0]
}

// At returns the element at the given coordinates, one per axis.
func (c *IntChunk) At(coords ...int) int {
	return c.Data[flatIndex(c.Dims, coords)]
}

// String implements fmt.Stringer.
func (c *IntChunk) String() string {
	return fmt.Sprintf("IntChunk%v%v", c.Dims, c.Data)
}

// stridesFor returns the row-major strides of the given dimensions.
func stridesFor(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for axis := len(dims) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= dims[axis]
	}
	return strides
}

// flatIndex converts per-axis coordinates to a row-major flat index.
func flatIndex(dims, coords []int) int {
	if len(coords) != len(dims) {
		exceptions.Panicf("chunks: got %d coordinates for a rank-%d block", len(coords), len(dims))
	}
	flat := 0
	for axis, coord := range coords {
		if coord < 0 || coord >= dims[axis] {
			exceptions.Panicf("chunks: coordinate %d out of range for axis %d with dimension %d",
				coord, axis, dims[axis])
		}
		flat = flat*dims[axis] + coord
	}
	return flat
}

// nextCoords advances coords as a row-major odometer over dims.
// It returns false after the last position.
func nextCoords(coords, dims []int) bool {
	for axis := len(dims) - 1; axis >= 0; axis-- {
		coords[axis]++
		if coords[axis] < dims[axis] {
			return true
		}
		coords[axis] = 0
	}
	return false
}

// sameDims returns an error if the two dimension lists differ.
func sameDims(a, b []int) error {
	if len(a) != len(b) {
		return errors.Errorf("blocks have mismatching ranks: %v vs %v", a, b)
	}
	for axis := range a {
		if a[axis] != b[axis] {
			return errors.Errorf("blocks have mismatching dimensions: %v vs %v", a, b)
		}
	}
	return nil
}
