// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/pkg/errors"

	"github.com/blockflow/blockflow/types/chunks"
)

// Mean reduces x to the arithmetic mean along the given axes (nil for all
// axes). Per block it carries (count, sum) sufficient statistics, so the
// result is exact for any partitioning up to floating-point rounding.
func Mean(x *Array, axes []int, keepdims bool) *Array {
	return Reduction(x,
		func(c *chunks.Chunk, axes []int, keepdims bool) (chunks.Value, error) {
			return chunks.MeanChunk(c, axes, keepdims)
		},
		func(v chunks.Value, axes []int, keepdims bool) (chunks.Value, error) {
			p, ok := v.(*chunks.MeanPartial)
			if !ok {
				return nil, errors.Errorf("mean aggregate expected mean partials, got %T", v)
			}
			return chunks.MeanAggregate(p, axes, keepdims)
		},
		axes, keepdims)
}

// Variance reduces x to the variance along the given axes (nil for all
// axes), with ddof delta degrees of freedom (0 for the population variance,
// 1 for the sample variance).
//
// Per block it carries (count, sum, sum of squares) in float64 and combines
// them with the two-moment formula x2/n - (x/n)^2; see
// chunks.VarianceAggregate for the numerical trade-off this implies.
func Variance(x *Array, axes []int, keepdims bool, ddof int) *Array {
	return Reduction(x,
		func(c *chunks.Chunk, axes []int, keepdims bool) (chunks.Value, error) {
			return chunks.VarianceChunk(c, axes, keepdims)
		},
		func(v chunks.Value, axes []int, keepdims bool) (chunks.Value, error) {
			p, ok := v.(*chunks.VariancePartial)
			if !ok {
				return nil, errors.Errorf("variance aggregate expected variance partials, got %T", v)
			}
			return chunks.VarianceAggregate(p, ddof, axes, keepdims)
		},
		axes, keepdims)
}

// Std reduces x to the standard deviation along the given axes: the
// elementwise square root of Variance.
func Std(x *Array, axes []int, keepdims bool, ddof int) *Array {
	return Sqrt(Variance(x, axes, keepdims, ddof))
}
