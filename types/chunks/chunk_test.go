// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstruction(t *testing.T) {
	c := FromFlat([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.Equal(t, []int{2, 3}, c.Dims)
	require.Equal(t, 2, c.Rank())
	require.Equal(t, 6, c.Size())
	require.Equal(t, 6.0, c.At(1, 2))

	scalar := FromScalar(3.5)
	require.Equal(t, 0, scalar.Rank())
	require.Equal(t, 3.5, scalar.Scalar())

	require.Panics(t, func() { FromFlat([]float64{1, 2}, 3) })
	require.Panics(t, func() { NewChunk(2, 0) })
	require.Panics(t, func() { c.Scalar() })
}

func TestNormalizeAxes(t *testing.T) {
	axes, err := NormalizeAxes(3, nil)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, axes)

	axes, err = NormalizeAxes(3, []int{-1, 0})
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, axes)

	_, err = NormalizeAxes(2, []int{2})
	require.Error(t, err)
	_, err = NormalizeAxes(2, []int{-3})
	require.Error(t, err)
	_, err = NormalizeAxes(3, []int{1, -2})
	require.Error(t, err) // -2 normalizes to 1, a duplicate
}

func TestSum(t *testing.T) {
	c := FromFlat([]float64{1, 2, 3, 4, 5, 6}, 2, 3)

	got, err := Sum(c, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []int{2}, got.Dims)
	require.Equal(t, []float64{6, 15}, got.Data)

	got, err = Sum(c, []int{1}, true)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, got.Dims)
	require.Equal(t, []float64{6, 15}, got.Data)

	got, err = Sum(c, []int{0}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{5, 7, 9}, got.Data)

	got, err = Sum(c, nil, false)
	require.NoError(t, err)
	require.Equal(t, 0, got.Rank())
	require.Equal(t, 21.0, got.Scalar())

	got, err = Sum(c, nil, true)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1}, got.Dims)
	require.Equal(t, 21.0, got.Scalar())

	_, err = Sum(c, []int{5}, false)
	require.Error(t, err)
}

func TestMinMax(t *testing.T) {
	c := FromFlat([]float64{4, -2, 7, 1, 9, -5}, 2, 3)

	minOut, err := Min(c, []int{0}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{1, -2, -5}, minOut.Data)

	maxOut, err := Max(c, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{7, 9}, maxOut.Data)
}

func TestAnyAll(t *testing.T) {
	c := FromFlat([]float64{0, 0, 3, 1, 2, 5}, 2, 3)

	anyOut, err := Any(c, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, anyOut.Data)

	allOut, err := All(c, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, allOut.Data)

	anyOut, err = Any(c, []int{0}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 1}, anyOut.Data)

	allOut, err = All(c, []int{0}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1}, allOut.Data)
}

func TestReduceThreeAxes(t *testing.T) {
	// 2x2x2 with values 1..8; reduce the two outer axes.
	c := FromFlat([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)
	got, err := Sum(c, []int{0, 2}, false)
	require.NoError(t, err)
	require.Equal(t, []int{2}, got.Dims)
	// Positions (i, 0, k) sum to 1+2+5+6; (i, 1, k) to 3+4+7+8.
	require.Equal(t, []float64{14, 22}, got.Data)

	got, err = Sum(c, []int{0, 2}, true)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 1}, got.Dims)
	require.Equal(t, []float64{14, 22}, got.Data)
}

func TestMapAndDiv(t *testing.T) {
	c := FromFlat([]float64{1, 4, 9, 16}, 4)
	require.Equal(t, []float64{1, 2, 3, 4}, c.Map(math.Sqrt).Data)

	quot, err := Div(FromFlat([]float64{6, 9}, 2), FromFlat([]float64{2, 3}, 2))
	require.NoError(t, err)
	require.Equal(t, []float64{3, 3}, quot.Data)

	_, err = Div(FromFlat([]float64{6, 9}, 2), FromFlat([]float64{2, 3, 4}, 3))
	require.Error(t, err)
}
