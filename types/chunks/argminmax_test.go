// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgMin(t *testing.T) {
	c := FromFlat([]float64{4, 3, 5}, 3)
	p, err := ArgMin(c, 0)
	require.NoError(t, err)
	require.Equal(t, 0, p.Value.Rank())
	require.Equal(t, 3.0, p.Value.Scalar())
	require.Equal(t, 1, p.Index.Scalar())
}

func TestArgMaxAlongAxes(t *testing.T) {
	// [[1, 9, 2], [8, 0, 2]]
	c := FromFlat([]float64{1, 9, 2, 8, 0, 2}, 2, 3)

	p, err := ArgMax(c, 1)
	require.NoError(t, err)
	require.Equal(t, []int{2}, p.Value.Dims)
	require.Equal(t, []float64{9, 8}, p.Value.Data)
	require.Equal(t, []int{1, 0}, p.Index.Data)

	p, err = ArgMax(c, 0)
	require.NoError(t, err)
	require.Equal(t, []int{3}, p.Value.Dims)
	require.Equal(t, []float64{8, 9, 2}, p.Value.Data)
	require.Equal(t, []int{1, 0, 0}, p.Index.Data)
}

// Ties must resolve to the first occurrence along the axis.
func TestArgTieBreaking(t *testing.T) {
	c := FromFlat([]float64{7, 7, 7}, 3)
	p, err := ArgMin(c, 0)
	require.NoError(t, err)
	require.Equal(t, 0, p.Index.Scalar())
	p, err = ArgMax(c, 0)
	require.NoError(t, err)
	require.Equal(t, 0, p.Index.Scalar())
}

func TestArgReduceInvalidAxis(t *testing.T) {
	c := FromFlat([]float64{1, 2}, 2)
	_, err := ArgMin(c, 1)
	require.Error(t, err)
	_, err = ArgMin(c, -1)
	require.Error(t, err)
	_, err = ArgMin(FromScalar(1), 0)
	require.Error(t, err)
}

func TestArgPartialConcat(t *testing.T) {
	// Two blocks of a 2x3 array cut along axis 1, arg-reduced on axis 0:
	// partials align on axis 1 after axis 0 is dropped.
	left, err := ArgMin(FromFlat([]float64{4, 3, 1, 5}, 2, 2), 0)
	require.NoError(t, err)
	right, err := ArgMin(FromFlat([]float64{5, 0}, 2, 1), 0)
	require.NoError(t, err)

	merged, err := Concat([]Value{left, right}, []int{2}, []int{0})
	require.NoError(t, err)
	pair := merged.(*ArgPartial)
	require.Equal(t, []int{3}, pair.Value.Dims)
	require.Equal(t, []float64{1, 3, 0}, pair.Value.Data)
	require.Equal(t, []int{1, 0, 1}, pair.Index.Data)
}
