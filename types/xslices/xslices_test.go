// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtAndLast(t *testing.T) {
	s := []int{3, 5, 7}
	require.Equal(t, 3, At(s, 0))
	require.Equal(t, 7, At(s, -1))
	require.Equal(t, 5, At(s, -2))
	require.Equal(t, 7, Last(s))
}

func TestCopy(t *testing.T) {
	s := []int{1, 2, 3}
	c := Copy(s)
	require.Equal(t, s, c)
	c[0] = 99
	require.Equal(t, 1, s[0])
}

func TestIota(t *testing.T) {
	require.Equal(t, []int{0, 1, 2, 3}, Iota(0, 4))
	require.Equal(t, []float64{2, 3, 4}, Iota(2.0, 3))
	require.Empty(t, Iota(0, 0))
}

func TestSumProd(t *testing.T) {
	require.Equal(t, 10, Sum([]int{1, 2, 3, 4}))
	require.Equal(t, 24, Prod([]int{2, 3, 4}))
	require.Equal(t, 0, Sum([]int{}))
	require.Equal(t, 1, Prod([]int{})) // empty product
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 7, Max([]int{3, 7, 5}))
	require.Equal(t, 3, Min([]int{3, 7, 5}))
}

func TestMap(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int { return 2 * v })
	require.Equal(t, []int{2, 4, 6}, doubled)
}

func TestSliceWithValue(t *testing.T) {
	require.Equal(t, []float64{1, 1, 1}, SliceWithValue(3, 1.0))
}

func TestInsertMany(t *testing.T) {
	require.Equal(t, []int{-1, 10, -1, 20}, InsertMany([]int{10, 20}, []int{0, 2}, -1))
	require.Equal(t, []int{10, 20, -1}, InsertMany([]int{10, 20}, []int{2}, -1))
	require.Equal(t, []int{-1, -1, 10}, InsertMany([]int{10}, []int{0, 1}, -1))
	require.Equal(t, []int{10, 20}, InsertMany([]int{10, 20}, nil, -1))
	require.Equal(t, []int{-1}, InsertMany(nil, []int{0}, -1))
}
