// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package chunks

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestMeanPartials(t *testing.T) {
	c := FromFlat([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	p, err := MeanChunk(c, []int{1}, true)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, p.Count.Dims)
	require.Equal(t, []float64{3, 3}, p.Count.Data)
	require.Equal(t, []float64{6, 15}, p.Total.Data)

	mean, err := MeanAggregate(p, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 5}, mean.Data)
}

// Merging partials from two disjoint blocks must equal the partial of the
// concatenated block.
func TestMeanPartialsAssociativity(t *testing.T) {
	left := FromFlat([]float64{1, 2, 3}, 3)
	right := FromFlat([]float64{4, 5, 6, 7}, 4)
	whole := FromFlat([]float64{1, 2, 3, 4, 5, 6, 7}, 7)

	pLeft, err := MeanChunk(left, nil, true)
	require.NoError(t, err)
	pRight, err := MeanChunk(right, nil, true)
	require.NoError(t, err)

	merged, err := Concat([]Value{pLeft, pRight}, []int{2}, []int{0})
	require.NoError(t, err)
	got, err := MeanAggregate(merged.(*MeanPartial), nil, false)
	require.NoError(t, err)

	pWhole, err := MeanChunk(whole, nil, true)
	require.NoError(t, err)
	want, err := MeanAggregate(pWhole, nil, false)
	require.NoError(t, err)
	require.InDelta(t, want.Scalar(), got.Scalar(), 1e-12)
	require.InDelta(t, 4.0, got.Scalar(), 1e-12)
}

func TestVariancePartials(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	c := FromFlat(data, 8)

	p, err := VarianceChunk(c, nil, true)
	require.NoError(t, err)
	got, err := VarianceAggregate(p, 0, nil, false)
	require.NoError(t, err)
	require.InDelta(t, 4.0, got.Scalar(), 1e-12)

	// ddof=1 matches gonum's sample variance.
	gotSample, err := VarianceAggregate(p, 1, nil, false)
	require.NoError(t, err)
	require.InDelta(t, stat.Variance(data, nil), gotSample.Scalar(), 1e-12)

	// ddof >= n is rejected.
	single, err := VarianceChunk(FromFlat([]float64{3}, 1), nil, true)
	require.NoError(t, err)
	_, err = VarianceAggregate(single, 1, nil, false)
	require.Error(t, err)
}

func TestVariancePartialsPerAxis(t *testing.T) {
	c := FromFlat([]float64{1, 2, 3, 10, 20, 30}, 2, 3)
	p, err := VarianceChunk(c, []int{1}, true)
	require.NoError(t, err)
	got, err := VarianceAggregate(p, 0, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, []int{2}, got.Dims)
	require.InDelta(t, stat.PopVariance([]float64{1, 2, 3}, nil), got.Data[0], 1e-12)
	require.InDelta(t, stat.PopVariance([]float64{10, 20, 30}, nil), got.Data[1], 1e-12)
}
