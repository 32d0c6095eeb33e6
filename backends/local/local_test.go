// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/blockflow/blockflow/graph"
	"github.com/blockflow/blockflow/types/chunks"
)

func testArray(g *graph.Graph) *graph.Array {
	dense := chunks.FromFlat([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	return graph.FromDense(g, dense, [][]int{{3, 3, 2}})
}

func TestComputeAssemblesBlocks(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)

	// Computing a source array returns the re-assembled dense chunk.
	v, err := Compute(context.Background(), x)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, v.(*chunks.Chunk).Data)

	sum, err := Compute(context.Background(), graph.Sum(x, nil, false))
	require.NoError(t, err)
	require.Equal(t, 36.0, sum.(*chunks.Chunk).Scalar())
}

func TestComputeValuesOrder(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)
	keys := x.Keys()

	values, err := New().ComputeValues(context.Background(), g, []graph.Key{keys[2], keys[0]})
	require.NoError(t, err)
	require.Equal(t, []float64{7, 8}, values[0].(*chunks.Chunk).Data)
	require.Equal(t, []float64{1, 2, 3}, values[1].(*chunks.Chunk).Data)
}

func TestKernelFailurePropagates(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)
	failing := graph.Blockwise(x, "boom", func(input any) (any, error) {
		return nil, errors.New("kernel exploded")
	})

	_, err := Compute(context.Background(), failing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kernel exploded")
	require.Contains(t, err.Error(), "boom-1!") // failing task key
}

func TestMissingTask(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	_, err := New().ComputeValues(context.Background(), g, []graph.Key{graph.MakeKey("ghost", 0)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost")
}

func TestContextCancellation(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)
	sum := graph.Sum(x, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, sum)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProgressAndParallelismOptions(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)
	sum := graph.Sum(x, nil, false)

	var calls atomic.Int32
	var lastDone, lastTotal int
	executor := New(
		WithMaxParallelism(1),
		WithProgress(func(done, total int) {
			calls.Add(1)
			lastDone, lastTotal = done, total
		}),
	)
	v, err := executor.Compute(context.Background(), sum)
	require.NoError(t, err)
	require.Equal(t, 36.0, v.(*chunks.Chunk).Scalar())

	// 3 source + 3 chunk + 1 aggregate tasks.
	require.Equal(t, int32(7), calls.Load())
	require.Equal(t, 7, lastDone)
	require.Equal(t, 7, lastTotal)
}

func TestSharedIntermediatesComputedOnce(t *testing.T) {
	g := graph.New(graph.WithNames(graph.NewSequenceNames()))
	x := testArray(g)

	var runs atomic.Int32
	counted := graph.Blockwise(x, "count", func(input any) (any, error) {
		runs.Add(1)
		return input, nil
	})
	sum := graph.Sum(counted, nil, false)

	_, err := Compute(context.Background(), sum)
	require.NoError(t, err)
	require.Equal(t, int32(3), runs.Load()) // one per block, not per consumer
}
