// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

// blockflow-bench builds a blocked reduction over a large random 2-D array
// and executes it in-process, reporting timing and throughput.
//
// Example:
//
//	blockflow-bench --size=4096 --block=512 --op=var
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/blockflow/blockflow/backends/local"
	"github.com/blockflow/blockflow/graph"
	"github.com/blockflow/blockflow/types/chunks"
)

var (
	flagSize        = flag.Int("size", 4096, "Side of the square array to reduce.")
	flagBlock       = flag.Int("block", 512, "Side of each square block.")
	flagOp          = flag.String("op", "sum", "Reduction to run: sum, min, max, mean, var, std, argmin, argmax, norm2.")
	flagAxis        = flag.Int("axis", 0, "Axis for arg-reductions.")
	flagParallelism = flag.Int("parallelism", 0, "Max concurrent tasks; 0 means NumCPU.")
	flagSeed        = flag.Int64("seed", 42, "Seed for the random input data.")
)

func buildOp(x *graph.Array) *graph.Array {
	switch *flagOp {
	case "sum":
		return graph.Sum(x, nil, false)
	case "min":
		return graph.Min(x, nil, false)
	case "max":
		return graph.Max(x, nil, false)
	case "mean":
		return graph.Mean(x, nil, false)
	case "var":
		return graph.Variance(x, nil, false, 0)
	case "std":
		return graph.Std(x, nil, false, 0)
	case "argmin":
		return graph.ArgMin(x, *flagAxis)
	case "argmax":
		return graph.ArgMax(x, *flagAxis)
	case "norm2":
		return graph.VNorm(x, 2, nil, false)
	}
	klog.Exitf("unknown --op=%q", *flagOp)
	return nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	size := *flagSize
	numElements := size * size
	rng := rand.New(rand.NewSource(*flagSeed))
	data := make([]float64, numElements)
	for ii := range data {
		data[ii] = rng.NormFloat64()
	}
	dense := chunks.FromFlat(data, size, size)

	g := graph.New()
	x := graph.FromDense(g, dense, graph.RegularBlockdims([]int{size, size}, []int{*flagBlock, *flagBlock}))
	result := buildOp(x)
	fmt.Printf("%s over a %dx%d array (%s elements, %s) in %v blocks: %d tasks\n",
		*flagOp, size, size,
		humanize.Comma(int64(numElements)),
		humanize.Bytes(uint64(numElements*8)),
		x.NumBlocks(), g.NumTasks())

	bar := progressbar.Default(int64(g.NumTasks()), "executing")
	executor := local.New(
		local.WithMaxParallelism(*flagParallelism),
		local.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}),
	)

	start := time.Now()
	value := must.M1(executor.Compute(context.Background(), result))
	elapsed := time.Since(start)
	must.M(bar.Finish())

	switch v := value.(type) {
	case *chunks.Chunk:
		if v.Size() == 1 {
			fmt.Printf("result: %v\n", v.Scalar())
		} else {
			fmt.Printf("result dimensions: %v\n", v.Dims)
		}
	case *chunks.IntChunk:
		fmt.Printf("result dimensions: %v (indices)\n", v.Dims)
	}
	fmt.Printf("elapsed: %s (%s elements/s)\n", elapsed,
		humanize.CommafWithDigits(float64(numElements)/elapsed.Seconds(), 0))
}
