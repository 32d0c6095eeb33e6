// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

// Package local executes blockflow task graphs in-process.
//
// It is a plain topological executor: tasks run as soon as every dependency
// has run, in parallel up to a configurable limit, honoring the single
// synchronization contract a Graph emits -- no task starts before its
// declared inputs are available. There is no retrying, no persistence and
// no distribution; a failing task aborts the whole computation with its
// error.
package local

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/blockflow/blockflow/graph"
	"github.com/blockflow/blockflow/types/chunks"
	"github.com/blockflow/blockflow/types/xslices"
)

// Executor runs task graphs. The zero value is not usable; create one with
// New. An Executor is stateless across calls and safe for concurrent use.
type Executor struct {
	maxParallelism int
	progress       func(done, total int)
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxParallelism limits how many tasks run concurrently. Defaults to
// runtime.NumCPU().
func WithMaxParallelism(n int) Option {
	return func(e *Executor) { e.maxParallelism = n }
}

// WithProgress registers a callback invoked after every completed task with
// the number of tasks done so far and the total. Callbacks are serialized.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Executor) { e.progress = fn }
}

// New creates an Executor.
func New(options ...Option) *Executor {
	e := &Executor{maxParallelism: runtime.NumCPU()}
	for _, opt := range options {
		opt(e)
	}
	if e.maxParallelism <= 0 {
		e.maxParallelism = runtime.NumCPU()
	}
	return e
}

// Compute executes everything the given array depends on and returns its
// materialized value: the concatenation of all its blocks. The result is a
// *chunks.Chunk for float arrays and a *chunks.IntChunk for index arrays
// (arg-reductions).
func (e *Executor) Compute(ctx context.Context, a *graph.Array) (chunks.Value, error) {
	keys := a.Keys()
	blocks, err := e.ComputeValues(ctx, a.Graph(), keys)
	if err != nil {
		return nil, err
	}
	values := make([]chunks.Value, len(blocks))
	for ii, block := range blocks {
		v, ok := block.(chunks.Value)
		if !ok {
			return nil, errors.Errorf("block %s produced a %T, which is not a block value", keys[ii], block)
		}
		values[ii] = v
	}
	return chunks.Concat(values, a.NumBlocks(), xslices.Iota(0, a.Rank()))
}

// ComputeValues executes everything the given keys depend on and returns
// their raw task values, in key order.
func (e *Executor) ComputeValues(ctx context.Context, g *graph.Graph, keys []graph.Key) ([]any, error) {
	needed, err := dependencyClosure(g, keys)
	if err != nil {
		return nil, err
	}
	total := len(needed)
	klog.V(1).Infof("local: executing %d tasks with parallelism %d", total, e.maxParallelism)

	var (
		mu      sync.Mutex
		results = make(map[string]any, total)
		done    int
	)
	remaining := needed
	for wave := 0; len(remaining) > 0; wave++ {
		ready, blocked := splitReady(remaining, results)
		if len(ready) == 0 {
			return nil, errors.Errorf("task graph has a dependency cycle involving %d tasks", len(blocked))
		}
		klog.V(2).Infof("local: wave %d with %d ready tasks, %d blocked", wave, len(ready), len(blocked))

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.maxParallelism)
		for _, task := range ready {
			task := task
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				value, err := runTask(task, results, &mu)
				if err != nil {
					return errors.WithMessagef(err, "task %s", task.Key)
				}
				mu.Lock()
				results[task.Key.ID()] = value
				done++
				if e.progress != nil {
					e.progress(done, total)
				}
				mu.Unlock()
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		remaining = blocked
	}

	out := make([]any, len(keys))
	for ii, key := range keys {
		value, found := results[key.ID()]
		if !found {
			return nil, errors.Errorf("task %s was never computed", key)
		}
		out[ii] = value
	}
	return out, nil
}

// runTask resolves a task's inputs and invokes it. Inputs come from earlier
// waves, so the results map is only read here; the lock still guards
// against the concurrent writes of same-wave completions.
func runTask(task *graph.Task, results map[string]any, mu *sync.Mutex) (any, error) {
	if task.Fn == nil {
		return task.Value, nil
	}
	inputs := make([]any, len(task.Deps))
	mu.Lock()
	for ii, dep := range task.Deps {
		value, found := results[dep.ID()]
		if !found {
			mu.Unlock()
			return nil, errors.Errorf("dependency %s not computed before its consumer ran", dep)
		}
		inputs[ii] = value
	}
	mu.Unlock()
	return task.Fn(inputs)
}

// dependencyClosure collects every task the given keys transitively depend
// on.
func dependencyClosure(g *graph.Graph, keys []graph.Key) ([]*graph.Task, error) {
	var closure []*graph.Task
	seen := make(map[string]bool)
	var visit func(key graph.Key) error
	visit = func(key graph.Key) error {
		if seen[key.ID()] {
			return nil
		}
		seen[key.ID()] = true
		task, found := g.Get(key)
		if !found {
			return errors.Errorf("no task produces block %s", key)
		}
		for _, dep := range task.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		closure = append(closure, task)
		return nil
	}
	for _, key := range keys {
		if err := visit(key); err != nil {
			return nil, err
		}
	}
	return closure, nil
}

// splitReady partitions tasks into those whose dependencies are all
// computed and the rest.
func splitReady(tasks []*graph.Task, results map[string]any) (ready, blocked []*graph.Task) {
	for _, task := range tasks {
		ok := true
		for _, dep := range task.Deps {
			if _, found := results[dep.ID()]; !found {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, task)
		} else {
			blocked = append(blocked, task)
		}
	}
	return
}

// Compute executes the given array with a default Executor. See
// Executor.Compute.
func Compute(ctx context.Context, a *graph.Array) (chunks.Value, error) {
	return New().Compute(ctx, a)
}
