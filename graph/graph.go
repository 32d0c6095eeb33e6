// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

// Package graph builds declarative task graphs of blocked computations over
// partitioned n-dimensional arrays.
//
// The main elements in the package are:
//
//   - Graph: an append-only set of tasks, each producing one block and keyed
//     by a Key (array name plus block-index tuple). A Graph describes work,
//     it never executes anything: scheduling belongs to an executor such as
//     backends/local.
//
//   - Array: a handle to one partitioned array inside a Graph -- its name
//     plus the per-axis block extents (blockdims) describing how the logical
//     array is cut into blocks.
//
//   - Ops: Sum, Min, Max, Any, All, Mean, Variance, Std, ArgMin, ArgMax and
//     VNorm, all built on the two-phase Reduction planner: a block-local
//     kernel runs on every block keeping reduced axes at extent 1, then a
//     cross-block aggregate runs on the concatenation of the partial
//     results that agree on every non-reduced block index.
//
// Ops validate their arguments at graph building time and panic with an
// error value (via github.com/gomlx/exceptions) on invalid input; no task is
// created in that case. Failures inside kernels surface as errors when the
// graph is executed.
//
// A Graph is not safe for concurrent building; executing a finished graph
// is read-only and may be done concurrently.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
)

// Key uniquely identifies one block of a named partitioned array.
type Key struct {
	// Name of the partitioned array this block belongs to.
	Name string

	// Index is the block-index tuple, one entry per axis.
	Index []int
}

// MakeKey returns a Key for the given array name and block indices.
func MakeKey(name string, index ...int) Key {
	return Key{Name: name, Index: index}
}

// ID returns the canonical string form of the key, usable as a map key.
func (k Key) ID() string {
	var b strings.Builder
	b.WriteString(k.Name)
	b.WriteByte('!')
	for ii, idx := range k.Index {
		if ii > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (k Key) String() string { return k.ID() }

// Task is one unit of work in a Graph: a pure function of the blocks named
// by Deps, producing the block named by Key. A source task carries its
// materialized block in Value instead and has a nil Fn.
type Task struct {
	Key  Key
	Deps []Key

	// Fn receives the values of Deps, in order. It must not mutate them.
	Fn func(inputs []any) (any, error)

	// Value is the materialized block of a source task (Fn == nil).
	Value any
}

// Names allocates fresh, unique names for partitioned arrays. The planner
// assumes uniqueness within a Graph and never checks it.
type Names interface {
	// New returns a fresh name; prefix names the operation creating the
	// array and is kept in the result for debuggability.
	New(prefix string) string
}

// UUIDNames returns the default Names allocator, which suffixes a random
// UUID to the prefix.
func UUIDNames() Names { return uuidNames{} }

type uuidNames struct{}

func (uuidNames) New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// SequenceNames is a deterministic Names allocator, suffixing an
// incrementing counter. It makes graph building replayable, which the tests
// rely on.
type SequenceNames struct {
	next int
}

// NewSequenceNames returns a SequenceNames starting at zero.
func NewSequenceNames() *SequenceNames { return &SequenceNames{} }

// New implements Names.
func (s *SequenceNames) New(prefix string) string {
	name := fmt.Sprintf("%s-%d", prefix, s.next)
	s.next++
	return name
}

// Graph holds the tasks of one or more blocked computations.
// Create one with New, then build arrays into it with FromDense and the ops.
type Graph struct {
	names Names
	tasks map[string]*Task
}

// Option configures a Graph on creation.
type Option func(*Graph)

// WithNames sets the name allocator used for every array created in the
// graph. The default is UUIDNames.
func WithNames(names Names) Option {
	return func(g *Graph) { g.names = names }
}

// New creates an empty Graph.
func New(options ...Option) *Graph {
	g := &Graph{
		names: UUIDNames(),
		tasks: make(map[string]*Task),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Get returns the task producing the given key, if any.
func (g *Graph) Get(k Key) (*Task, bool) {
	t, found := g.tasks[k.ID()]
	return t, found
}

// NumTasks returns the number of tasks in the graph.
func (g *Graph) NumTasks() int { return len(g.tasks) }

// add registers a new task. Keys are write-once: re-adding one is a bug in
// the name allocator or the planner.
func (g *Graph) add(t *Task) {
	id := t.Key.ID()
	if _, found := g.tasks[id]; found {
		exceptions.Panicf("graph: duplicate task key %q -- the Names allocator must return unique names", id)
	}
	g.tasks[id] = t
}

// rekey moves a task to a new key. Only used on freshly created terminal
// tasks, to re-insert reduced axes for keepdims semantics.
func (g *Graph) rekey(oldKey, newKey Key) {
	t, found := g.tasks[oldKey.ID()]
	if !found {
		exceptions.Panicf("graph: rekey of unknown task %q", oldKey.ID())
	}
	delete(g.tasks, oldKey.ID())
	t.Key = newKey
	g.add(t)
}
