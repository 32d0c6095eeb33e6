// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provides generic slice helpers missing from the standard
// slices package, used throughout blockflow for axis and block-index
// bookkeeping.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// At returns the element at the given index, where a negative index counts
// from the end of the slice.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return At(slice, -1)
}

// Copy returns a fresh copy of the given slice.
func Copy[T any](slice []T) []T {
	s := make([]T, len(slice))
	copy(s, slice)
	return s
}

// SliceWithValue returns a slice of the given size filled with the given value.
func SliceWithValue[T any](size int, value T) []T {
	s := make([]T, size)
	for ii := range s {
		s[ii] = value
	}
	return s
}

// Iota returns a slice of incremental values of the given type, starting from
// start and of the given length.
func Iota[T interface {
	constraints.Integer | constraints.Float
}](start T, length int) []T {
	s := make([]T, length)
	for ii := range s {
		s[ii] = start + T(ii)
	}
	return s
}

// Map applies fn to each element of in, returning the new mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Sum returns the sum of all elements of the slice.
func Sum[T interface {
	constraints.Integer | constraints.Float
}](slice []T) (sum T) {
	for _, v := range slice {
		sum += v
	}
	return
}

// Prod returns the product of all elements of the slice. An empty slice has
// product 1.
func Prod[T interface {
	constraints.Integer | constraints.Float
}](slice []T) T {
	prod := T(1)
	for _, v := range slice {
		prod *= v
	}
	return prod
}

// Max returns the largest element of a non-empty slice.
func Max[T constraints.Ordered](slice []T) (max T) {
	max = slice[0]
	for _, v := range slice[1:] {
		if v > max {
			max = v
		}
	}
	return
}

// Min returns the smallest element of a non-empty slice.
func Min[T constraints.Ordered](slice []T) (min T) {
	min = slice[0]
	for _, v := range slice[1:] {
		if v < min {
			min = v
		}
	}
	return
}

// InsertMany returns a copy of slice with value inserted so that it ends up
// at each of the given positions of the result. Positions must be sorted
// ascending and refer to indices of the returned slice.
//
// Example: InsertMany([]int{10, 20}, []int{0, 2}, -1) -> [-1, 10, -1, 20].
func InsertMany[T any](slice []T, positions []int, value T) []T {
	out := make([]T, 0, len(slice)+len(positions))
	next := 0
	for _, v := range slice {
		for next < len(positions) && positions[next] == len(out) {
			out = append(out, value)
			next++
		}
		out = append(out, v)
	}
	for next < len(positions) && positions[next] == len(out) {
		out = append(out, value)
		next++
	}
	return out
}
