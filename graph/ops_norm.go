// Copyright 2026 The BlockFlow Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"math"
)

// VNorm builds the vector p-norm of x along the given axes (nil for all
// axes), composed entirely from the blocked reductions:
//
//   - ord NaN (unspecified) is treated as ord=2, the Frobenius norm;
//   - ord=+Inf is max(|x|), ord=-Inf is min(|x|), ord=1 is sum(|x|);
//   - a nonzero even integer ord is sum(x^ord)^(1/ord), skipping the
//     absolute value since even powers are already non-negative;
//   - anything else is sum(|x|^ord)^(1/ord).
//
// Note ord=0 deliberately falls into the last branch, like the generic
// power it is: sum(|x|^0) raised to 1/0 (+Inf under float64 semantics).
// This is NOT the "count of nonzero entries" L0 convention; see the
// package tests pinning the behavior.
func VNorm(x *Array, ord float64, axes []int, keepdims bool) *Array {
	if math.IsNaN(ord) {
		ord = 2
	}
	switch {
	case math.IsInf(ord, 1):
		return Max(Abs(x), axes, keepdims)
	case math.IsInf(ord, -1):
		return Min(Abs(x), axes, keepdims)
	case ord == 1:
		return Sum(Abs(x), axes, keepdims)
	case ord != 0 && ord == math.Trunc(ord) && int64(ord)%2 == 0:
		return Pow(Sum(Pow(x, ord), axes, keepdims), 1/ord)
	default:
		return Pow(Sum(Pow(Abs(x), ord), axes, keepdims), 1/ord)
	}
}
