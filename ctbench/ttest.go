// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctbench

import "math"

// tTest accumulates timing samples for the two measurement classes and
// computes Welch's t statistic over them.  The mean and variance are
// maintained online with Welford's algorithm so arbitrarily many samples can
// be pushed without retaining them.
type tTest struct {
	mean [2]float64
	m2   [2]float64
	n    [2]float64
}

// push adds a single sample for the given class.
func (tt *tTest) push(x float64, class Class) {
	c := int(class)
	tt.n[c]++
	delta := x - tt.mean[c]
	tt.mean[c] += delta / tt.n[c]
	tt.m2[c] += delta * (x - tt.mean[c])
}

// variance returns the sample variance of the given class.
func (tt *tTest) variance(c int) float64 {
	return tt.m2[c] / (tt.n[c] - 1)
}

// value returns Welch's t statistic for the samples pushed so far.  Both
// classes must have at least two samples.
func (tt *tTest) value() float64 {
	num := tt.mean[0] - tt.mean[1]
	den := math.Sqrt(tt.variance(0)/tt.n[0] + tt.variance(1)/tt.n[1])
	if den == 0 {
		// Identical constant distributions are indistinguishable; differing
		// constant distributions could not be more distinguishable.
		if num == 0 {
			return 0
		}
		return math.Inf(int(math.Copysign(1, num)))
	}
	return num / den
}

// dof returns the Welch-Satterthwaite approximation of the degrees of
// freedom for the t statistic.  Both classes must have at least two samples.
func (tt *tTest) dof() float64 {
	a := tt.variance(0) / tt.n[0]
	b := tt.variance(1) / tt.n[1]
	den := a*a/(tt.n[0]-1) + b*b/(tt.n[1]-1)
	if den == 0 {
		return 1
	}
	return (a + b) * (a + b) / den
}
