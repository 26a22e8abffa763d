// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ctbench provides a statistical timing-leak detector for black-box
// testing of code that is intended to run in constant time.
//
// The approach follows the dudect methodology: the function under test is
// invoked many times with inputs drawn from two classes that differ only in
// content, each invocation is timed with the monotonic clock, and Welch's
// t-test is applied to the two latency distributions.  Because timing noise
// is heavily right-tailed, the test is repeated over progressively cropped
// distributions that discard upper-tail outliers, and the largest absolute t
// statistic across croppings decides the verdict.
//
// The detector can only gather evidence of a leak, never prove its absence:
// a verdict of [VerdictNoEvidence] means no leak was observable at the
// configured sample count and threshold.
package ctbench

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Class identifies which of the two input classes a measurement belongs to.
type Class int

// These constants identify the two measurement classes.  The assignment of
// secret inputs to classes is arbitrary so long as it is consistent within a
// run.
const (
	ClassLeft Class = iota
	ClassRight
)

const (
	// defaultThreshold is the |t| value above which a run is judged probably
	// leaky when the caller does not provide one.  4.5 standard deviations
	// corresponds to a negligible false positive rate at the sample counts
	// the detector is normally run with.
	defaultThreshold = 4.5

	// definiteThreshold is the |t| value above which a run is judged leaky
	// regardless of the configured threshold.
	definiteThreshold = 10

	// numPercentiles is the number of upper-tail croppings the t-test is
	// evaluated over in addition to the uncropped distribution.
	numPercentiles = 100

	// minCropSamples is the minimum number of samples each class must retain
	// after cropping for the cropped t-test to be considered.  Heavier crops
	// are ignored since a t statistic over a handful of samples is noise.
	minCropSamples = 10
)

// Verdict describes the outcome of a detection run.
type Verdict int

// These constants define the possible detection outcomes.
const (
	// VerdictNoEvidence indicates the two latency distributions were not
	// distinguishable at the configured threshold.
	VerdictNoEvidence Verdict = iota

	// VerdictProbablyLeaky indicates the distributions were distinguishable
	// beyond the configured threshold.
	VerdictProbablyLeaky

	// VerdictDefinitelyLeaky indicates the distributions were so clearly
	// distinguishable that no reasonable threshold would accept them.
	VerdictDefinitelyLeaky
)

// String returns the Verdict as a human-readable string.
func (v Verdict) String() string {
	switch v {
	case VerdictNoEvidence:
		return "no evidence of leakage"
	case VerdictProbablyLeaky:
		return "probably leaky"
	case VerdictDefinitelyLeaky:
		return "definitely leaky"
	}
	return "unknown verdict"
}

// Result describes the statistical outcome of a detection run.
type Result struct {
	// Samples is the number of measurements collected per class.
	Samples [2]int

	// MaxT is the largest absolute Welch t statistic observed across the
	// uncropped distribution and all croppings.
	MaxT float64

	// Dof is the Welch-Satterthwaite degrees of freedom of the test that
	// produced MaxT.
	Dof float64

	// PValue is the two-sided p-value of MaxT under the null hypothesis that
	// both classes have the same mean latency.
	PValue float64

	// Threshold is the |t| threshold the verdict was judged against.
	Threshold float64

	// Verdict is the detection outcome.
	Verdict Verdict
}

// Runner collects timing measurements for the two input classes and judges
// whether the resulting latency distributions are distinguishable.
//
// A Runner must not be used concurrently from multiple goroutines since
// interleaved measurements would contaminate each other.
type Runner struct {
	threshold float64
	samples   [2][]float64
}

// NewRunner returns a runner that judges distributions against the passed
// |t| threshold.  A threshold that is not positive selects the default of
// 4.5.
func NewRunner(threshold float64) *Runner {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Runner{threshold: threshold}
}

// MeasureOne times a single invocation of fn and records the latency under
// the given class.
func (r *Runner) MeasureOne(class Class, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	r.samples[class] = append(r.samples[class], float64(elapsed.Nanoseconds()))
}

// cropThresholds returns the latency values that the combined distribution
// is cropped at before re-running the t-test.  The percentiles concentrate
// toward the fast end of the distribution since timing leaks hide under
// right-tail noise from interrupts and scheduling.
func cropThresholds(combined []float64) []float64 {
	sorted := append([]float64(nil), combined...)
	sort.Float64s(sorted)
	thresholds := make([]float64, numPercentiles)
	for i := range thresholds {
		p := 1 - math.Pow(0.5, 10*float64(i+1)/numPercentiles)
		thresholds[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}
	return thresholds
}

// verdictFor maps a maximum |t| statistic to a verdict given the configured
// threshold.
func verdictFor(maxT, threshold float64) Verdict {
	switch {
	case maxT > definiteThreshold:
		return VerdictDefinitelyLeaky
	case maxT > threshold:
		return VerdictProbablyLeaky
	}
	return VerdictNoEvidence
}

// Result computes the statistical outcome over every measurement collected
// so far.  It may be called repeatedly as more measurements accumulate.
func (r *Runner) Result() *Result {
	result := &Result{
		Samples:   [2]int{len(r.samples[0]), len(r.samples[1])},
		Threshold: r.threshold,
		PValue:    1,
	}
	if result.Samples[0] < 2 || result.Samples[1] < 2 {
		return result
	}

	combined := make([]float64, 0, result.Samples[0]+result.Samples[1])
	combined = append(combined, r.samples[0]...)
	combined = append(combined, r.samples[1]...)
	thresholds := cropThresholds(combined)

	// One accumulator for the uncropped distribution followed by one per
	// cropping.
	tests := make([]tTest, 1+numPercentiles)
	for class, samples := range r.samples {
		for _, x := range samples {
			tests[0].push(x, Class(class))
			for i, threshold := range thresholds {
				if x < threshold {
					tests[1+i].push(x, Class(class))
				}
			}
		}
	}

	best := &tests[0]
	bestT := math.Abs(best.value())
	for i := 1; i < len(tests); i++ {
		tt := &tests[i]
		if tt.n[0] < minCropSamples || tt.n[1] < minCropSamples {
			continue
		}
		if v := math.Abs(tt.value()); v > bestT {
			best, bestT = tt, v
		}
	}

	result.MaxT = bestT
	result.Dof = best.dof()
	if !math.IsInf(bestT, 0) {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: result.Dof}
		result.PValue = 2 * (1 - dist.CDF(bestT))
	} else {
		result.PValue = 0
	}
	result.Verdict = verdictFor(bestT, r.threshold)

	log.Debugf("t-test over %d/%d samples: max |t|=%.3f dof=%.1f p=%.4g (%v)",
		result.Samples[0], result.Samples[1], result.MaxT, result.Dof,
		result.PValue, result.Verdict)
	return result
}
