// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctbench

import (
	"math"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// TestTTestKnownValues ensures the online Welch t-test accumulator produces
// the expected statistic, degrees of freedom, and variance for samples small
// enough to verify by hand.
func TestTTestKnownValues(t *testing.T) {
	t.Parallel()

	// Left {1..5} and right {2..6} have means 3 and 4 and a shared sample
	// variance of 2.5, so the standard error is exactly 1 and t is -1 with 8
	// degrees of freedom.
	var tt tTest
	for i := 1; i <= 5; i++ {
		tt.push(float64(i), ClassLeft)
		tt.push(float64(i+1), ClassRight)
	}

	if v := tt.variance(0); math.Abs(v-2.5) > 1e-12 {
		t.Fatalf("left variance: got %v, want 2.5", v)
	}
	if v := tt.variance(1); math.Abs(v-2.5) > 1e-12 {
		t.Fatalf("right variance: got %v, want 2.5", v)
	}
	if v := tt.value(); math.Abs(v-(-1)) > 1e-12 {
		t.Fatalf("t statistic: got %v, want -1", v)
	}
	if v := tt.dof(); math.Abs(v-8) > 1e-12 {
		t.Fatalf("degrees of freedom: got %v, want 8", v)
	}
}

// TestTTestIdenticalSamples ensures distributions with zero variance are
// handled without dividing by zero.
func TestTTestIdenticalSamples(t *testing.T) {
	t.Parallel()

	var same tTest
	for i := 0; i < 5; i++ {
		same.push(7, ClassLeft)
		same.push(7, ClassRight)
	}
	if v := same.value(); v != 0 {
		t.Fatalf("identical constant classes: got t=%v, want 0", v)
	}

	var diff tTest
	for i := 0; i < 5; i++ {
		diff.push(7, ClassLeft)
		diff.push(9, ClassRight)
	}
	if v := diff.value(); !math.IsInf(v, -1) {
		t.Fatalf("distinct constant classes: got t=%v, want -Inf", v)
	}
}

// TestVerdictThresholds ensures the mapping from the maximum |t| statistic
// to a verdict honors both the configured and the definite thresholds.
func TestVerdictThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		maxT      float64
		threshold float64
		want      Verdict
	}{{
		name:      "well below threshold",
		maxT:      1.2,
		threshold: 4.5,
		want:      VerdictNoEvidence,
	}, {
		name:      "exactly at threshold",
		maxT:      4.5,
		threshold: 4.5,
		want:      VerdictNoEvidence,
	}, {
		name:      "just above threshold",
		maxT:      4.6,
		threshold: 4.5,
		want:      VerdictProbablyLeaky,
	}, {
		name:      "above definite threshold",
		maxT:      25,
		threshold: 4.5,
		want:      VerdictDefinitelyLeaky,
	}, {
		name:      "tight custom threshold",
		maxT:      2.5,
		threshold: 2,
		want:      VerdictProbablyLeaky,
	}}

	for _, test := range tests {
		if got := verdictFor(test.maxT, test.threshold); got != test.want {
			t.Errorf("%q: got %v, want %v", test.name, got, test.want)
			continue
		}
	}
}

// TestVerdictStringer tests the stringized output for the [Verdict] type.
func TestVerdictStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Verdict
		want string
	}{
		{VerdictNoEvidence, "no evidence of leakage"},
		{VerdictProbablyLeaky, "probably leaky"},
		{VerdictDefinitelyLeaky, "definitely leaky"},
		{Verdict(99), "unknown verdict"},
	}

	for i, test := range tests {
		if result := test.in.String(); result != test.want {
			t.Errorf("#%d: got %q, want %q", i, result, test.want)
			continue
		}
	}
}

// TestResultInsufficientSamples ensures a runner with too few measurements
// reports no evidence rather than a spurious statistic.
func TestResultInsufficientSamples(t *testing.T) {
	t.Parallel()

	r := NewRunner(0)
	r.MeasureOne(ClassLeft, func() {})
	result := r.Result()
	if result.Verdict != VerdictNoEvidence {
		t.Fatalf("verdict with one sample: got %v, want %v", result.Verdict,
			VerdictNoEvidence)
	}
	if result.Threshold != defaultThreshold {
		t.Fatalf("default threshold: got %v, want %v", result.Threshold,
			defaultThreshold)
	}
}

// spin performs n rounds of integer work that the compiler cannot remove so
// tests can construct functions with a controlled execution time.
func spin(n int) uint32 {
	acc := uint32(2463534242)
	for i := 0; i < n; i++ {
		acc ^= acc << 13
		acc ^= acc >> 17
		acc ^= acc << 5
	}
	return acc
}

// sink prevents the spin results from being optimized away.
var sink uint32

// TestRunnerDetectsTimingDifference ensures a function whose execution time
// depends on which class it was called for is flagged as leaky.  This is the
// regression guard the detector exists for: reintroducing a secret-dependent
// branch into a hash implementation must trip it.
func TestRunnerDetectsTimingDifference(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing measurement test in short mode")
	}

	r := NewRunner(0)
	for i := 0; i < 2000; i++ {
		r.MeasureOne(ClassLeft, func() { sink += spin(100) })
		r.MeasureOne(ClassRight, func() { sink += spin(20000) })
	}
	result := r.Result()
	if !result.Leaky() {
		t.Fatalf("runner failed to flag a 200x timing difference:\n%s",
			spew.Sdump(result))
	}
	if result.PValue > 0.001 {
		t.Fatalf("unexpectedly weak p-value for a gross leak:\n%s",
			spew.Sdump(result))
	}
}

// TestWriteMarkdownReport ensures the rendered report includes the summary,
// one table row per scenario, and the verdict text.
func TestWriteMarkdownReport(t *testing.T) {
	t.Parallel()

	results := []ScenarioResult{{
		Name: "block-boundary",
		Result: &Result{
			Samples:   [2]int{20000, 20000},
			MaxT:      1.23,
			Dof:       39000,
			PValue:    0.218,
			Threshold: 4.5,
			Verdict:   VerdictNoEvidence,
		},
	}, {
		Name: "single-bit-difference",
		Result: &Result{
			Samples:   [2]int{20000, 20000},
			MaxT:      17.4,
			Dof:       25000,
			PValue:    0,
			Threshold: 4.5,
			Verdict:   VerdictDefinitelyLeaky,
		},
	}}

	var buf strings.Builder
	if err := WriteMarkdownReport(&buf, "SHA-256 timing report", results); err != nil {
		t.Fatalf("unexpected report error: %v", err)
	}
	report := buf.String()

	for _, want := range []string{
		"# SHA-256 timing report",
		"1 of 2 scenarios",
		"| block-boundary | 20000/20000 | 1.23 | 0.218 | no evidence of leakage |",
		"| single-bit-difference | 20000/20000 | 17.40 | 0 | definitely leaky |",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

// TestResultLeaky ensures Leaky treats both leaky verdicts as leaks and the
// no-evidence verdict as clean.
func TestResultLeaky(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verdict Verdict
		want    bool
	}{
		{VerdictNoEvidence, false},
		{VerdictProbablyLeaky, true},
		{VerdictDefinitelyLeaky, true},
	}
	for _, test := range tests {
		sr := ScenarioResult{Result: &Result{Verdict: test.verdict}}
		if got := sr.Leaky(); got != test.want {
			t.Errorf("%v: got %v, want %v", test.verdict, got, test.want)
		}
	}
}
