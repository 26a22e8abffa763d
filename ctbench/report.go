// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ctbench

import (
	"fmt"
	"io"
	"time"
)

// ScenarioResult pairs a detection result with the name of the scenario that
// produced it for reporting purposes.
type ScenarioResult struct {
	Name   string
	Result *Result
}

// Leaky returns whether the scenario was judged leaky at either severity.
func (sr *ScenarioResult) Leaky() bool {
	v := sr.Result.Verdict
	return v == VerdictProbablyLeaky || v == VerdictDefinitelyLeaky
}

// WriteMarkdownReport renders the passed scenario results as a Markdown
// document suitable for checking into a repository or attaching to a CI run.
func WriteMarkdownReport(w io.Writer, title string, results []ScenarioResult) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := fmt.Fprintf(w, "# %s\n\nGenerated %s.\n\n", title, now); err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := io.WriteString(w, "No scenarios were run.\n")
		return err
	}

	leaky := 0
	for i := range results {
		if results[i].Leaky() {
			leaky++
		}
	}
	summary := "No scenario showed evidence of secret-dependent timing."
	if leaky > 0 {
		summary = fmt.Sprintf("**%d of %d scenarios showed evidence of "+
			"secret-dependent timing.**", leaky, len(results))
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", summary); err != nil {
		return err
	}

	const header = "| Scenario | Samples (left/right) | max \\|t\\| | p-value | Verdict |\n" +
		"|----------|----------------------|-----------|---------|---------|\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for i := range results {
		sr := &results[i]
		res := sr.Result
		_, err := fmt.Fprintf(w, "| %s | %d/%d | %.2f | %.4g | %s |\n",
			sr.Name, res.Samples[0], res.Samples[1], res.MaxT, res.PValue,
			res.Verdict)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nA scenario is judged leaky when the largest "+
		"absolute Welch t statistic across upper-tail croppings exceeds the "+
		"configured threshold (here %.1f, with %.0f treated as definite).  "+
		"The absence of a leaky verdict is evidence at the sampled sizes, "+
		"not proof.\n", results[0].Result.Threshold, float64(definiteThreshold))
	return err
}
