package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/leicam1995/teste-api-ebac/internal/scenario"
)

// Report is the outcome of one run command.
type Report struct {
	Target string             `json:"target"`
	Passed bool               `json:"passed"`
	Suites []*scenario.Result `json:"suites"`
	Errors []SuiteError       `json:"errors,omitempty"`
}

// SuiteError records a suite that could not start or was interrupted.
type SuiteError struct {
	Suite string `json:"suite"`
	Error string `json:"error"`
}

func (r *Report) add(res *scenario.Result) {
	r.Suites = append(r.Suites, res)
	if !res.Passed {
		r.Passed = false
	}
}

func (r *Report) fail(suite string, err error) {
	r.Errors = append(r.Errors, SuiteError{Suite: suite, Error: err.Error()})
	r.Passed = false
}

func (r *Report) summary() string {
	failed := len(r.Errors)
	for _, s := range r.Suites {
		if !s.Passed {
			failed++
		}
	}
	return fmt.Sprintf("%d suite run(s) did not pass", failed)
}

// Write renders the report as text or JSON.
func (r *Report) Write(w io.Writer, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range r.Suites {
		verdict := "PASS"
		if !s.Passed {
			verdict = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\tstate=%s\t%s\n", s.Suite, verdict, s.State, s.Duration.Round(time.Millisecond))
		for _, c := range s.Cases {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.Status, c.Detail)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(tw, "%s\tERROR\t%s\n", e.Suite, e.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := map[scenario.Status]int{}
	for _, s := range r.Suites {
		for st, n := range s.Counts() {
			counts[st] += n
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d non-compliant, %d transport errors\n",
		counts[scenario.Passed], counts[scenario.Failed], counts[scenario.NonCompliant], counts[scenario.TransportError])
	return err
}
