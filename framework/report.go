package framework

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const reportSchemaVersion = 1

// RunReport is the JSON form of the results of one run. It is written once at the end of a run
// and never read back by the harness.
type RunReport struct {
	SchemaVersion int    `json:"schema_version"`
	RunID         string `json:"run_id"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at"`
	Target        struct {
		BaseURL string `json:"base_url"`
		Message string `json:"message"`
		Version string `json:"version"`
	} `json:"target"`
	Tests            []reportTest `json:"tests"`
	Failed           int          `json:"failed"`
	ObservedBugs     []string     `json:"observed_bugs"`
	UnreproducedBugs []string     `json:"unreproduced_bugs"`
}

type reportTest struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Duration int64           `json:"duration_ms"`
	Errors   []string        `json:"errors,omitempty"`
	Verdicts []reportVerdict `json:"verdicts,omitempty"`
	Debug    []string        `json:"debug,omitempty"`
}

type reportVerdict struct {
	Check        string `json:"check"`
	Observed     string `json:"observed"`
	Passed       bool   `json:"passed"`
	MatchedIdeal bool   `json:"matched_ideal"`
	BugID        string `json:"bug_id,omitempty"`
}

// NewRunReport builds a report from the results of a run.
func NewRunReport(results Results, harness *TestHarness, startedAt, finishedAt time.Time) RunReport {
	r := RunReport{
		SchemaVersion:    reportSchemaVersion,
		RunID:            uuid.NewString(),
		StartedAt:        startedAt.UTC().Format(time.RFC3339),
		FinishedAt:       finishedAt.UTC().Format(time.RFC3339),
		Failed:           len(results.Failures),
		ObservedBugs:     results.ObservedBugs(),
		UnreproducedBugs: results.UnreproducedBugs(),
	}
	if harness != nil {
		r.Target.BaseURL = harness.BaseURL()
		r.Target.Message = harness.ServiceInfo().Message
		r.Target.Version = harness.ServiceInfo().Version
	}
	failed := make(map[string]bool)
	for _, f := range results.Failures {
		failed[f.TestID.String()] = true
	}
	for _, t := range results.Tests {
		if len(t.TestID.Path) == 0 {
			continue
		}
		rt := reportTest{ID: t.TestID.String(), Status: "passed", Duration: t.Duration.Milliseconds()}
		switch {
		case failed[rt.ID]:
			rt.Status = "failed"
			rt.Debug = t.DebugOutput.Lines()
		case t.Skipped:
			rt.Status = "skipped"
		}
		for _, err := range t.Errors {
			rt.Errors = append(rt.Errors, err.Error())
		}
		for _, v := range t.Verdicts {
			rt.Verdicts = append(rt.Verdicts, reportVerdict{
				Check:        v.Check,
				Observed:     v.Observed,
				Passed:       v.Passed,
				MatchedIdeal: v.MatchedIdeal,
				BugID:        v.BugID,
			})
		}
		r.Tests = append(r.Tests, rt)
	}
	return r
}

// WriteFile writes the report as indented JSON.
func (r RunReport) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot encode run report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "cannot write run report to %s", path)
	}
	return nil
}
