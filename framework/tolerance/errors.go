package tolerance

import "fmt"

// ConfigurationError means that a scenario was given malformed input, such as a check that is
// missing from the catalogue or an outcome whose ideal values are not tolerated. It is fatal to
// the scenario that encountered it, but not to the rest of the run.
type ConfigurationError struct {
	Check   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Check == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in check %q: %s", e.Check, e.Message)
}

// ContractViolation is the error form of a failed Verdict. It is never retried.
type ContractViolation struct {
	Verdict Verdict
}

func (e *ContractViolation) Error() string {
	if e.Verdict.BugID != "" {
		return fmt.Sprintf("contract violation (%s): %s", e.Verdict.BugID, e.Verdict)
	}
	return "contract violation: " + e.Verdict.String()
}

// Err returns a *ContractViolation for a failed verdict, or nil if it passed.
func (v Verdict) Err() error {
	if v.Passed {
		return nil
	}
	return &ContractViolation{Verdict: v}
}
