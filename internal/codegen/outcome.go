package codegen

import (
	"fmt"
	"strings"
)

// Outcome is the terminal state of one target in one generation run.
type Outcome int

const (
	// OutcomeGenerated: the schema compiler succeeded and the full binary
	// codec was emitted.
	OutcomeGenerated Outcome = iota + 1
	// OutcomeFallback: the compiler was unavailable or failed; a JSON codec
	// with the same API was emitted from the scanned schema.
	OutcomeFallback
	// OutcomePlaceholder: there was no usable schema; one field-less type
	// was emitted.
	OutcomePlaceholder
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeFallback:
		return "fallback"
	case OutcomePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generated":
		return OutcomeGenerated, nil
	case "fallback":
		return OutcomeFallback, nil
	case "placeholder":
		return OutcomePlaceholder, nil
	default:
		return 0, fmt.Errorf("codegen: unknown outcome %q", s)
	}
}

// Target names an output runtime.
type Target string

const (
	TargetNative  Target = "native"
	TargetBrowser Target = "browser"
)

// Result describes what happened to one target.
type Result struct {
	Target  Target
	Outcome Outcome
	Output  string
	// Reason is why the target degraded; nil for OutcomeGenerated.
	Reason error
	// Retry marks a result the next run must not skip even when the schema
	// is unchanged, because the toolchain may have become available.
	Retry bool
	// Skipped is set when the stamp showed the output already current.
	Skipped bool
	// Written is false when the rendered output matched the file on disk.
	Written bool
}

// Report collects the results of one run.
type Report struct {
	RunID      string
	SchemaHash string
	Results    []Result
}

// Result returns the result for target, if it ran.
func (r Report) Result(target Target) (Result, bool) {
	for _, res := range r.Results {
		if res.Target == target {
			return res, true
		}
	}
	return Result{}, false
}

// Degraded reports whether any target ended below OutcomeGenerated.
func (r Report) Degraded() bool {
	for _, res := range r.Results {
		if res.Outcome != OutcomeGenerated {
			return true
		}
	}
	return false
}

// WireMismatch reports whether the native and browser outputs ended in
// different outcomes. Such a pair cannot exchange messages, since either the
// wire formats or the declared types differ.
func (r Report) WireMismatch() bool {
	native, ok := r.Result(TargetNative)
	if !ok {
		return false
	}
	browser, ok := r.Result(TargetBrowser)
	return ok && native.Outcome != browser.Outcome
}
