// Package policy turns a line's scan result and the active flag set into an
// emit decision, and tracks the counters count mode needs. It holds no
// knowledge of how a line was scanned or how output is written; it is pure
// decision logic over booleans, kept separate so the truth table in §4.E is
// testable in isolation from scanner and lineio.
package policy

// Flags mirrors the subset of CLI flags that affect the emit decision.
type Flags struct {
	Invert       bool // -v
	IncludeNonIP bool // -i
	Count        bool // -c (does not affect Decide, only the caller's use of counters)
	ExactAtStart bool // -x (does not affect Decide, only how A/M were computed)
}

// Decide implements the §4.E truth table: hasAnyIP is whether the line
// contained at least one parseable address, hasMatchingIP is whether any
// parsed address matched the compiled pattern set.
func Decide(hasAnyIP, hasMatchingIP bool, f Flags) bool {
	if f.IncludeNonIP && !hasAnyIP {
		return true
	}
	if hasAnyIP {
		shouldInvert := f.Invert || f.IncludeNonIP
		if shouldInvert {
			return !hasMatchingIP
		}
		return hasMatchingIP
	}
	if f.Invert {
		return true
	}
	return false
}

// Counters accumulates count-mode state across a run.
type Counters struct {
	Matches int64
}

// Record applies an emit decision to the counters, returning the same
// decision unchanged so callers can chain it into their own emit branch.
func (c *Counters) Record(emit bool) bool {
	if emit {
		c.Matches++
	}
	return emit
}

// ExitCode maps a run's outcome to the process exit status described in §4.E
// and §6: 0 when at least one line was emitted (or, in count mode, the
// count is non-zero), 1 when none were, 2 is reserved for fatal errors and
// is never returned here — callers set it directly on fatal paths.
func ExitCode(emittedAny bool) int {
	if emittedAny {
		return 0
	}
	return 1
}
