package snapshot

import "strings"

// Decision is the outcome of comparing a run against the previous
// snapshot. LastRunAt always advances; LastChangeAt only advances when
// content differed.
type Decision struct {
	Changed      bool
	LastChangeAt string
}

// Decide compares the current canonical value against the previous one.
// A missing previous snapshot (first run, unreadable file) counts as
// changed. When nothing changed the previous change timestamp carries
// forward, falling back to runAt if the previous meta lacked it. Pure
// function, no clock reads and no I/O.
func Decide[C any](current C, previous *C, equal func(a, b C) bool, prevLastChangeAt, runAt string) Decision {
	if previous == nil {
		return Decision{Changed: true, LastChangeAt: runAt}
	}
	if !equal(current, *previous) {
		return Decision{Changed: true, LastChangeAt: runAt}
	}
	if strings.TrimSpace(prevLastChangeAt) == "" {
		return Decision{Changed: false, LastChangeAt: runAt}
	}
	return Decision{Changed: false, LastChangeAt: prevLastChangeAt}
}
