// Package verdict projects raw judge statuses into user-facing semantics.
// Everything here is a pure function over the wire status enum.
package verdict

import "strings"

// Status is the raw status string reported by the judge.
type Status string

// Wire values stored by the judge. Any other string the server introduces
// later is treated as terminal so a poller never loops on it.
const (
	StatusSubmitting          Status = "submitting"
	StatusPending             Status = "pending"
	StatusRunning             Status = "running"
	StatusAccepted            Status = "accepted"
	StatusWrongAnswer         Status = "wrong_answer"
	StatusCompilationError    Status = "compilation_error"
	StatusRuntimeError        Status = "runtime_error"
	StatusTimeLimitExceeded   Status = "time_limit_exceeded"
	StatusMemoryLimitExceeded Status = "memory_limit_exceeded"
)

// Class groups statuses by what a caller should do with them.
type Class int

const (
	ClassNonTerminal Class = iota
	ClassTerminalSuccess
	ClassTerminalFailure
)

// Severity is a rendering hint for terminal UIs.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeveritySuccess
	SeverityDestructive
)

// Terminal reports whether polling must stop on this status. The set of
// continuing statuses is closed: unknown values terminate.
func (s Status) Terminal() bool {
	switch s {
	case StatusSubmitting, StatusPending, StatusRunning:
		return false
	default:
		return true
	}
}

// Known reports whether s is one of the documented wire values.
func (s Status) Known() bool {
	switch s {
	case StatusSubmitting, StatusPending, StatusRunning,
		StatusAccepted, StatusWrongAnswer, StatusCompilationError,
		StatusRuntimeError, StatusTimeLimitExceeded, StatusMemoryLimitExceeded:
		return true
	default:
		return false
	}
}

// Classify maps a status into non-terminal / terminal-success /
// terminal-failure. Unknown statuses classify as terminal failure.
func Classify(s Status) Class {
	if !s.Terminal() {
		return ClassNonTerminal
	}
	if s == StatusAccepted {
		return ClassTerminalSuccess
	}
	return ClassTerminalFailure
}

// SeverityOf returns the rendering hint for a status. The table is fixed;
// unknown statuses fall back to neutral rather than erroring.
func SeverityOf(s Status) Severity {
	switch s {
	case StatusAccepted:
		return SeveritySuccess
	case StatusWrongAnswer, StatusCompilationError, StatusRuntimeError,
		StatusTimeLimitExceeded, StatusMemoryLimitExceeded:
		return SeverityDestructive
	default:
		return SeverityNeutral
	}
}

// Label renders a status for humans: underscore-separated tokens become
// capitalized words, e.g. "wrong_answer" -> "Wrong Answer". The splitting
// rule applies to unknown statuses too.
func Label(s Status) string {
	tokens := strings.Split(string(s), "_")
	for i, token := range tokens {
		if token == "" {
			continue
		}
		tokens[i] = strings.ToUpper(token[:1]) + token[1:]
	}
	return strings.Join(tokens, " ")
}
