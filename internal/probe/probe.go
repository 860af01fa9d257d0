package probe

import (
	"fmt"
	"strings"
)

// Status represents the outcome of a probe execution.
// Values are ordered by severity so that the worse of two results is the larger one.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

var statusNames = map[Status]string{
	StatusOK:       "OK",
	StatusWarning:  "WARNING",
	StatusCritical: "CRITICAL",
	StatusUnknown:  "UNKNOWN",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ExitCode returns the plugin exit code for the status.
// With softFail set, CRITICAL exits with the WARNING code.
func (s Status) ExitCode(softFail bool) int {
	if softFail && s == StatusCritical {
		return int(StatusWarning)
	}
	return int(s)
}

// Worst returns the most severe of the given statuses, or StatusOK if none are given.
func Worst(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		worst = max(worst, s)
	}
	return worst
}

// Result is the outcome of a single check run.
type Result struct {
	Status   Status
	Message  string
	PerfData []string
}

// Unknown builds an UNKNOWN result with a formatted reason. The reason is
// flattened to one line and "|" is replaced, since it usually carries
// command output and must not spill into the performance data.
func Unknown(format string, args ...any) *Result {
	return &Result{
		Status:  StatusUnknown,
		Message: "UNKNOWN: " + singleLine(fmt.Sprintf(format, args...)),
	}
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}

// Line renders the single status line: message, then "|" and the
// space-separated performance data when there is any.
func (r *Result) Line() string {
	if len(r.PerfData) == 0 {
		return r.Message
	}
	return r.Message + "|" + strings.Join(r.PerfData, " ")
}

// Description is the self-description format for probes.
type Description struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Arguments   Arguments `json:"arguments"`
}

// Arguments describes required and optional probe arguments.
type Arguments struct {
	Required map[string]ArgumentSpec `json:"required,omitempty"`
	Optional map[string]ArgumentSpec `json:"optional,omitempty"`
}

// ArgumentSpec describes a single argument.
type ArgumentSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}
