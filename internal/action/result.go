package action

import (
	"fmt"
	"time"
)

// FailureKind classifies why an action did not succeed.
type FailureKind string

const (
	FailurePolicy    FailureKind = "policy_violation"
	FailureOperation FailureKind = "operation_failure"
	FailureTimeout   FailureKind = "timeout"
	FailureUnknown   FailureKind = "unknown_action"
	FailureOracle    FailureKind = "oracle_failure"
)

// Item is one direct child of a listed directory.
type Item struct {
	Name   string `json:"name"`
	IsFile bool   `json:"is_file"`
	Size   int64  `json:"size"`
}

// FileInfo describes a file or directory inside the working root.
type FileInfo struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	IsFile   bool      `json:"is_file"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Result is the outcome of one routed action. Exactly one of the success
// payload fields or the failure fields is meaningful, depending on Success.
type Result struct {
	Success bool        `json:"success"`
	Failure FailureKind `json:"failure,omitempty"`
	Error   string      `json:"error,omitempty"`

	Path       string    `json:"path,omitempty"`
	Content    string    `json:"content,omitempty"`
	Message    string    `json:"message,omitempty"`
	Size       int64     `json:"size,omitempty"`
	Items      []Item    `json:"items"`
	Count      int       `json:"count,omitempty"`
	Info       *FileInfo `json:"info,omitempty"`
	Output     string    `json:"output,omitempty"`
	Command    string    `json:"command,omitempty"`
	ExitCode   int       `json:"exit_code,omitempty"`
	WorkingDir string    `json:"working_dir,omitempty"`
}

// Fail builds a failed result.
func Fail(kind FailureKind, format string, args ...any) Result {
	return Result{
		Success: false,
		Failure: kind,
		Error:   fmt.Sprintf(format, args...),
	}
}

// Status returns the history status tag for r.
func (r Result) Status() Status {
	if r.Success {
		return StatusSuccess
	}
	return StatusError
}

// Status is the success/error tag recorded with every attempted action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)
