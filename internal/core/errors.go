package core

import (
	"errors"

	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
)

// Sentinel errors returned by sandboxed operations.
var (
	// ErrOutsideRoot indicates a target resolved outside the working root.
	ErrOutsideRoot = security.ErrOutsideRoot

	ErrNotFound = errors.New("not found")
	ErrNotFile  = errors.New("not a file")
	ErrNotDir   = errors.New("not a directory")

	// ErrTimeout indicates a command exceeded its wall-clock budget and was killed.
	ErrTimeout = errors.New("command timed out")

	ErrCommandNotAllowed = errors.New("command not allowed")
	ErrCommandFailed     = errors.New("command failed")
)
