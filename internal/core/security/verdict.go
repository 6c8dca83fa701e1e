package security

import "fmt"

// Verdict is the result of a security check.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Allow returns an allow verdict with an empty reason.
func Allow() Verdict {
	return Verdict{Allowed: true}
}

// Deny returns a disallow verdict with a formatted reason.
func Deny(format string, args ...any) Verdict {
	return Verdict{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}
