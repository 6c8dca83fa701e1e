// Package action defines the closed vocabulary of actions the oracle may
// propose, their parameters and the results an executed action produces.
package action

import (
	"fmt"
	"strings"
)

// Kind is the name of an action in the closed action vocabulary.
type Kind string

const (
	ReadFile            Kind = "read_file"
	CreateFile          Kind = "create_file"
	EditFile            Kind = "edit_file"
	DeleteFile          Kind = "delete_file"
	ListFiles           Kind = "list_files"
	GetFileInfo         Kind = "get_file_info"
	ExecuteCommand      Kind = "execute_command"
	GetWorkingDirectory Kind = "get_working_directory"

	// Error is the oracle's own refusal or failure fallback.
	Error Kind = "error"
	// Unknown marks a proposal whose action name is outside the vocabulary.
	Unknown Kind = "unknown"
)

// AllKinds lists every kind the router must handle, in prompt order.
var AllKinds = []Kind{
	ReadFile,
	CreateFile,
	EditFile,
	DeleteFile,
	ListFiles,
	ExecuteCommand,
	GetWorkingDirectory,
	GetFileInfo,
	Error,
	Unknown,
}

// ParseKind maps a raw action name to a Kind. Names outside the vocabulary
// map to Unknown.
func ParseKind(raw string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllKinds {
		if k == known {
			return k
		}
	}
	return Unknown
}

// Known reports whether k is part of the vocabulary.
func (k Kind) Known() bool {
	return k != Unknown && ParseKind(string(k)) == k
}

// Params holds the parameters of a proposed action.
type Params map[string]any

// String returns the string value stored under key, or fallback when the key
// is missing. Non-string scalars are formatted with fmt.
func (p Params) String(key, fallback string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy of p. A nil map clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
