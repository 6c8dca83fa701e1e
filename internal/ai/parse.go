package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in reply")

type rawProposal struct {
	Reasoning   string         `json:"reasoning"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	SafetyCheck string         `json:"safety_check"`
}

// ParseProposal extracts the first JSON object from a model reply and
// decodes it into a proposal. Unknown action names map to action.Unknown.
func ParseProposal(reply string) (*Proposal, error) {
	obj := firstObject(strings.TrimSpace(reply))
	if obj == "" {
		return nil, ErrNoJSON
	}

	var raw rawProposal
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		// Models often emit raw newlines inside strings
		raw = rawProposal{}
		if err2 := json.Unmarshal([]byte(stripControl(obj)), &raw); err2 != nil {
			return nil, fmt.Errorf("failed to parse proposal: %w", err)
		}
	}

	params := action.Params(raw.Parameters)
	if params == nil {
		params = action.Params{}
	}

	return &Proposal{
		Reasoning:   raw.Reasoning,
		Action:      action.ParseKind(raw.Action),
		RawAction:   raw.Action,
		Parameters:  params,
		SafetyCheck: raw.SafetyCheck,
	}, nil
}

// firstObject returns the first balanced {...} in s, ignoring braces inside
// JSON strings. An unbalanced object is returned up to the end of s.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// stripControl replaces line breaks with spaces and drops other control
// characters except tabs.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r' || r == '\n':
			b.WriteByte(' ')
		case r < 32 && r != '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
