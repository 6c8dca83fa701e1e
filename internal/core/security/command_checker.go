package security

import (
	"regexp"
	"strings"
)

// CommandChecker validates shell commands against an allow-set of base
// tokens and a whole-word denylist.
type CommandChecker struct {
	allowed map[string]bool
	denied  []deniedToken
}

type deniedToken struct {
	token string
	re    *regexp.Regexp
}

// NewCommandChecker creates a command checker from policy.
func NewCommandChecker(policy *SecurityPolicy) *CommandChecker {
	policy = policy.withDefaults()

	allowed := make(map[string]bool, len(policy.AllowedCommands))
	for _, c := range policy.AllowedCommands {
		allowed[strings.ToLower(strings.TrimSpace(c))] = true
	}

	denied := make([]deniedToken, 0, len(policy.DeniedTokens))
	for _, tok := range policy.DeniedTokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		denied = append(denied, deniedToken{
			token: tok,
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`),
		})
	}

	return &CommandChecker{allowed: allowed, denied: denied}
}

// BaseToken returns the lower-cased first whitespace token of cmd.
func BaseToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// BaseAllowed reports whether the base token of cmd is in the allow-set.
func (cc *CommandChecker) BaseAllowed(cmd string) (string, bool) {
	base := BaseToken(cmd)
	return base, base != "" && cc.allowed[base]
}

// Check decides whether cmd may be executed. Both the base token and the
// full-text denylist scan must pass.
func (cc *CommandChecker) Check(cmd string) Verdict {
	if strings.TrimSpace(cmd) == "" {
		return Deny("empty command")
	}

	base, ok := cc.BaseAllowed(cmd)
	if !ok {
		return Deny("command not allowed: %s", base)
	}

	// The denylist scan covers the whole text, so "ls; rm -rf /" is caught
	// even though its base token is allowed
	for _, d := range cc.denied {
		if d.re.MatchString(cmd) {
			return Deny("dangerous command detected: %s", d.token)
		}
	}

	return Allow()
}
