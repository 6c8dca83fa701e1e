package security

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityPolicy defines the security configuration.
type SecurityPolicy struct {
	// AllowedCommands is the allow-set for the first token of a command.
	AllowedCommands []string `mapstructure:"allowed_commands" yaml:"allowed_commands"`

	// DeniedTokens are rejected anywhere in a command, matched as whole words.
	DeniedTokens []string `mapstructure:"denied_tokens" yaml:"denied_tokens"`

	// ForbiddenPaths are sensitive fragments a candidate path may not contain.
	ForbiddenPaths []string `mapstructure:"forbidden_paths" yaml:"forbidden_paths"`

	// CommandTimeout is the wall-clock budget of a command, in seconds.
	CommandTimeout int `mapstructure:"command_timeout" yaml:"command_timeout"`

	// MaxOutput caps captured stdout and stderr, in bytes. 0 means unbounded.
	MaxOutput int `mapstructure:"max_output" yaml:"max_output"`

	// PolicyFile optionally points at a YAML document merged over this policy.
	PolicyFile string `mapstructure:"policy_file" yaml:"-"`
}

// DefaultAllowedCommands are benign utilities: listing, reading, searching,
// echoing, directory creation, copy/move, identity/time queries, find/count.
var DefaultAllowedCommands = []string{
	"ls", "cat", "grep", "echo", "mkdir", "touch",
	"cp", "mv", "pwd", "whoami", "date", "find", "wc",
	"dir", "type",
}

// DefaultDeniedTokens cover deletion, privilege escalation, formatting,
// network fetching, shell invocation and SQL mutation.
var DefaultDeniedTokens = []string{
	"rm", "rm -rf", "del", "erase", "format",
	"sudo", "su", "chmod", "chown",
	"drop", "delete from", "truncate",
	"mkfs", "dd", "fdisk", "shutdown", "reboot",
	"curl", "wget", "nc", "bash", "sh",
}

// DefaultForbiddenPaths are POSIX and Windows system locations.
var DefaultForbiddenPaths = []string{
	"/etc", "/sys", "/proc", "/root", "/var",
	"/usr/bin", "/bin", "/sbin", "/boot",
	`C:\Windows`, `C:\System32`, `C:\Program Files`,
}

const (
	DefaultCommandTimeout = 10
	DefaultMaxOutput      = 1 << 20
)

// DefaultPolicy returns the default security policy.
func DefaultPolicy() *SecurityPolicy {
	return &SecurityPolicy{
		AllowedCommands: append([]string(nil), DefaultAllowedCommands...),
		DeniedTokens:    append([]string(nil), DefaultDeniedTokens...),
		ForbiddenPaths:  append([]string(nil), DefaultForbiddenPaths...),
		CommandTimeout:  DefaultCommandTimeout,
		MaxOutput:       DefaultMaxOutput,
	}
}

// withDefaults fills empty fields from DefaultPolicy.
func (p *SecurityPolicy) withDefaults() *SecurityPolicy {
	def := DefaultPolicy()
	if p == nil {
		return def
	}
	out := *p
	if len(out.AllowedCommands) == 0 {
		out.AllowedCommands = def.AllowedCommands
	}
	if len(out.DeniedTokens) == 0 {
		out.DeniedTokens = def.DeniedTokens
	}
	if len(out.ForbiddenPaths) == 0 {
		out.ForbiddenPaths = def.ForbiddenPaths
	}
	if out.CommandTimeout <= 0 {
		out.CommandTimeout = def.CommandTimeout
	}
	if out.MaxOutput < 0 {
		out.MaxOutput = 0
	}
	return &out
}

// LoadPolicyFile reads a YAML policy document and merges it over base.
// Lists present in the file replace the base lists; scalar fields override
// only when set.
func LoadPolicyFile(path string, base *SecurityPolicy) (*SecurityPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var file SecurityPolicy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	merged := *base.withDefaults()
	if len(file.AllowedCommands) > 0 {
		merged.AllowedCommands = file.AllowedCommands
	}
	if len(file.DeniedTokens) > 0 {
		merged.DeniedTokens = file.DeniedTokens
	}
	if len(file.ForbiddenPaths) > 0 {
		merged.ForbiddenPaths = file.ForbiddenPaths
	}
	if file.CommandTimeout > 0 {
		merged.CommandTimeout = file.CommandTimeout
	}
	if file.MaxOutput > 0 {
		merged.MaxOutput = file.MaxOutput
	}
	merged.PolicyFile = path

	return &merged, nil
}
