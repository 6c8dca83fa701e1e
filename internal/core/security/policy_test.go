package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if len(p.AllowedCommands) == 0 || len(p.DeniedTokens) == 0 || len(p.ForbiddenPaths) == 0 {
		t.Error("Expected default lists to be populated")
	}
	if p.CommandTimeout != 10 {
		t.Errorf("Expected 10s timeout, got %d", p.CommandTimeout)
	}

	// Callers must not be able to mutate the package defaults
	p.AllowedCommands[0] = "rm"
	if DefaultAllowedCommands[0] == "rm" {
		t.Error("DefaultPolicy must copy the default lists")
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `allowed_commands: [ls, git]
command_timeout: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write policy: %v", err)
	}

	p, err := LoadPolicyFile(path, nil)
	if err != nil {
		t.Fatalf("LoadPolicyFile failed: %v", err)
	}

	if len(p.AllowedCommands) != 2 || p.AllowedCommands[1] != "git" {
		t.Errorf("Expected file allow-set, got %v", p.AllowedCommands)
	}
	if p.CommandTimeout != 3 {
		t.Errorf("Expected timeout 3, got %d", p.CommandTimeout)
	}
	if len(p.DeniedTokens) != len(DefaultDeniedTokens) {
		t.Error("Expected denylist to keep defaults")
	}
	if p.PolicyFile != path {
		t.Errorf("Expected policy file to be recorded, got %s", p.PolicyFile)
	}
}

func TestLoadPolicyFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("allowed_commands: {"), 0644); err != nil {
		t.Fatalf("Failed to write policy: %v", err)
	}

	if _, err := LoadPolicyFile(path, nil); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := LoadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected read error")
	}
}
