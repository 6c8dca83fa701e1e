package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lin-Jiong-HDU/gate/internal/core/security"
)

func TestConfirmWithIO_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"o\n", true},
		{"oui\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"y", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			output := &strings.Builder{}

			got, err := ConfirmWithIO("delete", "Delete file notes.txt", strings.NewReader(tt.input), output)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v for %q, got %v", tt.want, tt.input, got)
			}
		})
	}
}

func TestConfirmWithIO_ShowsAction(t *testing.T) {
	output := &strings.Builder{}

	if _, err := ConfirmWithIO("delete", "Delete file notes.txt", strings.NewReader("n\n"), output); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	out := output.String()
	if !strings.Contains(out, "Confirmation required") {
		t.Error("Expected confirmation banner in output")
	}
	if !strings.Contains(out, "Delete file notes.txt") {
		t.Error("Expected action description in output")
	}
	if !strings.Contains(out, "Cancelled") {
		t.Error("Expected cancellation notice in output")
	}
}

func TestConfirmer_ReadsOneAnswerPerCall(t *testing.T) {
	c := NewConfirmer(strings.NewReader("y\nn\n"), io.Discard)

	first, err := c.Confirm(context.Background(), "delete", "a")
	if err != nil || !first {
		t.Errorf("Expected first answer to approve, got %v (%v)", first, err)
	}
	second, err := c.Confirm(context.Background(), "delete", "b")
	if err != nil || second {
		t.Errorf("Expected second answer to refuse, got %v (%v)", second, err)
	}
	third, err := c.Confirm(context.Background(), "delete", "c")
	if err != nil || third {
		t.Errorf("Expected EOF to refuse, got %v (%v)", third, err)
	}
}

func TestConfirmer_NonInteractiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers")
	if err := os.WriteFile(path, []byte("y\n"), 0644); err != nil {
		t.Fatalf("Failed to write answers: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open answers: %v", err)
	}
	defer f.Close()

	c := NewConfirmer(f, io.Discard)

	ok, err := c.Confirm(context.Background(), "delete", "Delete file x")
	if ok {
		t.Error("Expected refusal without a terminal")
	}
	if !errors.Is(err, ErrNonInteractive) {
		t.Errorf("Expected ErrNonInteractive, got %v", err)
	}
}

func TestConfirmer_CancelledContext(t *testing.T) {
	c := NewConfirmer(strings.NewReader("y\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Confirm(ctx, "delete", "x")
	if ok {
		t.Error("Expected refusal on cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLineConfirmer(t *testing.T) {
	lines := &fakeLines{lines: []string{"oui"}}
	output := &strings.Builder{}
	c := NewLineConfirmer(lines, output)

	ok, err := c.Confirm(context.Background(), "delete", "Delete file a.txt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Error("Expected approval")
	}
	if len(lines.prompts) == 0 || lines.prompts[len(lines.prompts)-1] != confirmPrompt {
		t.Errorf("Expected confirmation prompt, got %v", lines.prompts)
	}
	if !strings.Contains(output.String(), "Delete file a.txt") {
		t.Error("Expected description in output")
	}
}

func TestLineConfirmer_EOF(t *testing.T) {
	c := NewLineConfirmer(&fakeLines{}, io.Discard)

	ok, err := c.Confirm(context.Background(), "delete", "x")
	if ok {
		t.Error("Expected refusal at EOF")
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestConfirmer_DrivesDeleteGate(t *testing.T) {
	root := t.TempDir()
	paths, err := security.NewPathChecker(root, nil)
	if err != nil {
		t.Fatalf("NewPathChecker failed: %v", err)
	}

	tests := []struct {
		answer  string
		allowed bool
		reason  string
	}{
		{"yes\n", true, ""},
		{"no\n", false, "deletion cancelled by user"},
		{"", false, "deletion cancelled by user"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			gate := security.NewDeleteGate(paths, NewConfirmer(strings.NewReader(tt.answer), io.Discard))

			v := gate.Check(context.Background(), "notes.txt")
			if v.Allowed != tt.allowed {
				t.Errorf("Expected allowed=%v, got %v (%s)", tt.allowed, v.Allowed, v.Reason)
			}
			if v.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, v.Reason)
			}
		})
	}
}
