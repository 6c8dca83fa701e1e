package anthropic

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/ai"
)

// TestClient_Live talks to the real Messages API.
func TestClient_Live(t *testing.T) {
	if os.Getenv("GATE_INTEGRATION_TEST") == "" {
		t.Skip("Set GATE_INTEGRATION_TEST=1 to run live oracle tests")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	client := NewClient(apiKey, "", "", ai.Options{Timeout: 60 * time.Second})

	p, err := client.Propose(context.Background(), "List the files in the current directory", nil)
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if p.Action != action.ListFiles {
		t.Errorf("Expected list_files, got %s (raw %q)", p.Action, p.RawAction)
	}

	t.Logf("reasoning: %s", p.Reasoning)
}
