package ai

import (
	"strings"
	"testing"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

func TestHistoryContext_Empty(t *testing.T) {
	if got := HistoryContext(nil); got != "" {
		t.Errorf("Expected empty context, got '%s'", got)
	}
	if got := BuildUserPrompt("list files", nil); got != "list files" {
		t.Errorf("Expected bare instruction, got '%s'", got)
	}
}

func TestHistoryContext_LastFive(t *testing.T) {
	var turns []Turn
	for i := 0; i < 7; i++ {
		turns = append(turns, Turn{Action: action.ListFiles, Status: action.StatusSuccess, Message: "turn-" + string(rune('a'+i))})
	}

	ctx := HistoryContext(turns)

	if strings.Contains(ctx, "turn-a") || strings.Contains(ctx, "turn-b") {
		t.Error("Expected only the last five turns")
	}
	if !strings.Contains(ctx, "turn-c") || !strings.Contains(ctx, "turn-g") {
		t.Error("Expected turns c through g")
	}
	if !strings.Contains(ctx, "5. [OK] list_files") {
		t.Errorf("Expected numbered entries, got:\n%s", ctx)
	}
}

func TestHistoryContext_Details(t *testing.T) {
	long := strings.Repeat("x", 150)
	turns := []Turn{
		{Action: action.ReadFile, Status: action.StatusSuccess, ExecutionTime: 0.5, Content: long},
		{Action: action.ExecuteCommand, Status: action.StatusError, Error: "command not allowed: rm"},
	}

	ctx := HistoryContext(turns)

	if !strings.Contains(ctx, "(0.50s)") {
		t.Error("Expected execution time with two decimals")
	}
	if strings.Contains(ctx, strings.Repeat("x", 101)) {
		t.Error("Expected content to be truncated to 100 characters")
	}
	if !strings.Contains(ctx, "[FAILED] execute_command") || !strings.Contains(ctx, "Error: command not allowed: rm") {
		t.Errorf("Expected failed turn with error, got:\n%s", ctx)
	}

	prompt := BuildUserPrompt("next", turns)
	if !strings.HasPrefix(prompt, "next\n\nHISTORY CONTEXT") {
		t.Errorf("Unexpected prompt layout: %s", prompt)
	}
}
