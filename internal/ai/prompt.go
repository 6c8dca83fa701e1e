package ai

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

// MaxContextTurns is the number of earlier turns included in a prompt.
const MaxContextTurns = 5

// SystemPrompt describes the tools, the reply format and the safety rules.
const SystemPrompt = `You are gate, an assistant that carries out file and command tasks inside a working directory.

Available tools:
1. read_file(path) - read the content of a file
2. create_file(path, content) - create a file
3. edit_file(path, content) - replace the content of a file
4. delete_file(path) - delete a file (DANGEROUS, the user is asked to confirm)
5. list_files(path) - list a directory
6. execute_command(command) - run a safe system command
7. get_working_directory() - show the working directory
8. get_file_info(path) - show file metadata

Always reply with a single JSON object:
{
  "reasoning": "step by step explanation of the decision",
  "action": "one of the tool names above, or error",
  "parameters": {"param": "value"},
  "safety_check": "the safety decision and its justification"
}

Safety rules:
1. Paths are relative to the working directory. Never use "..", absolute paths or system locations (/etc, /sys, /root, ...).
2. delete_file is irreversible. Explain why the deletion is needed.
3. Commands are limited to: ls, cat, grep, echo, mkdir, touch, cp, mv, pwd, whoami, date, find, wc.
   Never use rm, del, sudo, su, chmod, chown, curl, wget, bash or sh, and never chain commands.
   Each command has a 10 second timeout.
4. Explain file content before creating or editing a file.
5. When in doubt, refuse with action "error" and empty parameters.

Example:
{
  "reasoning": "The user wants to read README.md. The path is relative and has no '..'.",
  "action": "read_file",
  "parameters": {"path": "README.md"},
  "safety_check": "Safe read inside the working directory"
}`

// BuildUserPrompt appends the history context block to instruction.
func BuildUserPrompt(instruction string, recent []Turn) string {
	ctx := HistoryContext(recent)
	if ctx == "" {
		return instruction
	}
	return instruction + "\n\n" + ctx
}

// HistoryContext renders the last MaxContextTurns turns.
func HistoryContext(recent []Turn) string {
	if len(recent) == 0 {
		return ""
	}
	if len(recent) > MaxContextTurns {
		recent = recent[len(recent)-MaxContextTurns:]
	}

	var b strings.Builder
	b.WriteString("HISTORY CONTEXT (previous actions):\n")
	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")

	for i, turn := range recent {
		mark := "FAILED"
		if turn.Status == action.StatusSuccess {
			mark = "OK"
		}
		fmt.Fprintf(&b, "%d. [%s] %s (%.2fs)\n", i+1, mark, turn.Action, turn.ExecutionTime)

		switch {
		case turn.Status != action.StatusSuccess:
			errMsg := turn.Error
			if errMsg == "" {
				errMsg = "unknown"
			}
			fmt.Fprintf(&b, "   Error: %s\n", errMsg)
		case turn.Content != "":
			fmt.Fprintf(&b, "   Result: %s...\n", truncateRunes(turn.Content, 100))
		case turn.Message != "":
			fmt.Fprintf(&b, "   Result: %s\n", turn.Message)
		}
	}

	b.WriteString("\nUse this context to avoid repeating actions and to coordinate tasks.\n")
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
