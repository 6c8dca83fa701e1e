package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
	"github.com/Lin-Jiong-HDU/gate/internal/history"
)

func sampleEntries(n int) []history.Entry {
	entries := make([]history.Entry, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("file%02d.txt", i)
		res := action.Result{Success: true, Path: path, Content: "hello"}
		entries = append(entries, history.NewEntry(action.ReadFile, action.Params{"path": path}, res, "read it", time.Millisecond))
	}
	return entries
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestNewHistoryModel_NewestFirst(t *testing.T) {
	m := NewHistoryModel(sampleEntries(3)).(model)

	if len(m.entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(m.entries))
	}
	if got := m.entries[0].Parameters.String("path", ""); got != "file02.txt" {
		t.Errorf("Expected newest entry first, got %s", got)
	}
	if m.cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", m.cursor)
	}
}

func TestModel_Init(t *testing.T) {
	m := NewHistoryModel(nil)

	if cmd := m.Init(); cmd == nil {
		t.Error("Expected command from Init to get window size")
	}
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"down", []string{"j"}, 1},
		{"down twice then up", []string{"j", "j", "k"}, 1},
		{"up at top", []string{"k"}, 0},
		{"bottom", []string{"G"}, 4},
		{"down past bottom", []string{"G", "j"}, 4},
		{"bottom then top", []string{"G", "g"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewHistoryModel(sampleEntries(5)), tt.keys...).(model)
			if m.cursor != tt.want {
				t.Errorf("Expected cursor at %d, got %d", tt.want, m.cursor)
			}
		})
	}
}

func TestModel_EnterTogglesDetail(t *testing.T) {
	m := press(NewHistoryModel(sampleEntries(2)), "enter").(model)

	if !m.showDetail {
		t.Fatal("Expected detail view after enter")
	}
	view := m.View()
	if !strings.Contains(view, "file01.txt") || !strings.Contains(view, "read it") {
		t.Errorf("Expected detail of the selected entry, got:\n%s", view)
	}

	m = press(m, "enter").(model)
	if m.showDetail {
		t.Error("Expected list view after second enter")
	}

	m = press(m, "enter", "esc").(model)
	if m.showDetail {
		t.Error("Expected esc to leave the detail view")
	}
}

func TestModel_EnterOnEmpty(t *testing.T) {
	m := press(NewHistoryModel(nil), "enter").(model)

	if m.showDetail {
		t.Error("Expected no detail view without entries")
	}
	if !strings.Contains(m.View(), "No actions recorded yet") {
		t.Error("Expected empty state")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewHistoryModel(sampleEntries(1))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestModel_ScrollsWithWindow(t *testing.T) {
	var m tea.Model = NewHistoryModel(sampleEntries(30))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: chrome + 5})

	m = press(m, "G")
	mm := m.(model)
	if mm.offset != 25 {
		t.Errorf("Expected offset 25, got %d", mm.offset)
	}

	view := mm.View()
	if !strings.Contains(view, "file00.txt") {
		t.Error("Expected the oldest entry at the bottom to be visible")
	}
	if strings.Contains(view, "file29.txt") {
		t.Error("Expected the newest entry to be scrolled out")
	}
}

func TestModel_ErrorDetail(t *testing.T) {
	e := history.NewEntry(action.DeleteFile, action.Params{"path": "a.txt"},
		action.Fail(action.FailurePolicy, "deletion cancelled by user"), "", 0)
	m := press(NewHistoryModel([]history.Entry{e}), "enter").(model)

	if !strings.Contains(m.View(), "deletion cancelled by user") {
		t.Errorf("Expected error in detail view, got:\n%s", m.View())
	}
}

func TestKeyMap_Help(t *testing.T) {
	help := defaultKeyMap().Help()

	for _, want := range []string{"j", "k", "g", "G", "enter", "q"} {
		if !strings.Contains(help, want) {
			t.Errorf("Expected help to mention %q, got %q", want, help)
		}
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("line\n", maxDetailLines+5)

	out := clip(long)

	if !strings.Contains(out, "(5 more lines)") {
		t.Errorf("Expected overflow note, got %q", out)
	}
	if clip("a\nb\n") != "a\nb" {
		t.Errorf("Expected short text unchanged, got %q", clip("a\nb\n"))
	}
}
