package history

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

func sampleHistory() *History {
	h := New(10, nil)
	h.Record(NewEntry(action.CreateFile, action.Params{"path": "notes/todo.txt", "content": "buy milk"},
		action.Result{Success: true, Path: "/w/notes/todo.txt", Message: "File created: notes/todo.txt", Size: 8},
		"create the note", 120*time.Millisecond))
	h.Record(NewEntry(action.ListFiles, action.Params{"path": "."},
		action.Result{Success: true, Path: "/w", Items: []action.Item{{Name: "notes", IsFile: false}}, Count: 1},
		"list", 10*time.Millisecond))
	h.Record(NewEntry(action.ListFiles, action.Params{"path": "notes/empty"},
		action.Result{Success: true, Path: "/w/notes/empty", Items: []action.Item{}, Count: 0},
		"list the empty folder", 5*time.Millisecond))
	h.Record(NewEntry(action.ReadFile, action.Params{"path": "../secret.txt"},
		action.Fail(action.FailurePolicy, "directory traversal is not allowed: ../secret.txt"),
		"read secret", 0))
	return h
}

func TestStores_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		open func() (Store, error)
	}{
		{"json", func() (Store, error) { return NewJSONStore(filepath.Join(dir, "history.json")), nil }},
		{"sqlite", func() (Store, error) { return NewSQLiteStore(filepath.Join(dir, "history.db")) }},
		{"leveldb", func() (Store, error) { return NewLevelDBStore(filepath.Join(dir, "history.ldb")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.open()
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			defer store.Close()

			src := sampleHistory()
			if err := src.Persist(store); err != nil {
				t.Fatalf("Persist failed: %v", err)
			}

			dst := New(10, nil)
			if err := dst.Load(store); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			want, got := src.Entries(), dst.Entries()
			if len(got) != len(want) {
				t.Fatalf("Expected %d entries, got %d", len(want), len(got))
			}
			for i := range want {
				if !reflect.DeepEqual(want[i], got[i]) {
					t.Errorf("entry %d differs:\nwant %+v\ngot  %+v", i, want[i], got[i])
				}
			}

			// A second save fully replaces the first
			src.Clear()
			if err := src.Persist(store); err != nil {
				t.Fatalf("Persist failed: %v", err)
			}
			entries, err := store.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("Expected empty store after clear, got %d", len(entries))
			}
		})
	}
}

func TestJSONStore_WrappedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewJSONStore(path)

	if err := sampleHistory().Persist(store); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	for _, key := range []string{`"summary"`, `"actions"`, `"total_actions": 4`, `"error_count": 1`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in persisted file", key)
		}
	}
}

func TestJSONStore_LegacyBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	legacy := `[
  {"timestamp": "2024-05-01T10:00:00Z", "action": "read_file", "parameters": {"path": "a.txt"},
   "result": {"success": true, "content": "hi"}, "reasoning": "r", "execution_time": 0.25, "status": "success"},
  {"timestamp": "2024-05-01T10:01:00Z", "action": "delete_file", "parameters": {"path": "a.txt"},
   "result": {"success": false, "error": "deletion cancelled by user"}, "reasoning": "", "execution_time": 1.5, "status": "error"}
]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("Failed to write legacy file: %v", err)
	}

	h := New(10, nil)
	if err := h.Load(NewJSONStore(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != action.ReadFile || entries[0].Result.Content != "hi" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Status != action.StatusError || entries[1].Result.Error != "deletion cancelled by user" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
	if s := h.Summary(); s.TotalExecutionTime != 1.75 {
		t.Errorf("Expected total 1.75s, got %f", s.TotalExecutionTime)
	}
}

func TestJSONStore_MissingAndInvalid(t *testing.T) {
	dir := t.TempDir()

	entries, err := NewJSONStore(filepath.Join(dir, "missing.json")).Load()
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := NewJSONStore(bad).Load(); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("", filepath.Join(dir, "h.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Errorf("Expected JSON store by default, got %T", s)
	}

	if _, err := Open("redis", filepath.Join(dir, "x")); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
