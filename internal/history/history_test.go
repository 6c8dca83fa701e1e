package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/gate/internal/action"
)

func okEntry(path string, elapsed time.Duration) Entry {
	return NewEntry(action.ReadFile, action.Params{"path": path},
		action.Result{Success: true, Content: "x", Path: path}, "read "+path, elapsed)
}

func failedEntry(reason string) Entry {
	return NewEntry(action.ExecuteCommand, action.Params{"command": "rm -rf /"},
		action.Fail(action.FailurePolicy, "%s", reason), "", 0)
}

func TestNewEntry(t *testing.T) {
	e := okEntry("a.txt", 1500*time.Millisecond)

	if e.ID == "" {
		t.Error("Expected generated ID")
	}
	if e.Status != action.StatusSuccess {
		t.Errorf("Expected success status, got %s", e.Status)
	}
	if e.ExecutionTime != 1.5 {
		t.Errorf("Expected 1.5s, got %f", e.ExecutionTime)
	}
	if e.Timestamp.Location() != time.UTC {
		t.Error("Expected UTC timestamp")
	}

	f := failedEntry("denied")
	if f.Status != action.StatusError {
		t.Errorf("Expected error status, got %s", f.Status)
	}
}

func TestNewEntry_CopiesParameters(t *testing.T) {
	params := action.Params{"path": "a.txt"}
	e := NewEntry(action.ReadFile, params, action.Result{Success: true}, "", 0)

	params["path"] = "b.txt"
	if e.Parameters.String("path", "") != "a.txt" {
		t.Error("Expected entry parameters to be isolated from the caller")
	}
}

func TestHistory_RecordEvictsOldest(t *testing.T) {
	h := New(3, nil)

	for i := 0; i < 4; i++ {
		h.Record(okEntry(fmt.Sprintf("f%d.txt", i), 0))
	}

	if h.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", h.Len())
	}

	entries := h.Entries()
	for i, want := range []string{"f1.txt", "f2.txt", "f3.txt"} {
		if got := entries[i].Parameters.String("path", ""); got != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestHistory_DefaultCap(t *testing.T) {
	h := New(0, nil)
	if h.MaxItems() != DefaultMaxItems {
		t.Errorf("Expected default cap %d, got %d", DefaultMaxItems, h.MaxItems())
	}

	for i := 0; i < DefaultMaxItems+5; i++ {
		h.Record(okEntry("a", 0))
	}
	if h.Len() != DefaultMaxItems {
		t.Errorf("Expected %d entries, got %d", DefaultMaxItems, h.Len())
	}
}

func TestHistory_Recent(t *testing.T) {
	h := New(10, nil)
	for i := 0; i < 4; i++ {
		h.Record(okEntry(fmt.Sprintf("f%d", i), 0))
	}

	tests := []struct {
		n     int
		count int
		last  string
	}{
		{2, 2, "f3"},
		{10, 4, "f3"},
		{0, 0, ""},
		{-1, 0, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := h.Recent(tt.n)
			if len(got) != tt.count {
				t.Fatalf("Expected %d entries, got %d", tt.count, len(got))
			}
			if tt.count > 0 && got[len(got)-1].Parameters.String("path", "") != tt.last {
				t.Errorf("Expected most recent last")
			}
		})
	}

	recent := h.Recent(2)
	if recent[0].Parameters.String("path", "") != "f2" {
		t.Errorf("Expected f2 first, got %s", recent[0].Parameters.String("path", ""))
	}
}

func TestHistory_Summary(t *testing.T) {
	h := New(10, nil)

	empty := h.Summary()
	if empty.TotalActions != 0 || empty.FirstAction != nil || empty.AverageExecutionTime != 0 {
		t.Errorf("Unexpected empty summary: %+v", empty)
	}

	h.Record(okEntry("a", time.Second))
	h.Record(failedEntry("denied"))
	h.Record(okEntry("b", 2*time.Second))

	s := h.Summary()
	if s.TotalActions != 3 || s.SuccessCount != 2 || s.ErrorCount != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.TotalExecutionTime != 3 {
		t.Errorf("Expected total 3s, got %f", s.TotalExecutionTime)
	}
	if s.AverageExecutionTime != 1 {
		t.Errorf("Expected average 1s, got %f", s.AverageExecutionTime)
	}

	entries := h.Entries()
	if !s.FirstAction.Equal(entries[0].Timestamp) || !s.LastAction.Equal(entries[2].Timestamp) {
		t.Error("Expected first/last timestamps from the ends of the log")
	}
}

func TestHistory_Clear(t *testing.T) {
	h := New(10, nil)
	h.Record(okEntry("a", 0))
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("Expected empty history, got %d", h.Len())
	}
	if len(h.Recent(5)) != 0 {
		t.Error("Expected no recent entries")
	}
}

func TestHistory_LoadKeepsNewest(t *testing.T) {
	src := New(10, nil)
	for i := 0; i < 5; i++ {
		src.Record(okEntry(fmt.Sprintf("f%d", i), 0))
	}
	store := NewJSONStore(t.TempDir() + "/history.json")
	if err := src.Persist(store); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	dst := New(2, nil)
	if err := dst.Load(store); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entries := dst.Entries()
	if len(entries) != 2 || entries[1].Parameters.String("path", "") != "f4" {
		t.Errorf("Expected the newest two entries, got %d", len(entries))
	}
}
