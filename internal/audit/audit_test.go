package audit

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordFillsDefaults(t *testing.T) {
	store := openTestStore(t)

	if err := store.Record(Entry{Tool: "list_devices", Success: true, DurationMs: 3}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.ID == "" {
		t.Error("ID should have been generated")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should have been filled in")
	}
	if e.Tool != "list_devices" || !e.Success || e.DurationMs != 3 {
		t.Errorf("entry round trip mismatch: %+v", e)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tools := []string{"first", "second", "third"}
	for i, tool := range tools {
		err := store.Record(Entry{
			Tool:      tool,
			DeviceID:  "edge1",
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record %s failed: %v", tool, err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Tool != "third" || entries[1].Tool != "second" {
		t.Errorf("order = [%s, %s], want newest first", entries[0].Tool, entries[1].Tool)
	}
}

func TestRecordFailure(t *testing.T) {
	store := openTestStore(t)

	err := store.Record(Entry{
		Tool:       "get_device_status",
		DeviceID:   "edge2",
		Success:    false,
		DurationMs: 1500,
		Error:      "Network error: connection refused",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	e := entries[0]
	if e.Success {
		t.Error("Success = true, want false")
	}
	if e.Error != "Network error: connection refused" {
		t.Errorf("Error = %q", e.Error)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := store.Record(Entry{Tool: "list_devices", Success: true}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	store.Close()

	// Reopening the same directory must keep existing rows.
	store, err = Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries after reopen, want 1", len(entries))
	}
}
