package buffer

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnqueueOrdersByPriorityThenTime(t *testing.T) {
	s := openStore(t)
	base := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "late-activity", Entity: EntityActivity, Priority: 3, Timestamp: base.Add(2 * time.Second)},
		{ID: "notification", Entity: EntityNotification, Priority: 2, Timestamp: base.Add(5 * time.Second)},
		{ID: "early-activity", Entity: EntityActivity, Priority: 3, Timestamp: base},
	}
	for _, item := range items {
		if err := s.Enqueue(item); err != nil {
			t.Fatalf("enqueue %s: %v", item.ID, err)
		}
	}

	got, err := s.GetBatch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := []string{"notification", "early-activity", "late-activity"}
	if len(got) != len(want) {
		t.Fatalf("batch size = %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("batch[%d] = %s, want %s", i, got[i].ID, id)
		}
		if got[i].Operation != OperationCreate {
			t.Fatalf("operation = %q", got[i].Operation)
		}
	}

	limited, _ := s.GetBatch(1)
	if len(limited) != 1 {
		t.Fatalf("limited batch = %d", len(limited))
	}
}

func TestEnqueueReplacesSameID(t *testing.T) {
	s := openStore(t)
	if err := s.Enqueue(Item{ID: "a", Entity: EntityActivity, Data: json.RawMessage(`{"v":1}`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.Enqueue(Item{ID: "a", Entity: EntityActivity, Data: json.RawMessage(`{"v":2}`)}); err != nil {
		t.Fatalf("re-enqueue: %v", err)
	}
	size, _ := s.Size()
	if size != 1 {
		t.Fatalf("size = %d, want 1", size)
	}
	got, _ := s.GetBatch(10)
	if string(got[0].Data) != `{"v":2}` {
		t.Fatalf("data = %s", got[0].Data)
	}
}

func TestRemoveAndRequeue(t *testing.T) {
	s := openStore(t)
	_ = s.Enqueue(Item{ID: "a", Entity: EntityActivity})
	_ = s.Enqueue(Item{ID: "b", Entity: EntityNotification})

	batch, _ := s.GetBatch(10)
	var a Item
	for _, item := range batch {
		if item.ID == "a" {
			a = item
		}
	}
	a.Retries++
	if err := s.Requeue(a, errors.New("db down")); err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if size, _ := s.Size(); size != 2 {
		t.Fatalf("size after requeue = %d", size)
	}

	batch, _ = s.GetBatch(10)
	for _, item := range batch {
		if item.ID == "a" && (item.Retries != 1 || item.LastError != "db down") {
			t.Fatalf("requeued item = %+v", item)
		}
	}

	if err := s.Remove(Item{ID: "b"}); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	counts, err := s.CountByEntity()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[EntityActivity] != 1 || counts[EntityNotification] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestCleanup(t *testing.T) {
	s := openStore(t)
	now := time.Now()
	_ = s.Enqueue(Item{ID: "old", Entity: EntityActivity, Timestamp: now.Add(-48 * time.Hour)})
	_ = s.Enqueue(Item{ID: "fresh", Entity: EntityActivity, Timestamp: now})

	removed, err := s.Cleanup(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	left, _ := s.GetBatch(10)
	if len(left) != 1 || left[0].ID != "fresh" {
		t.Fatalf("left = %+v", left)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	item := Item{Priority: 9}
	item.normalize()
	if item.ID == "" || item.Priority != 3 || item.Operation != OperationCreate || item.Timestamp.IsZero() {
		t.Fatalf("normalized = %+v", item)
	}
}
