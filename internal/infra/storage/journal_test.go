package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"giftshop/internal/domain"
)

func setupTestDB(t *testing.T) *Storage {
	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")
	s, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSaveAndLoadEvents(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	// Insert out of order to verify ordering
	for _, seq := range []uint64{2, 1, 3} {
		entry := &domain.JournalEntry{
			Seq:       seq,
			SessionID: "s1",
			Type:      "cart.add",
			Payload:   `{"value":25}`,
			CreatedAt: time.Now(),
		}
		if err := s.SaveEvent(ctx, entry); err != nil {
			t.Fatalf("SaveEvent(%d) failed: %v", seq, err)
		}
	}

	entries, err := s.LoadEvents(ctx)
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d has seq %d", i, e.Seq)
		}
	}
	if entries[0].Payload != `{"value":25}` {
		t.Errorf("unexpected payload %q", entries[0].Payload)
	}
}

func TestSaveEvent_DuplicateSeqFails(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.SaveEvent(ctx, &domain.JournalEntry{Seq: 1, SessionID: "a", Type: "session.touch"}); err != nil {
		t.Fatalf("first SaveEvent failed: %v", err)
	}
	if err := s.SaveEvent(ctx, &domain.JournalEntry{Seq: 1, SessionID: "b", Type: "session.touch"}); err == nil {
		t.Error("expected duplicate sequence to fail")
	}
}

func TestDeleteSessions(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 1, SessionID: "a", Type: "cart.add"})
	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 2, SessionID: "b", Type: "cart.add"})
	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 3, SessionID: "a", Type: "cart.remove"})
	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 4, SessionID: "c", Type: "cart.add"})

	if err := s.DeleteSessions(ctx, []string{"a", "c"}); err != nil {
		t.Fatalf("DeleteSessions failed: %v", err)
	}
	if err := s.DeleteSessions(ctx, nil); err != nil {
		t.Errorf("empty delete should be a no-op: %v", err)
	}

	entries, err := s.LoadEvents(ctx)
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Seq != 2 || entries[0].SessionID != "b" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	last, _ := s.LastSeq(ctx)
	if last != 2 {
		t.Errorf("expected head 2 after compaction, got %d", last)
	}
}

func TestLastSeq(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	last, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq failed: %v", err)
	}
	if last != 0 {
		t.Errorf("expected 0 on empty journal, got %d", last)
	}

	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 1, SessionID: "a", Type: "cart.add"})
	s.SaveEvent(ctx, &domain.JournalEntry{Seq: 2, SessionID: "a", Type: "cart.add"})

	last, _ = s.LastSeq(ctx)
	if last != 2 {
		t.Errorf("expected 2, got %d", last)
	}
}
