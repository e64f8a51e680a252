package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	s, err := NewSqliteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	return s
}

func TestInsertWordsToleratesDuplicates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.InsertWords(ctx, []string{"RIVER", "STONE", "RIVER"}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	// A second load with overlap must still succeed, best-effort.
	if err := s.InsertWords(ctx, []string{"RIVER", "TIGER"}); err != nil {
		t.Fatalf("overlapping load: %v", err)
	}

	count, err := s.CountWords(ctx)
	if err != nil {
		t.Fatalf("CountWords: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 unique words", count)
	}
}

func TestRandomWordEmptyPool(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.RandomWord(context.Background())
	if !errors.Is(err, ErrEmptyWordPool) {
		t.Errorf("got %v, want ErrEmptyWordPool", err)
	}
}

func TestRandomWordSingleEntryPool(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.InsertWords(ctx, []string{"RIVER"}); err != nil {
		t.Fatalf("InsertWords: %v", err)
	}

	for i := 0; i < 5; i++ {
		word, err := s.RandomWord(ctx)
		if err != nil {
			t.Fatalf("RandomWord: %v", err)
		}
		if word != "RIVER" {
			t.Errorf("word = %s, want RIVER", word)
		}
	}
}

func TestIncrementWins(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.IncrementWins(ctx, "0xAAA"); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := s.IncrementWins(ctx, "0xAAA"); err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if err := s.IncrementWins(ctx, "0xBBB"); err != nil {
		t.Fatalf("other address: %v", err)
	}

	entries, err := s.TopPlayers(ctx, 100)
	if err != nil {
		t.Fatalf("TopPlayers: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].User != "0xAAA" || entries[0].TotalWins != 2 {
		t.Errorf("top entry = %+v, want 0xAAA with 2 wins", entries[0])
	}
	if entries[1].User != "0xBBB" || entries[1].TotalWins != 1 {
		t.Errorf("second entry = %+v, want 0xBBB with 1 win", entries[1])
	}
}

func TestWinnerLogAppendAndLast(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if entry, err := s.LastWinnerLog(ctx, "0xAAA"); err != nil || entry != nil {
		t.Fatalf("empty log: entry=%v err=%v, want nil/nil", entry, err)
	}

	older := &WinnerLog{User: "0xAAA", TxHash: "0x01", Timestamp: time.Now().Add(-time.Hour)}
	newer := &WinnerLog{User: "0xAAA", TxHash: "0x02", Timestamp: time.Now()}
	if err := s.AppendWinnerLog(ctx, older); err != nil {
		t.Fatalf("append older: %v", err)
	}
	if err := s.AppendWinnerLog(ctx, newer); err != nil {
		t.Fatalf("append newer: %v", err)
	}

	last, err := s.LastWinnerLog(ctx, "0xAAA")
	if err != nil {
		t.Fatalf("LastWinnerLog: %v", err)
	}
	if last == nil || last.TxHash != "0x02" {
		t.Errorf("last = %+v, want the newer entry", last)
	}

	if other, err := s.LastWinnerLog(ctx, "0xZZZ"); err != nil || other != nil {
		t.Errorf("unknown user: entry=%v err=%v, want nil/nil", other, err)
	}
}
