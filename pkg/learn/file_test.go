package learn

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRecordAndPreference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if word, _ := s.Preference(ctx, "thx"); word != "" {
		t.Errorf("Fresh store should have no preference, got %q", word)
	}

	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, "thx", "thanks"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Record(ctx, "thx", "thorax"); err != nil {
		t.Fatal(err)
	}

	word, err := s.Preference(ctx, "thx")
	if err != nil {
		t.Fatal(err)
	}
	if word != "thanks" {
		t.Errorf("Most corrected word should win, got %q", word)
	}

	// case folded on the way in
	if err := s.Record(ctx, "BRB", "Back"); err != nil {
		t.Fatal(err)
	}
	if word, _ := s.Preference(ctx, "brb"); word != "back" {
		t.Errorf("Expected lowercased 'back', got %q", word)
	}
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "thx", "thanks"); err != nil {
		t.Fatal(err)
	}

	// a second open sees what the first wrote
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	all, err := reopened.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all["thx"] != "thanks" {
		t.Errorf("Reopened store lost data: %v", all)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "thx", "thanks"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Store not empty after Clear: %v", all)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learned.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Corrupt file should reset, not fail: %v", err)
	}
	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Corrupt store should start fresh, got %v", all)
	}
}

func TestFileStoreRejectsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "learned.json"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Record(ctx, "", "word"); err == nil {
		t.Error("Empty abbreviation must be rejected")
	}
	if err := s.Record(ctx, "ab", ""); err == nil {
		t.Error("Empty word must be rejected")
	}
}

// tie on counts breaks alphabetically so preferences are stable
func TestPreferredTieBreak(t *testing.T) {
	counts := map[string]int{"zebra": 2, "apple": 2, "mango": 1}
	if got := preferred(counts); got != "apple" {
		t.Errorf("Tie should break alphabetically, got %q", got)
	}
	if got := preferred(nil); got != "" {
		t.Errorf("Nil counts should yield empty, got %q", got)
	}
}
