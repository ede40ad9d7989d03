package learn

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// FileStore keeps correction counts in a single JSON file shaped as
// {"abbrev": {"word": count}}. Writes go through a temp file plus
// rename so a crash never leaves a half-written store.
type FileStore struct {
	path string

	mu     sync.Mutex
	counts map[string]map[string]int
}

// NewFileStore opens (or lazily creates) a file-backed store. A missing
// file is an empty store; a corrupt file is reset with a warning rather
// than failing startup.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, counts: make(map[string]map[string]int)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("learn: open %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.counts); err != nil {
		log.Warnf("Corrupt correction store %s, starting fresh: %v", path, err)
		s.counts = make(map[string]map[string]int)
	}
	return s, nil
}

func (s *FileStore) Record(_ context.Context, abbrev, word string) error {
	abbrev, word = strings.ToLower(abbrev), strings.ToLower(word)
	if abbrev == "" || word == "" {
		return fmt.Errorf("learn: empty abbreviation or word")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[abbrev] == nil {
		s.counts[abbrev] = make(map[string]int)
	}
	s.counts[abbrev][word]++
	return s.save()
}

func (s *FileStore) Preference(_ context.Context, abbrev string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return preferred(s.counts[strings.ToLower(abbrev)]), nil
}

func (s *FileStore) All(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.counts))
	for abbrev, counts := range s.counts {
		if word := preferred(counts); word != "" {
			out[abbrev] = word
		}
	}
	return out, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]map[string]int)
	return s.save()
}

// save writes the store atomically. Caller holds the lock.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("learn: create store dir: %w", err)
	}

	data, err := json.MarshalIndent(s.counts, "", "  ")
	if err != nil {
		return fmt.Errorf("learn: encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("learn: write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("learn: replace store: %w", err)
	}
	return nil
}
