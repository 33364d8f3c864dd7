// Package store persists confirmed disclosures and tracks every filing URL
// the pipeline has already processed.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// Store is a crash-safe set of seen filing URLs plus the list of confirmed
// disclosures. State is loaded wholesale at startup and the disclosure file
// is rewritten wholesale on every mutation; write volume is at most one
// disclosure per polling cycle, so correctness wins over throughput.
type Store struct {
	path string

	mu          sync.Mutex
	seenURLs    map[string]bool
	seenCIKs    map[string]bool
	disclosures []filing.Record
}

func New(path string) *Store {
	s := &Store{
		path:     path,
		seenURLs: make(map[string]bool),
		seenCIKs: make(map[string]bool),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("Disclosure file does not exist, starting empty", "path", s.path)
		} else {
			slog.Error("Failed to read disclosure file", "path", s.path, "error", err)
		}
		return
	}

	var records []filing.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("Failed to parse disclosure file", "path", s.path, "error", err)
		return
	}

	s.disclosures = records
	for _, r := range records {
		s.seenURLs[r.FilingURL] = true
		s.seenCIKs[r.CIK] = true
	}

	slog.Info("Loaded existing disclosures", "count", len(records), "path", s.path)
}

// HasSeen reports whether the pipeline has already processed a filing URL,
// whether or not it was a disclosure.
func (s *Store) HasSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenURLs[url]
}

// MarkSeen registers a filing as processed without storing it as a
// disclosure, so non-disclosure filings are not reclassified next cycle.
func (s *Store) MarkSeen(f *filing.Filing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seenURLs[f.FilingHREF] = true
	slog.Debug("Marked filing as processed", "url", f.FilingHREF)
}

// AddDisclosure stores a confirmed disclosure and marks its URL seen.
// Returns false when a record for the URL already exists.
func (s *Store) AddDisclosure(f *filing.Filing) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.disclosures {
		if r.FilingURL == f.FilingHREF {
			slog.Debug("Disclosure already exists", "url", f.FilingHREF)
			return false
		}
	}

	record := filing.Record{
		CompanyName:   f.CompanyName,
		CIK:           f.CIK,
		Ticker:        f.TickerSymbol,
		FormType:      f.FormType,
		FilingDate:    f.FilingDate,
		FilingURL:     f.FilingHREF,
		MatchingTerms: f.MatchingTerms,
		Context:       strings.TrimSpace(strings.Join(f.Contexts, "\n\n")),
		AddedAt:       time.Now().UTC(),
	}

	s.disclosures = append(s.disclosures, record)
	s.seenURLs[f.FilingHREF] = true
	s.seenCIKs[f.CIK] = true

	if err := s.save(); err != nil {
		slog.Error("Failed to persist disclosures, in-memory state remains authoritative", "error", err)
	}

	slog.Info("Added new disclosure", "company", f.CompanyName, "url", f.FilingHREF)
	return true
}

// List returns stored disclosures, newest first when requested. limit <= 0
// returns all records.
func (s *Store) List(limit int, newestFirst bool) []filing.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]filing.Record, len(s.disclosures))
	copy(records, s.disclosures)

	if newestFirst {
		sort.SliceStable(records, func(i, j int) bool {
			ti, errI := dateparse.ParseAny(records[i].FilingDate)
			tj, errJ := dateparse.ParseAny(records[j].FilingDate)
			if errI != nil || errJ != nil {
				return records[i].FilingDate > records[j].FilingDate
			}
			return ti.After(tj)
		})
	}

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	return records
}

// Count returns the number of stored disclosures.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.disclosures)
}

// save rewrites the disclosure file. It prefers an atomic temp-then-rename,
// falling back to copying the temp file's contents when rename fails (e.g.
// the file is a bind mount), then removing the temp file.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.disclosures, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode disclosures: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err == nil {
		slog.Debug("Saved disclosures", "count", len(s.disclosures), "path", s.path)
		return nil
	} else {
		slog.Warn("Atomic rename failed, copying instead", "path", s.path, "error", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write disclosure file: %w", err)
	}
	if err := os.Remove(tempPath); err != nil {
		slog.Warn("Failed to remove temp file", "path", tempPath, "error", err)
	}

	slog.Debug("Saved disclosures", "count", len(s.disclosures), "path", s.path)
	return nil
}

// HasSeenCIK reports whether any disclosure has been stored for a
// registrant.
func (s *Store) HasSeenCIK(cik string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenCIKs[cik]
}
