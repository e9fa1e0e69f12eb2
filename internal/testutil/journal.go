package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/seqops/virsam/internal/journal"
)

// TestJournal creates a journal in a temp directory.
// It returns the journal and a cleanup function.
func TestJournal(t *testing.T) (*journal.DB, func()) {
	t.Helper()
	dir, dirCleanup := TempDir(t)
	jdb, err := journal.Initialize(filepath.Join(dir, "journal.db"))
	if err != nil {
		dirCleanup()
		t.Fatalf("failed to initialize journal: %v", err)
	}
	return jdb, func() {
		jdb.Close()
		dirCleanup()
	}
}

// SeedJournal records the given entries, spacing their creation times one
// minute apart in input order so history queries sort deterministically.
func SeedJournal(t *testing.T, jdb *journal.DB, entries ...*journal.Entry) {
	t.Helper()
	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	for i, entry := range entries {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		}
		if err := jdb.Record(entry); err != nil {
			t.Fatalf("failed to record entry %d: %v", i, err)
		}
	}
}
