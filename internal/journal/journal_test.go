package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temporary test database
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "virsam-journal-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := Initialize(dbPath)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to initialize database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(dir)
	}

	return db, cleanup
}

func sampleEntry(runDir string, created time.Time) *Entry {
	return &Entry{
		Kind:      KindSample,
		Alias:     "virtual_sample_ERS0000001_ERS0000002",
		Phase:     PhaseSubmitted,
		Target:    TargetTest,
		Checklist: "ERC000011",
		Sources:   []string{"ERS0000001", "ERS0000002"},
		RunDir:    runDir,
		CreatedAt: created,
	}
}

func TestInitialize(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if db == nil {
		t.Fatal("expected non-nil database")
	}

	if err := db.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestInitializeInvalidPath(t *testing.T) {
	_, err := Initialize("/nonexistent/path/journal.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestRecordAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	entry := sampleEntry("/data/runs/ilDeiPorc1", time.Time{})
	entry.Accession = "ERS9999999"

	if err := db.Record(entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be filled in")
	}

	retrieved, err := db.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if retrieved.Kind != KindSample {
		t.Errorf("got kind %q, want %q", retrieved.Kind, KindSample)
	}
	if retrieved.Alias != entry.Alias {
		t.Errorf("got alias %q, want %q", retrieved.Alias, entry.Alias)
	}
	if retrieved.Accession != "ERS9999999" {
		t.Errorf("got accession %q, want ERS9999999", retrieved.Accession)
	}
	if retrieved.Phase != PhaseSubmitted {
		t.Errorf("got phase %q, want %q", retrieved.Phase, PhaseSubmitted)
	}
	if retrieved.Checklist != "ERC000011" {
		t.Errorf("got checklist %q, want ERC000011", retrieved.Checklist)
	}
	if len(retrieved.Sources) != 2 || retrieved.Sources[0] != "ERS0000001" || retrieved.Sources[1] != "ERS0000002" {
		t.Errorf("got sources %v, want [ERS0000001 ERS0000002]", retrieved.Sources)
	}
	if retrieved.RunDir != entry.RunDir {
		t.Errorf("got run dir %q, want %q", retrieved.RunDir, entry.RunDir)
	}
	if !retrieved.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("got created_at %v, want %v", retrieved.CreatedAt, entry.CreatedAt)
	}
}

func TestRecordKeepsProvidedID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	entry := sampleEntry("/data/runs/a", time.Time{})
	entry.ID = "run-0001"

	if err := db.Record(entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if entry.ID != "run-0001" {
		t.Errorf("expected ID to be kept, got %q", entry.ID)
	}

	if _, err := db.Get("run-0001"); err != nil {
		t.Errorf("Get by provided ID failed: %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.Get("nonexistent")
	if err == nil {
		t.Error("expected error for missing submission, got nil")
	}
}

func TestFindByRunDir(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	older := sampleEntry("/data/runs/ilDeiPorc1", base)
	older.Accession = "ERS1111111"
	newer := sampleEntry("/data/runs/ilDeiPorc1", base.Add(time.Hour))
	newer.Accession = "ERS2222222"
	other := sampleEntry("/data/runs/mMusMus1", base.Add(2*time.Hour))

	for _, e := range []*Entry{older, newer, other} {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	found, err := db.FindByRunDir("/data/runs/ilDeiPorc1")
	if err != nil {
		t.Fatalf("FindByRunDir failed: %v", err)
	}
	if found.Accession != "ERS2222222" {
		t.Errorf("expected the newest entry, got accession %q", found.Accession)
	}

	_, err = db.FindByRunDir("/data/runs/unknown")
	if err == nil {
		t.Error("expected error for unrecorded run directory, got nil")
	}
}

func TestAdvance(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	entry := sampleEntry("/data/runs/a", time.Time{})
	entry.Phase = PhaseComposed
	if err := db.Record(entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := db.Advance(entry.ID, PhaseSubmitted, "ERS9999999"); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	retrieved, err := db.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Phase != PhaseSubmitted {
		t.Errorf("got phase %q, want %q", retrieved.Phase, PhaseSubmitted)
	}
	if retrieved.Accession != "ERS9999999" {
		t.Errorf("got accession %q, want ERS9999999", retrieved.Accession)
	}
	if !retrieved.UpdatedAt.After(retrieved.CreatedAt) {
		t.Error("expected updated_at to move forward")
	}

	// An empty accession keeps the stored one.
	if err := db.Advance(entry.ID, PhaseReleased, ""); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	retrieved, err = db.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Phase != PhaseReleased {
		t.Errorf("got phase %q, want %q", retrieved.Phase, PhaseReleased)
	}
	if retrieved.Accession != "ERS9999999" {
		t.Errorf("accession should be kept, got %q", retrieved.Accession)
	}
}

func TestAdvanceMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.Advance("nonexistent", PhaseReleased, "")
	if err == nil {
		t.Error("expected error for missing submission, got nil")
	}
}

func TestHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := sampleEntry("/data/runs/a", base.Add(time.Duration(i)*time.Minute))
		entry.Accession = []string{"ERS0000001", "ERS0000002", "ERS0000003"}[i]
		if err := db.Record(entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := db.History(10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Accession != "ERS0000003" {
		t.Errorf("expected newest entry first, got %q", entries[0].Accession)
	}
	if entries[2].Accession != "ERS0000001" {
		t.Errorf("expected oldest entry last, got %q", entries[2].Accession)
	}

	// Limit applies
	entries, err = db.History(2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestListByKind(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	sample := sampleEntry("/data/runs/a", base)
	study := &Entry{
		Kind:      KindStudy,
		Alias:     "erga-bge-mMusMus1_primary-2024-05-17",
		Accession: "PRJEB40665",
		Phase:     PhaseSubmitted,
		Target:    TargetProduction,
		CreatedAt: base.Add(time.Minute),
	}

	for _, e := range []*Entry{sample, study} {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	studies, err := db.ListByKind(KindStudy, 10)
	if err != nil {
		t.Fatalf("ListByKind failed: %v", err)
	}
	if len(studies) != 1 {
		t.Fatalf("got %d studies, want 1", len(studies))
	}
	if studies[0].Accession != "PRJEB40665" {
		t.Errorf("got accession %q, want PRJEB40665", studies[0].Accession)
	}

	umbrellas, err := db.ListByKind(KindUmbrella, 10)
	if err != nil {
		t.Fatalf("ListByKind failed: %v", err)
	}
	if len(umbrellas) != 0 {
		t.Errorf("got %d umbrellas, want 0", len(umbrellas))
	}
}

func TestSearch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	entry := sampleEntry("/data/runs/a", base)
	entry.Accession = "ERS9999999"
	if err := db.Record(entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// By alias fragment
	matches, err := db.Search("ERS0000001_ERS0000002", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches by alias, want 1", len(matches))
	}

	// By accession
	matches, err = db.Search("ERS9999999", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches by accession, want 1", len(matches))
	}

	// No match
	matches, err = db.Search("PRJEB", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestGetStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	released := sampleEntry("/data/runs/a", base)
	released.Phase = PhaseReleased
	study := &Entry{
		Kind:      KindStudy,
		Alias:     "house_mouse_genome_assembly",
		Phase:     PhaseSubmitted,
		Target:    TargetTest,
		CreatedAt: base.Add(time.Minute),
	}
	umbrella := &Entry{
		Kind:      KindUmbrella,
		Alias:     "cbp-mMusMus1-study-umbrella-2024-05-17",
		Phase:     PhaseSubmitted,
		Target:    TargetTest,
		CreatedAt: base.Add(2 * time.Minute),
	}

	for _, e := range []*Entry{released, study, umbrella} {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalRuns != 3 {
		t.Errorf("got %d total runs, want 3", stats.TotalRuns)
	}
	if stats.Samples != 1 {
		t.Errorf("got %d samples, want 1", stats.Samples)
	}
	if stats.Studies != 1 {
		t.Errorf("got %d studies, want 1", stats.Studies)
	}
	if stats.Umbrellas != 1 {
		t.Errorf("got %d umbrellas, want 1", stats.Umbrellas)
	}
	if stats.Released != 1 {
		t.Errorf("got %d released, want 1", stats.Released)
	}
}
