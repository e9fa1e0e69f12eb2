package journal

import (
	"time"
)

// Record kinds.
const (
	KindSample   = "sample"
	KindStudy    = "study"
	KindUmbrella = "umbrella"
)

// Phases a submission moves through. A record is created once the document
// set is composed, advances to submitted when the drop box accepts it, and
// to released when the record is made public.
const (
	PhaseComposed  = "composed"
	PhaseSubmitted = "submitted"
	PhaseReleased  = "released"
)

// Submission targets.
const (
	TargetTest       = "test"
	TargetProduction = "production"
)

// Entry is one recorded submission run. Sources holds the input accessions
// the run was composed from, so a later release does not depend on
// re-parsing the archived response text.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Alias     string    `json:"alias"`
	Accession string    `json:"accession,omitempty"`
	Phase     string    `json:"phase"`
	Target    string    `json:"target"`
	Checklist string    `json:"checklist,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
	RunDir    string    `json:"run_dir,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats holds aggregate counts over the journal.
type Stats struct {
	TotalRuns  int       `json:"total_runs"`
	Samples    int       `json:"samples"`
	Studies    int       `json:"studies"`
	Umbrellas  int       `json:"umbrellas"`
	Released   int       `json:"released"`
	LastUpdate time.Time `json:"last_update"`
}
