package service

import (
	"context"

	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/models"
)

// SubmitRequest describes one compose-and-submit run.
type SubmitRequest struct {
	Sources []string `json:"sources"` // source sample accessions
	OutDir  string   `json:"out_dir"` // run directory; must not exist yet

	// Composition overrides
	Alias      string `json:"alias,omitempty"`       // replaces the derived alias
	Checklist  string `json:"checklist,omitempty"`   // replaces checklist selection
	CenterName string `json:"center_name,omitempty"` // submitting center

	// Submission control
	Production bool `json:"production,omitempty"` // target the production drop box
	Force      bool `json:"force,omitempty"`      // keep the production target despite warnings
	DryRun     bool `json:"dry_run,omitempty"`    // stop after writing the documents
}

// SubmitResult reports what a submit run produced.
type SubmitResult struct {
	RunID     string `json:"run_id,omitempty"`
	Alias     string `json:"alias"`
	Accession string `json:"accession,omitempty"`
	Existing  bool   `json:"existing,omitempty"` // accession belongs to an already archived sample
	Checklist string `json:"checklist"`
	Target    string `json:"target"`
	RunDir    string `json:"run_dir"`
	DryRun    bool   `json:"dry_run,omitempty"`

	Warnings []string `json:"warnings,omitempty"` // issues that downgrade a production submit
	Notes    []string `json:"notes,omitempty"`    // advisory completion notes

	Receipt *models.SubmissionReceipt `json:"receipt,omitempty"`
}

// ReleaseRequest makes an earlier submitted sample public.
type ReleaseRequest struct {
	OutDir     string `json:"out_dir"`             // run directory of the original submission
	Accession  string `json:"accession,omitempty"` // overrides the recorded accession
	Production bool   `json:"production,omitempty"`
}

// ReleaseResult reports a completed release.
type ReleaseResult struct {
	Accession string                    `json:"accession"`
	Target    string                    `json:"target"`
	Receipt   *models.SubmissionReceipt `json:"receipt,omitempty"`
}

// StudyRunRequest registers a sequencing or assembly study.
type StudyRunRequest struct {
	Study      compose.StudyRequest `json:"study"`
	OutDir     string               `json:"out_dir"`
	Production bool                 `json:"production,omitempty"`
	Release    bool                 `json:"release,omitempty"` // make the project public on acceptance
	DryRun     bool                 `json:"dry_run,omitempty"`
}

// UmbrellaRunRequest registers an umbrella project over existing studies.
type UmbrellaRunRequest struct {
	Umbrella   compose.UmbrellaRequest `json:"umbrella"`
	OutDir     string                  `json:"out_dir"`
	Production bool                    `json:"production,omitempty"`
	Release    bool                    `json:"release,omitempty"`
	DryRun     bool                    `json:"dry_run,omitempty"`

	// LinkRegistered also links the studies registered earlier by the
	// same ProjectService, saving a round trip through the archive.
	LinkRegistered bool `json:"link_registered,omitempty"`
}

// ProjectResult reports a registered project.
type ProjectResult struct {
	RunID     string `json:"run_id,omitempty"`
	Alias     string `json:"alias"`
	Title     string `json:"title"`
	Accession string `json:"accession,omitempty"`
	Target    string `json:"target,omitempty"`
	Path      string `json:"path"` // where the project document was written
	DryRun    bool   `json:"dry_run,omitempty"`

	Receipt *models.SubmissionReceipt `json:"receipt,omitempty"`
}

// RegisteredStudy is a study accepted earlier in the current run.
type RegisteredStudy struct {
	Alias     string `json:"alias"`
	Accession string `json:"accession"`
}

// BaseService is the interface all services implement.
type BaseService interface {
	Health(ctx context.Context) error
	Close() error
}
