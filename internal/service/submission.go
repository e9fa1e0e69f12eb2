// Package service wires the composition pipeline to the archive: it fetches
// source samples, reconciles them into a virtual sample, talks to the drop
// box, and records every run in the journal. Services hold no output
// formatting; callers decide how results are shown.
package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seqops/virsam/internal/browser"
	"github.com/seqops/virsam/internal/checklist"
	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/config"
	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/journal"
	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/parser"
	"github.com/seqops/virsam/internal/paths"
	"github.com/seqops/virsam/internal/receipt"
	"github.com/seqops/virsam/internal/reconcile"
	"github.com/seqops/virsam/internal/validator"
	"github.com/seqops/virsam/internal/webin"
)

// SubmissionService composes virtual samples from archived source samples
// and submits them to the drop box.
type SubmissionService struct {
	config   *config.Config
	journal  *journal.DB
	browser  *browser.Client
	resolver *checklist.Resolver
	timeout  time.Duration
}

// NewSubmissionService creates a submission service backed by the given
// configuration and journal.
func NewSubmissionService(cfg *config.Config, jdb *journal.DB) *SubmissionService {
	timeout := time.Duration(cfg.Endpoints.TimeoutSeconds) * time.Second
	b := browser.NewClient(cfg.Endpoints.Browser, timeout)
	return &SubmissionService{
		config:   cfg,
		journal:  jdb,
		browser:  b,
		resolver: checklist.NewResolver(b),
		timeout:  timeout,
	}
}

// SubmitRun performs one full compose-and-submit run: fetch the source
// samples, merge their shared attributes, resolve the checklist, compose
// the virtual sample, and hand the documents to the drop box. Every
// document, the drop box response included, is written to the run
// directory before it is interpreted.
func (s *SubmissionService) SubmitRun(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	const op errors.Op = "service.SubmitRun"

	if len(req.Sources) == 0 {
		return nil, errors.E(op, errors.KindValidation, "no source samples given")
	}
	if err := validator.CheckSampleAccessions(req.Sources...); err != nil {
		return nil, errors.E(op, errors.KindValidation, err)
	}
	if req.Checklist != "" {
		if err := validator.CheckChecklistAccession(req.Checklist); err != nil {
			return nil, errors.E(op, errors.KindValidation, err)
		}
	}

	// Each run gets a fresh directory so nothing from an earlier attempt
	// is silently reused.
	if _, err := os.Stat(req.OutDir); err == nil {
		return nil, errors.E(op, errors.KindValidation,
			fmt.Sprintf("output directory %s already exists, pick a new one per run", req.OutDir))
	} else if !os.IsNotExist(err) {
		return nil, errors.E(op, errors.KindIO, err)
	}
	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	runDir, err := filepath.Abs(req.OutDir)
	if err != nil {
		runDir = req.OutDir
	}

	samples, err := s.fetchSources(ctx, runDir, req.Sources)
	if err != nil {
		return nil, errors.E(op, err)
	}

	merged, err := reconcile.Merge(samples)
	if err != nil {
		return nil, errors.E(op, err)
	}

	selection := reconcile.SelectChecklist(merged.Checklists, req.Checklist, s.config.Defaults.Checklist)
	var warnings []string
	if selection.Warning != "" {
		warnings = append(warnings, selection.Warning)
	}

	spec, err := s.resolver.Resolve(ctx, selection.Checklist)
	if err != nil {
		return nil, errors.E(op, err)
	}

	center := req.CenterName
	if center == "" {
		center = s.config.Defaults.CenterName
	}
	vs := compose.Compose(merged, spec, compose.Options{Alias: req.Alias, Center: center})

	notes, err := s.checkComposed(vs, spec)
	if err != nil {
		return nil, errors.E(op, err)
	}

	samplePath := paths.VirtualSamplePath(runDir)
	submissionPath := paths.SubmissionPath(runDir)
	if err := s.writeDocuments(vs, samplePath, submissionPath); err != nil {
		return nil, errors.E(op, err)
	}

	production := req.Production
	if production && len(warnings) > 0 && !req.Force {
		production = false
		warnings = append(warnings, "downgraded to the test service because of warnings; re-run with force to keep the production target")
	}
	target := journal.TargetTest
	if production {
		target = journal.TargetProduction
	}

	result := &SubmitResult{
		Alias:     vs.Alias,
		Checklist: spec.Accession,
		Target:    target,
		RunDir:    runDir,
		Warnings:  warnings,
		Notes:     notes,
	}
	entry := &journal.Entry{
		Kind:      journal.KindSample,
		Alias:     vs.Alias,
		Phase:     journal.PhaseComposed,
		Target:    target,
		Checklist: spec.Accession,
		Sources:   req.Sources,
		RunDir:    runDir,
	}

	if req.DryRun {
		result.DryRun = true
		if err := s.journal.Record(entry); err != nil {
			return nil, errors.E(op, errors.KindJournal, err)
		}
		result.RunID = entry.ID
		return result, nil
	}

	if !s.config.HasCredentials() {
		return nil, errors.E(op, errors.KindConfig,
			"no submission account configured; set credentials in the config file or the VIRSAM_ACCOUNT and VIRSAM_PASSWORD environment variables")
	}

	client := webin.NewClient(s.config.SubmitURL(production), s.config.Credentials.Account, s.config.Credentials.Password, s.timeout)
	body, submitErr := client.Submit(ctx,
		webin.Document{Part: webin.PartSubmission, Path: submissionPath},
		webin.Document{Part: webin.PartSample, Path: samplePath},
	)

	// Archive the response before touching it, whatever the outcome.
	if len(body) > 0 {
		if err := os.WriteFile(paths.ResponsePath(runDir), body, 0644); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
	}
	if submitErr != nil {
		return nil, errors.E(op, submitErr)
	}

	if rec, recErr := receipt.Parse(body); recErr == nil {
		result.Receipt = rec
	} else {
		errors.IgnoreError(recErr, "envelope is advisory on submit; accession extraction decides")
	}

	outcome, found := receipt.ExtractSampleAccession(body)
	if !found {
		// The run happened; record it before reporting the failure.
		if err := s.journal.Record(entry); err != nil {
			return nil, errors.E(op, errors.KindJournal, err)
		}
		msg := "submission did not yield a sample accession"
		if result.Receipt != nil && len(result.Receipt.Errors) > 0 {
			msg += ": " + strings.Join(result.Receipt.Errors, "; ")
		}
		return nil, errors.E(op, errors.KindReceipt, msg)
	}

	result.Accession = outcome.Accession
	result.Existing = outcome.Existing
	entry.Phase = journal.PhaseSubmitted
	entry.Accession = outcome.Accession
	if err := s.journal.Record(entry); err != nil {
		return nil, errors.E(op, errors.KindJournal, err)
	}
	result.RunID = entry.ID

	return result, nil
}

// fetchSources retrieves each source sample, caches the record verbatim in
// the run directory, and parses it.
func (s *SubmissionService) fetchSources(ctx context.Context, runDir string, sources []string) ([]*models.SourceSample, error) {
	samples := make([]*models.SourceSample, 0, len(sources))
	for _, accession := range sources {
		body, err := s.browser.Fetch(ctx, accession)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(paths.SourceSamplePath(runDir, accession), body, 0644); err != nil {
			return nil, errors.E(errors.KindIO, err)
		}
		sample, err := parser.NewXMLParser(bytes.NewReader(body)).ParseSample()
		if err != nil {
			return nil, errors.E(errors.KindParse, fmt.Sprintf("parsing source sample %s", accession), err)
		}
		if sample.Accession == "" {
			sample.Accession = accession
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// checkComposed validates the composed sample against its checklist. A
// composed sample failing its own checklist is a pipeline bug; placeholder
// fields only produce advisory notes.
func (s *SubmissionService) checkComposed(vs *models.VirtualSample, spec *models.ChecklistSpec) ([]string, error) {
	report, _ := validator.NewValidator(validator.ValidationConfig{
		RequireChecklistMarker: true,
		ReportPlaceholders:     true,
	}).ValidateSample(vs, spec)
	if !report.IsValid {
		msgs := make([]string, 0, len(report.Errors))
		for _, e := range report.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.E(errors.KindValidation,
			fmt.Sprintf("composed sample failed its checklist: %s", strings.Join(msgs, "; ")))
	}
	notes := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		notes = append(notes, w.Message)
	}
	return notes, nil
}

func (s *SubmissionService) writeDocuments(vs *models.VirtualSample, samplePath, submissionPath string) error {
	sampleXML, err := compose.RenderSample(vs)
	if err != nil {
		return err
	}
	submissionXML, err := compose.RenderSubmission()
	if err != nil {
		return err
	}
	if err := os.WriteFile(samplePath, sampleXML, 0644); err != nil {
		return errors.E(errors.KindIO, err)
	}
	if err := os.WriteFile(submissionPath, submissionXML, 0644); err != nil {
		return errors.E(errors.KindIO, err)
	}
	return nil
}

// ReleaseRun makes an earlier submitted virtual sample public. It re-uses
// the run directory of the original submission and advances the journal
// entry once the drop box accepts the release.
func (s *SubmissionService) ReleaseRun(ctx context.Context, req *ReleaseRequest) (*ReleaseResult, error) {
	const op errors.Op = "service.ReleaseRun"

	info, err := os.Stat(req.OutDir)
	if err != nil || !info.IsDir() {
		return nil, errors.E(op, errors.KindValidation,
			fmt.Sprintf("run directory %s does not exist; release re-uses the directory of the original submission", req.OutDir))
	}
	runDir, err := filepath.Abs(req.OutDir)
	if err != nil {
		runDir = req.OutDir
	}

	samplePath := paths.VirtualSamplePath(runDir)
	if _, err := os.Stat(samplePath); err != nil {
		return nil, errors.E(op, errors.KindValidation,
			fmt.Sprintf("%s not found in %s; was this directory produced by a submit run?", paths.VirtualSampleFile, runDir))
	}

	accession, journalID, err := s.resolveAccession(runDir, req.Accession)
	if err != nil {
		return nil, errors.E(op, err)
	}

	releaseXML, err := compose.RenderRelease(accession)
	if err != nil {
		return nil, errors.E(op, err)
	}
	releasePath := paths.ReleasePath(runDir)
	if err := os.WriteFile(releasePath, releaseXML, 0644); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	if !s.config.HasCredentials() {
		return nil, errors.E(op, errors.KindConfig,
			"no submission account configured; set credentials in the config file or the VIRSAM_ACCOUNT and VIRSAM_PASSWORD environment variables")
	}

	client := webin.NewClient(s.config.SubmitURL(req.Production), s.config.Credentials.Account, s.config.Credentials.Password, s.timeout)
	body, submitErr := client.Submit(ctx,
		webin.Document{Part: webin.PartSubmission, Path: releasePath},
		webin.Document{Part: webin.PartSample, Path: samplePath},
	)

	// Archived under its own name so the submit response stays intact.
	if len(body) > 0 {
		if err := os.WriteFile(paths.ReleaseResponsePath(runDir), body, 0644); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
	}
	if submitErr != nil {
		return nil, errors.E(op, submitErr)
	}

	rec, err := receipt.Parse(body)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if !rec.Success {
		msg := fmt.Sprintf("release of %s was not accepted", accession)
		if len(rec.Errors) > 0 {
			msg += ": " + strings.Join(rec.Errors, "; ")
		}
		return nil, errors.E(op, errors.KindReceipt, msg)
	}

	if journalID != "" {
		if err := s.journal.Advance(journalID, journal.PhaseReleased, accession); err != nil {
			return nil, errors.E(op, errors.KindJournal, err)
		}
	}

	target := journal.TargetTest
	if req.Production {
		target = journal.TargetProduction
	}
	return &ReleaseResult{Accession: accession, Target: target, Receipt: rec}, nil
}

// MissingAccessionError reports a release run whose sample accession
// could not be recovered from the journal or the archived response.
type MissingAccessionError struct {
	RunDir string
	Reason string
}

func (e *MissingAccessionError) Error() string {
	return e.Reason + "; pass the accession explicitly"
}

// resolveAccession finds the accession assigned to a run. An explicit
// accession wins, then the journal entry for the run directory. Re-reading
// the archived response text is the last resort; it breaks if the archive
// ever changes its response format.
func (s *SubmissionService) resolveAccession(runDir, explicit string) (string, string, error) {
	if explicit != "" {
		if err := validator.CheckSampleAccessions(explicit); err != nil {
			return "", "", errors.E(errors.KindValidation, err)
		}
		if entry, err := s.journal.FindByRunDir(runDir); err == nil {
			return explicit, entry.ID, nil
		}
		return explicit, "", nil
	}

	var journalID string
	if entry, err := s.journal.FindByRunDir(runDir); err == nil {
		if entry.Accession != "" {
			return entry.Accession, entry.ID, nil
		}
		journalID = entry.ID
	}

	body, err := os.ReadFile(paths.ResponsePath(runDir))
	if err != nil {
		return "", "", errors.E(errors.KindValidation, &MissingAccessionError{
			RunDir: runDir,
			Reason: "no sample accession recorded for this run and no archived response to re-read",
		})
	}
	outcome, found := receipt.ExtractSampleAccession(body)
	if !found {
		return "", "", errors.E(errors.KindValidation, &MissingAccessionError{
			RunDir: runDir,
			Reason: "the archived response carries no sample accession",
		})
	}
	return outcome.Accession, journalID, nil
}

// Fetch retrieves a record's XML from the read-only metadata endpoint.
func (s *SubmissionService) Fetch(ctx context.Context, accession string) ([]byte, error) {
	const op errors.Op = "service.Fetch"
	if accession == "" {
		return nil, errors.E(op, errors.KindValidation, "no accession given")
	}
	body, err := s.browser.Fetch(ctx, accession)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return body, nil
}

// Checklist resolves a checklist definition into its field breakdown.
func (s *SubmissionService) Checklist(ctx context.Context, accession string) (*models.ChecklistSpec, error) {
	const op errors.Op = "service.Checklist"
	if err := validator.CheckChecklistAccession(accession); err != nil {
		return nil, errors.E(op, errors.KindValidation, err)
	}
	spec, err := s.resolver.Resolve(ctx, accession)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return spec, nil
}

// History returns the most recent journal entries, newest first.
func (s *SubmissionService) History(limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.journal.History(limit)
	if err != nil {
		return nil, errors.E(errors.Op("service.History"), errors.KindJournal, err)
	}
	return entries, nil
}

// Health verifies the service is operational by checking the journal
// connection.
func (s *SubmissionService) Health(ctx context.Context) error {
	if err := s.journal.Ping(); err != nil {
		return fmt.Errorf("journal unhealthy: %w", err)
	}
	return nil
}

// Close releases any resources held by the service. The journal connection
// is owned by the caller and stays open.
func (s *SubmissionService) Close() error {
	return nil
}
