package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seqops/virsam/internal/compose"
	"github.com/seqops/virsam/internal/config"
	"github.com/seqops/virsam/internal/errors"
	"github.com/seqops/virsam/internal/journal"
	"github.com/seqops/virsam/internal/models"
	"github.com/seqops/virsam/internal/paths"
	"github.com/seqops/virsam/internal/receipt"
	"github.com/seqops/virsam/internal/validator"
	"github.com/seqops/virsam/internal/webin"
)

// ProjectService registers studies and umbrella projects with the archive.
type ProjectService struct {
	config  *config.Config
	journal *journal.DB
	timeout time.Duration

	// register collects the studies accepted in this run, in creation
	// order, so an umbrella can link them without a second lookup.
	register []RegisteredStudy
}

// NewProjectService creates a project service backed by the given
// configuration and journal.
func NewProjectService(cfg *config.Config, jdb *journal.DB) *ProjectService {
	return &ProjectService{
		config:  cfg,
		journal: jdb,
		timeout: time.Duration(cfg.Endpoints.TimeoutSeconds) * time.Second,
	}
}

// StudyRun composes a study project document and registers it. The receipt
// is archived next to the project document. When req.Release is set the
// envelope carries a hold until today, which makes the project public as
// soon as it is accepted.
func (p *ProjectService) StudyRun(ctx context.Context, req *StudyRunRequest) (*ProjectResult, error) {
	const op errors.Op = "service.StudyRun"

	project, err := compose.BuildStudy(req.Study)
	if err != nil {
		return nil, errors.E(op, err)
	}

	outDir, err := p.prepareDir(req.OutDir)
	if err != nil {
		return nil, errors.E(op, err)
	}
	projectPath := paths.StudyFilePath(outDir, req.Study.Species, req.Study.StudyType)

	result, err := p.runProject(ctx, projectRun{
		project:     project,
		projectPath: projectPath,
		outDir:      outDir,
		kind:        journal.KindStudy,
		production:  req.Production,
		release:     req.Release,
		dryRun:      req.DryRun,
	})
	if err != nil {
		return nil, errors.E(op, err)
	}

	if result.Accession != "" {
		p.register = append(p.register, RegisteredStudy{Alias: project.Alias, Accession: result.Accession})
	}
	return result, nil
}

// UmbrellaRun composes an umbrella project document and registers it. The
// children must already exist in the archive; with LinkRegistered the
// studies accepted earlier by this service are linked as well.
func (p *ProjectService) UmbrellaRun(ctx context.Context, req *UmbrellaRunRequest) (*ProjectResult, error) {
	const op errors.Op = "service.UmbrellaRun"

	umbrella := req.Umbrella
	umbrella.Children = append([]string(nil), req.Umbrella.Children...)
	if req.LinkRegistered {
		seen := make(map[string]bool, len(umbrella.Children))
		for _, c := range umbrella.Children {
			seen[c] = true
		}
		for _, r := range p.register {
			if r.Accession != "" && !seen[r.Accession] {
				umbrella.Children = append(umbrella.Children, r.Accession)
				seen[r.Accession] = true
			}
		}
	}
	if len(umbrella.Children) == 0 {
		return nil, errors.E(op, errors.KindValidation, "an umbrella needs at least one child project")
	}
	if err := validator.CheckProjectAccessions(umbrella.Children...); err != nil {
		return nil, errors.E(op, errors.KindValidation, err)
	}

	project, err := compose.BuildUmbrella(umbrella)
	if err != nil {
		return nil, errors.E(op, err)
	}

	outDir, err := p.prepareDir(req.OutDir)
	if err != nil {
		return nil, errors.E(op, err)
	}
	projectPath := paths.UmbrellaFilePath(outDir, umbrella.Species)

	result, err := p.runProject(ctx, projectRun{
		project:     project,
		projectPath: projectPath,
		outDir:      outDir,
		kind:        journal.KindUmbrella,
		production:  req.Production,
		release:     req.Release,
		dryRun:      req.DryRun,
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	return result, nil
}

// Registered returns the studies accepted in this run, in creation order.
func (p *ProjectService) Registered() []RegisteredStudy {
	return append([]RegisteredStudy(nil), p.register...)
}

type projectRun struct {
	project     *compose.Project
	projectPath string
	outDir      string
	kind        string
	production  bool
	release     bool
	dryRun      bool
}

// runProject writes the project document and its envelope, submits the
// pair, archives the receipt, and records the run in the journal.
func (p *ProjectService) runProject(ctx context.Context, run projectRun) (*ProjectResult, error) {
	if err := os.WriteFile(run.projectPath, run.project.Document, 0644); err != nil {
		return nil, errors.E(errors.KindIO, err)
	}
	envelope, err := compose.RenderProjectSubmission(run.release, time.Now())
	if err != nil {
		return nil, err
	}
	envelopePath := paths.SubmissionPath(run.outDir)
	if err := os.WriteFile(envelopePath, envelope, 0644); err != nil {
		return nil, errors.E(errors.KindIO, err)
	}

	result := &ProjectResult{
		Alias: run.project.Alias,
		Title: run.project.Title,
		Path:  run.projectPath,
	}
	if run.dryRun {
		result.DryRun = true
		return result, nil
	}

	rec, err := p.submitProject(ctx, run.production, envelopePath, run.projectPath)
	if err != nil {
		return nil, err
	}
	result.Receipt = rec
	result.Accession = rec.Project

	phase := journal.PhaseSubmitted
	if run.release {
		phase = journal.PhaseReleased
	}
	target := journal.TargetTest
	if run.production {
		target = journal.TargetProduction
	}
	result.Target = target

	entry := &journal.Entry{
		Kind:      run.kind,
		Alias:     run.project.Alias,
		Accession: rec.Project,
		Phase:     phase,
		Target:    target,
		RunDir:    run.outDir,
	}
	if err := p.journal.Record(entry); err != nil {
		return nil, errors.E(errors.KindJournal, err)
	}
	result.RunID = entry.ID

	return result, nil
}

func (p *ProjectService) submitProject(ctx context.Context, production bool, envelopePath, projectPath string) (*models.SubmissionReceipt, error) {
	if !p.config.HasCredentials() {
		return nil, errors.E(errors.KindConfig,
			"no submission account configured; set credentials in the config file or the VIRSAM_ACCOUNT and VIRSAM_PASSWORD environment variables")
	}

	client := webin.NewClient(p.config.SubmitURL(production), p.config.Credentials.Account, p.config.Credentials.Password, p.timeout)
	body, submitErr := client.Submit(ctx,
		webin.Document{Part: webin.PartSubmission, Path: envelopePath},
		webin.Document{Part: webin.PartProject, Path: projectPath},
	)

	// The receipt lives next to the document it answers.
	if len(body) > 0 {
		if err := os.WriteFile(paths.ReceiptPathFor(projectPath), body, 0644); err != nil {
			return nil, errors.E(errors.KindIO, err)
		}
	}
	if submitErr != nil {
		return nil, submitErr
	}

	rec, err := receipt.Parse(body)
	if err != nil {
		return nil, err
	}
	if !rec.Success {
		msg := "project registration was not accepted"
		if len(rec.Errors) > 0 {
			msg += ": " + strings.Join(rec.Errors, "; ")
		}
		return nil, errors.E(errors.KindReceipt, msg)
	}
	return rec, nil
}

// prepareDir creates the output directory if needed. Project runs may share
// a directory; the per-species file names keep them apart.
func (p *ProjectService) prepareDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.E(errors.KindValidation, "no output directory given")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.E(errors.KindIO, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, nil
	}
	return abs, nil
}

// Health verifies the service is operational by checking the journal
// connection.
func (p *ProjectService) Health(ctx context.Context) error {
	if err := p.journal.Ping(); err != nil {
		return fmt.Errorf("journal unhealthy: %w", err)
	}
	return nil
}

// Close releases any resources held by the service. The journal connection
// is owned by the caller and stays open.
func (p *ProjectService) Close() error {
	return nil
}
