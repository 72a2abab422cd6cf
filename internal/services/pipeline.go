package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/dwhetl/internal/db/manager"
	"github.com/vvka-141/dwhetl/internal/etl"
	"github.com/vvka-141/dwhetl/internal/quality"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// QualityTarget names a table and its declared primary key.
type QualityTarget struct {
	Table      string
	PrimaryKey string
}

// QualityTargets are checked after every transform, in this order.
var QualityTargets = []QualityTarget{
	{dwh.TableSongplays, "songplay_id"},
	{dwh.TableSongs, "song_id"},
	{dwh.TableArtists, "artist_id"},
	{dwh.TableTime, "start_time"},
	{dwh.TableUsers, "user_id"},
}

// Reconciliation pairs a fact-table column with the dimension it references.
type Reconciliation struct {
	Left  dwh.KeyRef
	Right dwh.KeyRef
}

// Reconciliations are reported after the quality pass, in this order.
var Reconciliations = []Reconciliation{
	{
		Left:  dwh.KeyRef{Table: dwh.TableSongplays, Column: "user_id"},
		Right: dwh.KeyRef{Table: dwh.TableUsers, Column: "user_id"},
	},
	{
		Left:  dwh.KeyRef{Table: dwh.TableSongplays, Column: "start_time"},
		Right: dwh.KeyRef{Table: dwh.TableTime, Column: "start_time"},
	},
}

// SourceChecker verifies S3 sources before the staging load.
type SourceChecker interface {
	Check(ctx context.Context, uris ...string) error
}

// PipelineConfig is everything a run needs besides its collaborators.
type PipelineConfig struct {
	Schema  string
	Sources etl.Sources
	Options dwh.RunOptions
}

// Plan builds the validated step plan for config.
func (c PipelineConfig) Plan() (*etl.Plan, error) {
	return etl.NewPipelinePlan(etl.PlanOptions{
		Schema:      c.Schema,
		Sources:     c.Sources,
		SkipStaging: c.Options.SkipStaging,
	})
}

// PipelineService runs the warehouse pipeline and its single-purpose parts.
// Thread-Safety: NOT safe for concurrent Run() calls against the same tables.
type PipelineService struct {
	sessions  *SessionManager
	preflight SourceChecker
	approver  dwh.Approver
	logger    dwh.Logger
}

// NewPipelineService creates a PipelineService with all dependencies injected.
// Panics on nil dependencies.
func NewPipelineService(sessions *SessionManager, preflight SourceChecker, approver dwh.Approver, logger dwh.Logger) *PipelineService {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if preflight == nil {
		panic("preflight cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PipelineService{sessions: sessions, preflight: preflight, approver: approver, logger: logger}
}

// Run executes Load, Transform, the quality pass and the reconciliations, in
// that order, on one connection. Any failure ends the run; the returned
// report holds whatever completed before it.
func (s *PipelineService) Run(ctx context.Context, cfg PipelineConfig) (*dwh.RunReport, error) {
	start := time.Now()
	report := &dwh.RunReport{RunID: uuid.New()}
	s.logger.Info("Starting run %s", report.RunID)

	plan, err := cfg.Plan()
	if err != nil {
		return report, err
	}

	if cfg.Options.Preflight && !cfg.Options.SkipStaging {
		if err := s.checkSources(ctx, cfg.Sources); err != nil {
			return report, err
		}
	}

	conn, err := s.sessions.Open(ctx, cfg.Schema)
	if err != nil {
		return report, err
	}
	defer conn.Close(ctx) //nolint:errcheck

	catalog := manager.New(cfg.Schema)

	if !cfg.Options.SkipStaging {
		steps, err := etl.NewBulkLoader(conn, s.logger).Load(ctx, plan)
		report.Steps = append(report.Steps, steps...)
		if err != nil {
			return report, fmt.Errorf("staging load failed: %w", err)
		}
		report.StagingLoaded = true
	} else {
		s.logger.Verbose("Skipping staging load")
	}

	steps, err := etl.NewTransformLoader(conn, s.logger).Load(ctx, plan)
	report.Steps = append(report.Steps, steps...)
	if err != nil {
		return report, fmt.Errorf("transform load failed: %w", err)
	}

	checker := quality.NewChecker(conn, catalog, s.logger)
	for _, target := range QualityTargets {
		qr, err := checker.Check(ctx, target.Table, target.PrimaryKey)
		if err != nil {
			return report, fmt.Errorf("quality check of %s failed: %w", target.Table, err)
		}
		report.Quality = append(report.Quality, qr)
	}

	reconciler := quality.NewReconciler(conn, catalog, s.logger)
	for _, pair := range Reconciliations {
		diff, err := reconciler.Reconcile(ctx, pair.Left, pair.Right)
		if err != nil {
			return report, fmt.Errorf("reconciliation of %s and %s failed: %w", pair.Left, pair.Right, err)
		}
		report.Reconciliations = append(report.Reconciliations, diff)
	}

	report.Duration = time.Since(start)
	s.logger.Info("Run %s completed in %.2f sec", report.RunID, report.Duration.Seconds())
	return report, nil
}

func (s *PipelineService) checkSources(ctx context.Context, src etl.Sources) error {
	uris := []string{src.LogData, src.SongData}
	if src.LogJSONPath != "" {
		uris = append(uris, src.LogJSONPath)
	}
	s.logger.Verbose("Checking %d S3 sources", len(uris))
	if err := s.preflight.Check(ctx, uris...); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}
	return nil
}

// CheckTable runs one quality check outside a pipeline run.
func (s *PipelineService) CheckTable(ctx context.Context, schema, table, primaryKey string) (dwh.QualityReport, error) {
	conn, err := s.sessions.Open(ctx, schema)
	if err != nil {
		return dwh.QualityReport{}, err
	}
	defer conn.Close(ctx) //nolint:errcheck

	return quality.NewChecker(conn, manager.New(schema), s.logger).Check(ctx, table, primaryKey)
}

// ReconcileKeys runs one reconciliation outside a pipeline run.
func (s *PipelineService) ReconcileKeys(ctx context.Context, schema string, left, right dwh.KeyRef) (dwh.KeySetDiff, error) {
	conn, err := s.sessions.Open(ctx, schema)
	if err != nil {
		return dwh.KeySetDiff{}, err
	}
	defer conn.Close(ctx) //nolint:errcheck

	return quality.NewReconciler(conn, manager.New(schema), s.logger).Reconcile(ctx, left, right)
}

// CreateSchema creates the staging and analytics tables that do not exist yet.
func (s *PipelineService) CreateSchema(ctx context.Context, schema string) error {
	conn, err := s.sessions.Open(ctx, schema)
	if err != nil {
		return err
	}
	defer conn.Close(ctx) //nolint:errcheck

	if err := manager.New(schema).CreateSchema(ctx, conn, s.logger); err != nil {
		return err
	}
	s.logger.Info("✓ Tables created in schema %s", schema)
	return nil
}

// DropSchema drops every pipeline table after the approver agrees.
func (s *PipelineService) DropSchema(ctx context.Context, schema string) error {
	approved, err := s.approver.RequestApproval(ctx, "drop all pipeline tables in schema", schema)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("dropping tables in %s: %w", schema, dwh.ErrApprovalDenied)
	}

	conn, err := s.sessions.Open(ctx, schema)
	if err != nil {
		return err
	}
	defer conn.Close(ctx) //nolint:errcheck

	if err := manager.New(schema).DropSchema(ctx, conn, s.logger); err != nil {
		return err
	}
	s.logger.Info("✓ Tables dropped from schema %s", schema)
	return nil
}

// IsInterrupted reports whether err stems from context cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
