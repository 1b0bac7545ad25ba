package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/guardline/restoreaudit/internal/domain/advisory"
	"github.com/guardline/restoreaudit/internal/domain/scoring"
	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/domain/validation"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/pkg/metrics"
)

// RunOptions parameterizes one posture assessment run.
type RunOptions struct {
	Org               string
	Sources           []ingest.Source
	RequiredPlatforms []string
	StalenessDays     int
	PassRateBar       float64

	// DefaultRTOMinutes is applied to records whose source carries no
	// RTO target of its own; 0 leaves such records untargeted.
	DefaultRTOMinutes int

	// AsOf anchors staleness checks; zero means now.
	AsOf time.Time
}

// PostureBundle is the full outcome of one run: the normalized summary,
// the composite score, the advisory findings, and the trend delta against
// the prior snapshot. Delta is nil on a baseline run.
type PostureBundle struct {
	Summary  validation.Summary `json:"summary"`
	Score    scoring.Score      `json:"score"`
	Findings []advisory.Finding `json:"findings"`
	Delta    *snapshot.Delta    `json:"delta"`
	Snapshot *snapshot.Snapshot `json:"snapshot"`
}

// AssessmentService orchestrates ingest, aggregation, scoring, advisory
// evaluation, trend comparison and snapshot persistence.
type AssessmentService struct {
	ingestor *ingest.Ingestor
	repo     snapshot.Repository
	logger   *logger.Logger
}

// NewAssessmentService creates an AssessmentService.
func NewAssessmentService(ingestor *ingest.Ingestor, repo snapshot.Repository, log *logger.Logger) *AssessmentService {
	return &AssessmentService{
		ingestor: ingestor,
		repo:     repo,
		logger:   log,
	}
}

// Run executes one assessment: normalize every source, aggregate, score,
// evaluate advisories, compute the trend delta against the prior snapshot,
// and persist the new snapshot. Zero results across all sources is fatal;
// a snapshot write failure is logged but does not fail the run, since the
// assessment itself already succeeded.
func (s *AssessmentService) Run(ctx context.Context, opts RunOptions) (*PostureBundle, error) {
	started := time.Now()

	results, provenance := s.ingestor.Ingest(opts.Sources, opts.DefaultRTOMinutes)
	if len(results) == 0 {
		metrics.RecordAssessmentRun(opts.Org, "failed", time.Since(started))
		return nil, errors.IngestEmpty()
	}

	summary := validation.Summarize(results)
	required := s.canonicalPlatforms(opts.RequiredPlatforms)

	var automated, manual int
	sources := make([]snapshot.Source, 0, len(provenance))
	for _, p := range provenance {
		if p.Skipped {
			continue
		}
		if p.Manual {
			manual++
		} else {
			automated++
		}
		sources = append(sources, snapshot.Source{
			Path:    p.Path,
			Kind:    p.Kind,
			Records: p.Records,
			Manual:  p.Manual,
		})
	}

	score := scoring.Compute(scoring.Inputs{
		Summary:           summary,
		RequiredPlatforms: required,
		StalenessDays:     opts.StalenessDays,
		AutomatedSources:  automated,
		ManualSources:     manual,
		AsOf:              opts.AsOf,
	})

	findings := advisory.Evaluate(summary, advisory.Config{
		RequiredPlatforms: required,
		StalenessDays:     opts.StalenessDays,
		PassRateBar:       opts.PassRateBar,
		Now:               opts.AsOf,
	})

	snap := snapshot.New(opts.Org, summary, score, findings, sources)

	delta := s.computeDelta(ctx, opts.Org, snap)

	if err := s.repo.Save(ctx, snap); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"org":    opts.Org,
			"run_id": summary.RunID,
		}).ErrorWithErr(err, "Failed to persist snapshot; assessment result is still valid")
	}

	metrics.RecordAssessmentRun(opts.Org, "completed", time.Since(started))
	metrics.SetPostureScore(opts.Org, score.OverallScore)
	for severity, count := range advisory.CountBySeverity(findings) {
		metrics.SetFindingCount(opts.Org, severity, float64(count))
	}

	s.logger.WithFields(map[string]interface{}{
		"org":      opts.Org,
		"run_id":   summary.RunID,
		"score":    score.OverallScore,
		"grade":    score.Grade,
		"findings": len(findings),
		"results":  len(results),
	}).Info("Posture assessment completed")

	return &PostureBundle{
		Summary:  summary,
		Score:    score,
		Findings: findings,
		Delta:    delta,
		Snapshot: snap,
	}, nil
}

// canonicalPlatforms maps free-text required-platform labels onto the
// canonical constants so "aws" and "AWS" name the same platform. Unknown
// labels pass through verbatim, logged; they will read as coverage gaps.
func (s *AssessmentService) canonicalPlatforms(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		canonical, ok := validation.CanonicalPlatform(label)
		if !ok {
			s.logger.With("platform", label).Warn("Unknown required platform label")
			canonical = label
		}
		out = append(out, canonical)
	}
	return out
}

// computeDelta looks up the prior snapshot, excluding this run's own. Any
// lookup failure degrades to a baseline run rather than failing the
// assessment.
func (s *AssessmentService) computeDelta(ctx context.Context, org string, current *snapshot.Snapshot) *snapshot.Delta {
	prior, err := s.repo.Latest(ctx, org, current.RunID)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeNotFound {
			s.logger.With("org", org).Debug("No prior snapshot; treating run as baseline")
			return nil
		}
		s.logger.With("org", org).ErrorWithErr(err, "Failed to load prior snapshot; treating run as baseline")
		return nil
	}
	return snapshot.ComputeDelta(prior, current)
}

// Latest returns the most recent persisted snapshot for an organization.
func (s *AssessmentService) Latest(ctx context.Context, org string) (*snapshot.Snapshot, error) {
	return s.repo.Latest(ctx, org, "")
}

// Get returns one snapshot by ID.
func (s *AssessmentService) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	return s.repo.Get(ctx, id)
}

// List returns snapshots for an organization, newest first.
func (s *AssessmentService) List(ctx context.Context, org string, limit int) ([]*snapshot.Snapshot, error) {
	return s.repo.List(ctx, org, limit)
}
