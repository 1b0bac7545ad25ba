package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/services"
)

// Scheduler runs posture assessments on a cron schedule, discovering
// evidence sources from the configured directory on each tick.
type Scheduler struct {
	cron    *cron.Cron
	service *services.AssessmentService
	cfg     config.AssessmentConfig
	spec    string
	logger  *logger.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(service *services.AssessmentService, cfg config.AssessmentConfig, spec string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		cfg:     cfg,
		spec:    spec,
		logger:  log,
	}
}

// Start registers the assessment job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.With("schedule", s.spec).Info("Assessment scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Assessment scheduler stopped")
}

func (s *Scheduler) runOnce() {
	sources, err := ingest.Discover(s.cfg.SourceDir)
	if err != nil {
		s.logger.ErrorWithErr(err, "Scheduled assessment skipped; source directory unreadable")
		return
	}
	if len(sources) == 0 {
		s.logger.With("dir", s.cfg.SourceDir).Warn("Scheduled assessment skipped; no result files found")
		return
	}

	_, err = s.service.Run(context.Background(), services.RunOptions{
		Org:               s.cfg.Org,
		Sources:           sources,
		RequiredPlatforms: s.cfg.RequiredPlatforms,
		StalenessDays:     s.cfg.StalenessDays,
		PassRateBar:       s.cfg.PassRateBar,
		DefaultRTOMinutes: s.cfg.DefaultRTOMinutes,
	})
	if err != nil {
		s.logger.ErrorWithErr(err, "Scheduled assessment failed")
	}
}
