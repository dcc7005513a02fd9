package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/ingest"
)

// RunInfo records the outcome of one dataset refresh run.
type RunInfo struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Duration   string    `json:"duration"`
	Teams      int       `json:"teams"`
	Players    int       `json:"players"`
	Rows       int       `json:"rows"`
	Error      string    `json:"error,omitempty"`
	Successful bool      `json:"successful"`
}

// RefreshScheduler rebuilds the stored game-log dataset on a cron schedule.
// Runs are strictly serialized: a tick that fires while a refresh is in
// flight is skipped.
type RefreshScheduler struct {
	builder  *ingest.Builder
	sink     ingest.RowSink
	logger   *logrus.Logger
	cron     *cron.Cron
	schedule string
	seasons  []string

	mu        sync.Mutex
	isRunning bool
	inFlight  bool
	lastRun   *RunInfo
	runCount  int
}

// NewRefreshScheduler creates a scheduler that rebuilds the given seasons
// into the sink on the cron schedule.
func NewRefreshScheduler(builder *ingest.Builder, sink ingest.RowSink, seasons []string, schedule string, logger *logrus.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		builder:  builder,
		sink:     sink,
		logger:   logger,
		cron:     cron.New(),
		schedule: schedule,
		seasons:  seasons,
	}
}

// Start begins scheduled refreshes.
func (s *RefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresh scheduler is already running")
	}

	_, err := s.cron.AddFunc(s.schedule, func() { s.runRefresh() })
	if err != nil {
		return fmt.Errorf("failed to schedule dataset refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"schedule":  s.schedule,
		"seasons":   s.seasons,
	}).Info("Dataset refresh scheduler started")
	return nil
}

// Stop halts scheduled refreshes, waiting for an in-flight run to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.WithField("component", "refresh_scheduler").Info("Dataset refresh scheduler stopped")
}

// TriggerNow runs a refresh in the background, outside the schedule.
func (s *RefreshScheduler) TriggerNow() {
	go s.runRefresh()
}

// runRefresh executes one refresh run with bookkeeping.
func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.WithField("component", "refresh_scheduler").Warn("Refresh already in flight, skipping tick")
		return
	}
	s.inFlight = true
	s.runCount++
	s.mu.Unlock()

	run := RunInfo{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"run_id":    run.ID,
	})
	log.Info("Starting dataset refresh")

	stats, err := s.builder.Build(context.Background(), s.seasons, s.sink)
	run.Duration = time.Since(run.StartedAt).String()
	run.Teams = stats.Teams
	run.Players = stats.Players
	run.Rows = stats.Rows

	if err != nil {
		run.Error = err.Error()
		log.WithError(err).Error("Dataset refresh failed")
	} else {
		run.Successful = true
		log.WithFields(logrus.Fields{
			"teams":    stats.Teams,
			"players":  stats.Players,
			"rows":     stats.Rows,
			"duration": run.Duration,
		}).Info("Dataset refresh complete")
	}

	s.mu.Lock()
	s.lastRun = &run
	s.inFlight = false
	s.mu.Unlock()
}

// GetStatus returns current scheduler state for the health surface.
func (s *RefreshScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running": s.isRunning,
		"in_flight":  s.inFlight,
		"run_count":  s.runCount,
		"last_run":   s.lastRun,
		"next_runs":  nextRuns,
	}
}
