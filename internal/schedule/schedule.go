// Package schedule runs recurring discovery scans from cron expressions.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"sentinel/internal/domain"
	"sentinel/internal/scanner"
)

// Starter launches scans
type Starter interface {
	Start(ctx context.Context, subnet string, trigger domain.ScanTrigger) (scanner.StartedScan, error)
}

// Entry is one recurring scan
type Entry struct {
	Subnet string
	// Cron uses six fields, seconds first
	Cron string
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron    *cron.Cron
	starter Starter
	entries []Entry
}

// New creates a scheduler with seconds precision
func New(starter Starter) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		starter: starter,
	}
}

// Add registers a recurring scan
func (s *Scheduler) Add(e Entry) error {
	if e.Subnet == "" {
		return fmt.Errorf("schedule subnet is required")
	}
	id, err := s.cron.AddFunc(e.Cron, func() {
		s.trigger(context.Background(), e)
	})
	if err != nil {
		return fmt.Errorf("add cron schedule %q: %w", e.Cron, err)
	}
	s.entries = append(s.entries, e)

	log.WithFields(log.Fields{"subnet": e.Subnet, "cron": e.Cron, "entry_id": id}).Info("Scan schedule added")
	return nil
}

// trigger starts one scheduled scan. A scan already in flight wins and
// this run is skipped.
func (s *Scheduler) trigger(ctx context.Context, e Entry) {
	started, err := s.starter.Start(ctx, e.Subnet, domain.TriggerSchedule)
	switch {
	case errors.Is(err, domain.ErrBusy):
		log.WithField("subnet", e.Subnet).Info("Scheduled scan skipped, another scan is running")
	case err != nil:
		log.WithError(err).WithField("subnet", e.Subnet).Warn("Scheduled scan failed to start")
	default:
		log.WithFields(log.Fields{"subnet": e.Subnet, "scan": started.ID}).Info("Scheduled scan started")
	}
}

// Entries returns the registered schedules
func (s *Scheduler) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("schedules", len(s.entries)).Info("Scheduler started")
}

// Stop waits for running jobs to return or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		log.Warn("Scheduler stop timeout")
		return ctx.Err()
	}
}
