// Package scheduler runs the periodic jobs of the dashboard server.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs at midnight every day. Schedules carry a seconds
// field.
const DefaultSchedule = "0 0 0 * * *"

// StatsRefresher recomputes the time-dependent dashboard counters on a cron
// schedule, so "overdue" and "upcoming" follow the calendar without a
// mutation.
type StatsRefresher struct {
	mu            sync.Mutex
	cronScheduler *cron.Cron
	schedule      string
	refresh       func()
	jobID         cron.EntryID
	started       bool
	log           logrus.FieldLogger
}

func NewStatsRefresher(schedule string, refresh func(), log logrus.FieldLogger) *StatsRefresher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	log = log.WithField("component", "stats-refresher")

	return &StatsRefresher{
		cronScheduler: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log))),
		),
		schedule: schedule,
		refresh:  refresh,
		log:      log,
	}
}

// Start schedules the job and starts the cron loop. An invalid schedule is
// reported here.
func (s *StatsRefresher) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	jobID, err := s.cronScheduler.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("error scheduling stats refresh %q: %w", s.schedule, err)
	}
	s.jobID = jobID
	s.cronScheduler.Start()
	s.started = true

	s.log.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": s.cronScheduler.Entry(jobID).Next,
	}).Info("Stats refresh scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *StatsRefresher) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cronScheduler.Stop().Done()
	s.log.Info("Stats refresh scheduler stopped")
}

// NextRun reports when the job fires next; zero before Start.
func (s *StatsRefresher) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return time.Time{}
	}
	return s.cronScheduler.Entry(s.jobID).Next
}

func (s *StatsRefresher) run() {
	start := time.Now()
	s.refresh()
	s.log.WithField("duration", time.Since(start)).Info("Dashboard statistics refreshed")
}
