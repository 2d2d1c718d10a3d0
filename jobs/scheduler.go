// Package jobs runs the periodic background sweepers.
package jobs

import (
	"fmt"
	"time"

	"menagerie/metrics"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweeper drops idle state and returns how many entries it removed
type Sweeper struct {
	Name     string
	Interval time.Duration
	Sweep    func() int
}

// Scheduler runs each sweeper on its own interval
type Scheduler struct {
	cron     *cron.Cron
	sweepers []Sweeper
	metrics  *metrics.Metrics
}

// NewScheduler creates a scheduler. m may be nil.
func NewScheduler(m *metrics.Metrics, sweepers ...Sweeper) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		sweepers: sweepers,
		metrics:  m,
	}
}

// Start registers every sweeper and starts the cron loop
func (s *Scheduler) Start() error {
	for _, sw := range s.sweepers {
		if sw.Interval <= 0 {
			return fmt.Errorf("sweeper %s: interval must be positive", sw.Name)
		}
		spec := "@every " + sw.Interval.String()
		if _, err := s.cron.AddFunc(spec, func() { s.run(sw) }); err != nil {
			return fmt.Errorf("failed to schedule sweeper %s: %w", sw.Name, err)
		}
	}

	s.cron.Start()
	log.WithField("sweepers", len(s.sweepers)).Info("Scheduler started")
	return nil
}

// RunAll runs every sweeper once, immediately
func (s *Scheduler) RunAll() {
	for _, sw := range s.sweepers {
		s.run(sw)
	}
}

// Stop stops the cron loop and waits for running sweeps to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) run(sw Sweeper) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"sweeper": sw.Name,
				"panic":   r,
			}).Error("Sweeper panicked")
		}
	}()

	removed := sw.Sweep()
	s.metrics.RecordSwept(sw.Name, removed)
	if removed > 0 {
		log.WithFields(log.Fields{
			"sweeper": sw.Name,
			"removed": removed,
		}).Debug("Swept idle entries")
	}
}
