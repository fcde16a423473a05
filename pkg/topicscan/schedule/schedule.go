// Package schedule runs the scan job on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cognicore/topicscan/internal/logger"
)

// Job is one scheduled scan.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with a single job. A run that is still going
// when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	sched    cron.Schedule
	location *time.Location
	entry    cron.EntryID
	log      logger.Logger
}

// New parses spec (standard five fields or a descriptor such as @daily) in
// timezone tz. An empty tz means local time.
func New(spec, tz string, log logger.Logger) (*Scheduler, error) {
	log = logger.OrNop(log)
	loc := time.Local
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", tz, err)
		}
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", spec, err)
	}

	cl := cronLogger{log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:     spec,
		sched:    sched,
		location: loc,
		log:      log,
	}
	return s, nil
}

// Run registers job and blocks until ctx is cancelled, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		started := time.Now()
		s.log.Info("Scheduled scan started")
		if err := job(ctx); err != nil {
			s.log.Error("Scheduled scan failed", logger.Error(err))
			return
		}
		s.log.Info("Scheduled scan finished", logger.Duration("elapsed", time.Since(started)))
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entry = id

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.String("cron", s.spec),
		logger.String("timezone", s.location.String()),
		logger.Time("next_run", s.Next()),
	)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
	return nil
}

// Next returns the next activation, or the zero time before Run.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// NextAfter computes the activation following t in the scheduler's timezone.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.sched.Next(t.In(s.location))
}

type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error("cron: "+msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(kv []any) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
