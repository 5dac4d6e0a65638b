package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/metrics"
)

const defaultInterval = time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	// JobTimeout bounds every job. It should stay below the lock TTL so an
	// audit never runs after another replica could have taken the lock.
	JobTimeout time.Duration
}

// Service runs the registered audits on a fixed cadence, one replica at a time.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

// CycleReport describes one audit pass.
type CycleReport struct {
	// Skipped is set when another replica held the lock.
	Skipped  bool
	Ran      int
	Findings map[string]int
	// Err combines every job failure of the pass.
	Err error
}

// TotalFindings sums the findings of every auditor that succeeded.
func (r CycleReport) TotalFindings() int {
	total := 0
	for _, n := range r.Findings {
		total += n
	}
	return total
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobTimeout := params.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultLockTTL
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   interval,
		jobTimeout: jobTimeout,
	}, nil
}

// Run audits immediately and then every interval until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "audit cycle aborted", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single audit pass. The returned error is reserved for
// lock failures; job failures are collected in the report.
func (s *Service) RunOnce(ctx context.Context) (CycleReport, error) {
	report := CycleReport{Findings: map[string]int{}}

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return report, fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		report.Skipped = true
		s.logg.Info(ctx, "audit lock held elsewhere; skipping cycle")
		return report, nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "failed to release cron lock", err)
		}
	}()

	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			report.Err = multierr.Append(report.Err, ctx.Err())
			break
		}
		report.Ran++
		if err := s.runJob(ctx, job); err != nil {
			report.Err = multierr.Append(report.Err, err)
			continue
		}
		if auditor, ok := job.(Auditor); ok {
			report.Findings[job.Name()] = auditor.Findings()
			s.metrics.SetFindings(job.Name(), auditor.Findings())
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"jobs":     report.Ran,
		"failed":   len(multierr.Errors(report.Err)),
		"findings": report.TotalFindings(),
	}), "audit cycle complete")
	return report, nil
}

// runJob executes one job under the job timeout, turning a panic into a
// failure so the remaining audits still run.
func (s *Service) runJob(ctx context.Context, job Job) (err error) {
	name := job.Name()
	jobCtx, cancel := context.WithTimeout(s.logg.WithFields(ctx, map[string]any{
		"job":   name,
		"event": "cron.job",
	}), s.jobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: panic: %v", name, rec)
		}
		elapsed := time.Since(start)
		s.metrics.ObserveDuration(name, elapsed)
		logCtx := s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
		if err != nil {
			s.metrics.IncFailure(name)
			s.logg.Error(logCtx, "job failed", err)
			return
		}
		s.metrics.IncSuccess(name)
		s.logg.Info(logCtx, "job completed")
	}()

	s.logg.Debug(jobCtx, "job start")
	if err := job.Run(jobCtx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
