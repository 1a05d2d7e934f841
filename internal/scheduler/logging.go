package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	outcomeOK      = "ok"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

// jobRun tracks one locked execution of a job.
type jobRun struct {
	job       string
	runID     string
	started   time.Time
	processed int
	failed    int
}

func (r *jobRun) AddProcessed(count int) {
	if r != nil && count > 0 {
		r.processed += count
	}
}

// IncError counts a per-row failure that did not abort the batch.
func (r *jobRun) IncError() {
	if r != nil {
		r.failed++
	}
}

func (s *Scheduler) startRun(job string) *jobRun {
	run := &jobRun{job: job, runID: s.genID.Generate().String(), started: time.Now()}
	s.log.Debug("scheduler.job.start",
		zap.String("job", job),
		zap.String("run_id", run.runID),
		zap.Int("batch_size", s.cfg.BatchSize),
	)
	return run
}

// finishRun logs and counts a finished run. Quiet runs log at debug; runs
// that changed rows log at info.
func (s *Scheduler) finishRun(ctx context.Context, run *jobRun, outcome string, err error) {
	level := zapcore.DebugLevel
	switch {
	case outcome == outcomeError:
		level = zapcore.ErrorLevel
	case outcome == outcomeTimeout || run.failed > 0:
		level = zapcore.WarnLevel
	case run.processed > 0:
		level = zapcore.InfoLevel
	}

	if ce := s.log.Check(level, "scheduler.job.finish"); ce != nil {
		fields := []zap.Field{
			zap.String("job", run.job),
			zap.String("run_id", run.runID),
			zap.String("outcome", outcome),
			zap.Int64("duration_ms", time.Since(run.started).Milliseconds()),
			zap.Int("processed_count", run.processed),
			zap.Int("error_count", run.failed),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		ce.Write(fields...)
	}
	s.metrics.RecordSchedulerJob(ctx, run.job, outcome, run.processed)
}
