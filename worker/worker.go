package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}

// IJob cron job interface
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron backed job, one run at a time
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true

	job.OnWork()

	job.IsRunning = false
}

// TickWorker loops onWork with a short delay after success and a longer
// backoff after an error, until ctx is done
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick start the loop
func (w *TickWorker) StartTick(ctx context.Context, onWork func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	errDelay := w.ErrDelay
	if errDelay <= 0 {
		errDelay = 500 * time.Millisecond
	}

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := onWork(ctx); err == nil {
				dur = delay
			} else {
				dur = errDelay
			}
		}
	}
}
