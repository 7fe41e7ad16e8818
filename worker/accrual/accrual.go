package accrual

import (
	"context"
	"sync"
	"time"

	"lever/core"
	"lever/pkg/concurrency"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Accruer advances the indices of one market; calls inside the minimum
// accrual gap are cheap no-ops
type Accruer interface {
	Accrue(ctx context.Context, assetID string) error
}

// Worker periodic interest accrual over all markets
type Worker struct {
	worker.BaseJob
	marketStore core.IMarketStore
	accruer     Accruer
}

// New new accrual worker
func New(location string, marketStore core.IMarketStore, accruer Accruer) *Worker {
	job := Worker{
		marketStore: marketStore,
		accruer:     accruer,
	}

	l, _ := time.LoadLocation(location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 10s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accrual")

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	golimit := concurrency.DefaultGoLimit
	wg := sync.WaitGroup{}
	for _, m := range markets {
		wg.Add(1)
		golimit.Add()
		go func(assetID string) {
			defer wg.Done()
			defer golimit.Done()

			if err := w.accruer.Accrue(ctx, assetID); err != nil {
				log.WithError(err).Errorln("accrue", assetID)
			}
		}(m.AssetID)
	}

	wg.Wait()

	return nil
}
