package priceoracle

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// Worker pulls the live ticker of every market from the price feed and
// stores the reading for the checked oracle path
type Worker struct {
	worker.TickWorker
	db           *db.DB
	marketStore  core.IMarketStore
	priceStore   core.IPriceStore
	priceService core.IPriceOracleService
}

// New new price oracle worker
func New(
	cfg *core.Oracle,
	db *db.DB,
	marketStore core.IMarketStore,
	priceStore core.IPriceStore,
	priceService core.IPriceOracleService,
) *Worker {
	job := Worker{
		db:           db,
		marketStore:  marketStore,
		priceStore:   priceStore,
		priceService: priceService,
	}

	if cfg.PullIntervalSeconds > 0 {
		job.Delay = time.Duration(cfg.PullIntervalSeconds) * time.Second
		job.ErrDelay = job.Delay
	}

	return &job
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	if len(markets) == 0 {
		return nil
	}

	wg := sync.WaitGroup{}
	for _, m := range markets {
		wg.Add(1)
		go func(market *core.Market) {
			defer wg.Done()

			ticker, err := w.priceService.PullPriceTicker(ctx, market.Symbol, time.Now())
			if err != nil {
				log.WithError(err).Errorln("pull price ticker:", market.Symbol)
				return
			}

			if err := w.savePrice(ctx, market, ticker); err != nil {
				log.WithError(err).Errorln("save price:", market.Symbol)
			}
		}(m)
	}

	wg.Wait()

	return nil
}

func (w *Worker) savePrice(ctx context.Context, market *core.Market, ticker *core.PriceTicker) error {
	content, err := json.Marshal(ticker)
	if err != nil {
		return err
	}

	price := &core.Price{
		AssetID: market.AssetID,
		Price:   ticker.Price,
		Time:    ticker.Time,
		Content: content,
	}

	return w.db.Tx(func(tx *db.DB) error {
		return w.priceStore.Save(ctx, tx, price)
	})
}
