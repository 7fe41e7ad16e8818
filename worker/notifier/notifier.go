package notifier

import (
	"context"
	"errors"
	"time"

	"lever/core"
	storeevent "lever/store/event"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
)

const checkpointKey = "lever_notifier_checkpoint"

// Worker delivers committed events to the indexer sink, strictly in id
// order; the checkpoint only advances past an event once its delivery
// returned without error
type Worker struct {
	worker.TickWorker
	db            *db.DB
	propertyStore property.Store
	eventStore    core.IEventStore
	notifier      core.INotifier
	batch         int
}

// New new notifier worker
func New(
	cfg *core.Notifier,
	db *db.DB,
	propertyStore property.Store,
	eventStore core.IEventStore,
	notifier core.INotifier,
) *Worker {
	batch := cfg.Batch
	if batch <= 0 {
		batch = 100
	}

	return &Worker{
		db:            db,
		propertyStore: propertyStore,
		eventStore:    eventStore,
		notifier:      notifier,
		batch:         batch,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "notifier")

	v, err := w.propertyStore.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	events, err := w.eventStore.List(ctx, uint64(v.Int64()), w.batch)
	if err != nil {
		log.WithError(err).Errorln("events.List")
		return err
	}

	if len(events) == 0 {
		return errors.New("EOF")
	}

	for _, event := range events {
		if err := w.notifier.Notify(ctx, event); err != nil {
			log.WithError(err).Errorln("notify", event.ID)
			return err
		}

		if err := w.db.Tx(func(tx *db.DB) error {
			return storeevent.MarkNotified(tx, []*core.Event{event}, time.Now())
		}); err != nil {
			log.WithError(err).Errorln("mark notified", event.ID)
			return err
		}

		if err := w.propertyStore.Save(ctx, checkpointKey, event.ID); err != nil {
			log.WithError(err).Errorln("property.Save", checkpointKey)
			return err
		}
	}

	return nil
}
