package event

import (
	"context"
	"database/sql"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	return tx.Update().Create(event).Error
}

func (s *eventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("id > ?", fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByUser(ctx context.Context, userID string, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("user_id=?", userID).
		Order("id desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// MarkNotified stamp delivered events, helper of the notifier worker
func MarkNotified(tx *db.DB, events []*core.Event, at time.Time) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		e.NotifiedAt = sql.NullTime{Time: at, Valid: true}
	}

	return tx.Update().Model(core.Event{}).
		Where("id in (?)", ids).
		Update("notified_at", at).Error
}
