package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"example.com/event-planner/gateway/internal/models"
)

// Adapter пишет и читает резервные снапшоты прогресса планировщика.
// Ошибки хранилища никогда не возвращаются вызывающему коду.
type Adapter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewAdapter создает адаптер локального хранилища.
func NewAdapter(store Store, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SaveLocalSnapshot сериализует снапшот и сохраняет его под ключом события.
func (a *Adapter) SaveLocalSnapshot(ctx context.Context, eventID string, snapshot models.LocalPlanSnapshot) {
	key := Key(eventID)

	snapshot.EventID = eventID
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = a.now()
	}
	if snapshot.SelectedServices == nil {
		snapshot.SelectedServices = map[string]string{}
	}
	if snapshot.CompletedSteps == nil {
		snapshot.CompletedSteps = []int{}
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		a.warn(ctx, &LocalPersistenceError{Op: "encode", Key: key, Err: err})
		return
	}

	if err := a.store.Put(ctx, key, payload); err != nil {
		a.warn(ctx, &LocalPersistenceError{Op: "write", Key: key, Err: err})
	}
}

// LoadLocalSnapshot возвращает сохраненный снапшот или false, если его нет.
func (a *Adapter) LoadLocalSnapshot(ctx context.Context, eventID string) (models.LocalPlanSnapshot, bool) {
	key := Key(eventID)

	payload, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.warn(ctx, &LocalPersistenceError{Op: "read", Key: key, Err: err})
		}
		return models.LocalPlanSnapshot{}, false
	}

	var snapshot models.LocalPlanSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		a.warn(ctx, &LocalPersistenceError{Op: "decode", Key: key, Err: err})
		return models.LocalPlanSnapshot{}, false
	}

	if snapshot.SelectedServices == nil {
		snapshot.SelectedServices = map[string]string{}
	}

	return snapshot, true
}

// DeleteLocalSnapshot удаляет снапшот события.
func (a *Adapter) DeleteLocalSnapshot(ctx context.Context, eventID string) {
	key := Key(eventID)
	if err := a.store.Delete(ctx, key); err != nil {
		a.warn(ctx, &LocalPersistenceError{Op: "delete", Key: key, Err: err})
	}
}

func (a *Adapter) warn(ctx context.Context, err *LocalPersistenceError) {
	a.logger.LogAttrs(ctx, slog.LevelWarn, "local snapshot failure",
		slog.String("op", err.Op),
		slog.String("key", err.Key),
		slog.String("error", err.Err.Error()),
	)
}
