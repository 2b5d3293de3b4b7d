package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/event-planner/gateway/internal/models"
)

type registryEntry struct {
	controller *Controller
	touched    time.Time
}

// Registry хранит контроллеры открытых сессий в памяти процесса.
// Сессии без обращений дольше idleTTL закрываются при очистке.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*registryEntry
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRegistry создает пустой реестр сессий. idleTTL <= 0 отключает вытеснение по простою.
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*registryEntry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Add регистрирует контроллер под идентификатором его сессии.
func (r *Registry) Add(controller *Controller) {
	id := controller.Session().ID

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &registryEntry{controller: controller, touched: r.now()}
}

// Get возвращает контроллер сессии, принадлежащей пользователю, и отмечает обращение.
func (r *Registry) Get(userID, sessionID uuid.UUID) (*Controller, error) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	if ok {
		entry.touched = r.now()
	}
	r.mu.Unlock()

	if !ok || entry.controller.Session().UserID != userID {
		return nil, ErrSessionNotFound
	}

	return entry.controller, nil
}

// Remove закрывает сессию пользователя и удаляет ее из реестра.
func (r *Registry) Remove(userID, sessionID uuid.UUID) error {
	controller, err := r.Get(userID, sessionID)
	if err != nil {
		return err
	}

	if err := controller.Close(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// Len возвращает число открытых сессий.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Sweep удаляет закрытые сессии и закрывает простаивающие.
// Сессия с операцией в полете пропускается. Возвращает число удаленных.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.sessions {
		closed := entry.controller.Session().State == models.SessionStateClosed
		idle := r.idleTTL > 0 && now.Sub(entry.touched) > r.idleTTL
		if !closed && !idle {
			continue
		}

		if !closed && entry.controller.Close() != nil {
			continue
		}

		delete(r.sessions, id)
		removed++
	}

	return removed
}

// Run периодически вызывает Sweep, пока ctx не отменен.
func (r *Registry) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				logger.Info("planner sessions evicted", slog.Int("removed", removed), slog.Int("open", r.Len()))
			}
		}
	}
}
