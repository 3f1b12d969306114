package mode

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/store"
)

// Holder owns the process-wide system mode. It has a single writer path
// (Set/Toggle) and any number of readers.
type Holder struct {
	mu        sync.RWMutex
	current   domain.SystemMode
	db        *sql.DB
	hub       *events.Hub
	logger    *zap.Logger
	listeners []func(domain.SystemMode)
}

// Load restores the persisted mode, falling back to def when nothing (or
// garbage) is stored.
func Load(ctx context.Context, db *sql.DB, hub *events.Hub, logger *zap.Logger, def domain.SystemMode) (*Holder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Holder{current: def.Normalize(), db: db, hub: hub, logger: logger}
	if db == nil {
		return h, nil
	}

	raw, err := store.GetSetting(ctx, db, store.SettingSystemMode)
	if err != nil {
		return nil, fmt.Errorf("load system mode: %w", err)
	}
	if raw == "" {
		return h, nil
	}
	m, err := domain.ParseSystemMode(raw)
	if err != nil {
		logger.Warn("ignoring stored system mode", zap.String("value", raw), zap.Error(err))
		return h, nil
	}
	h.current = m
	return h, nil
}

func (h *Holder) Current() domain.SystemMode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnChange registers fn to run after every successful mode change.
func (h *Holder) OnChange(fn func(domain.SystemMode)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *Holder) Set(ctx context.Context, m domain.SystemMode) (domain.SystemMode, error) {
	m, err := domain.ParseSystemMode(string(m))
	if err != nil {
		return h.Current(), err
	}

	h.mu.Lock()
	prev := h.current
	if prev == m {
		h.mu.Unlock()
		return m, nil
	}
	if h.db != nil {
		if err := store.PutSetting(ctx, h.db, store.SettingSystemMode, string(m)); err != nil {
			h.mu.Unlock()
			return prev, fmt.Errorf("persist system mode: %w", err)
		}
	}
	h.current = m
	listeners := append(([]func(domain.SystemMode))(nil), h.listeners...)
	h.mu.Unlock()

	h.logger.Info("system mode changed", zap.String("from", string(prev)), zap.String("to", string(m)))
	h.hub.Emit("", events.TypeModeChanged, map[string]string{"mode": string(m), "previous": string(prev)})
	for _, fn := range listeners {
		fn(m)
	}
	return m, nil
}

func (h *Holder) Toggle(ctx context.Context) (domain.SystemMode, error) {
	return h.Set(ctx, h.Current().Other())
}
