package mode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/store"
)

func TestLoadDefaultsAndPersists(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	h, err := Load(ctx, db.Pool, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTest, h.Current())

	m, err := h.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeLive, m)

	reloaded, err := Load(ctx, db.Pool, nil, nil, domain.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeLive, reloaded.Current())
}

func TestLoadIgnoresGarbage(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, store.PutSetting(ctx, db.Pool, store.SettingSystemMode, "staging"))

	h, err := Load(ctx, db.Pool, nil, nil, domain.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTest, h.Current())
}

func TestSetNotifiesListenersAndHub(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	h, err := Load(context.Background(), nil, hub, nil, domain.ModeTest)
	require.NoError(t, err)

	var seen []domain.SystemMode
	h.OnChange(func(m domain.SystemMode) { seen = append(seen, m) })

	_, err = h.Set(context.Background(), domain.ModeLive)
	require.NoError(t, err)
	_, err = h.Set(context.Background(), domain.ModeLive)
	require.NoError(t, err)

	assert.Equal(t, []domain.SystemMode{domain.ModeLive}, seen, "no-op writes do not notify")
	assert.Len(t, sub, 1)

	_, err = h.Set(context.Background(), "staging")
	assert.Error(t, err)
	assert.Equal(t, domain.ModeLive, h.Current())
}
