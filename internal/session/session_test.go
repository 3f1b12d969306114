package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandcenter/internal/domain"
	"commandcenter/internal/wizard"
)

type nopScraper struct{}

func (nopScraper) Scrape(context.Context, domain.Tool, map[string]string) (domain.ScrapingResult, error) {
	return domain.ScrapingResult{Success: true}, nil
}

func newWizard() *wizard.Wizard { return wizard.New(nopScraper{}) }

func TestToastsNewestFirstBounded(t *testing.T) {
	var q Toasts
	for i := 0; i < 7; i++ {
		q.Push(Toast{Level: LevelSuccess, Message: string(rune('a' + i))})
	}
	list := q.List()
	require.Len(t, list, 5)
	assert.Equal(t, "g", list[0].Message)
	assert.Equal(t, "c", list[4].Message)
	assert.NotEmpty(t, list[0].ID)
}

func TestToastsKeepBlockingWhenFull(t *testing.T) {
	var q Toasts
	q.Push(Toast{Level: LevelWarning, Message: "blocked", Blocking: true})
	for i := 0; i < 6; i++ {
		q.Push(Toast{Level: LevelSuccess, Message: string(rune('a' + i))})
	}
	list := q.List()
	require.Len(t, list, 5)
	assert.Equal(t, "f", list[0].Message)
	assert.Equal(t, "blocked", list[4].Message)
	assert.True(t, list[4].Blocking)

	// all blocking: the oldest one goes, the newest push always stays
	var all Toasts
	for i := 0; i < 5; i++ {
		all.Push(Toast{Message: string(rune('a' + i)), Blocking: true})
	}
	all.Push(Toast{Message: "new"})
	list = all.List()
	require.Len(t, list, 5)
	assert.Equal(t, "new", list[0].Message)
	assert.Equal(t, "b", list[4].Message)
}

func TestToastsDismiss(t *testing.T) {
	var q Toasts
	a := q.Push(Toast{Message: "a"})
	q.Push(Toast{Message: "b"})

	assert.True(t, q.Dismiss(a.ID))
	assert.False(t, q.Dismiss(a.ID))
	require.Len(t, q.List(), 1)
	assert.Equal(t, "b", q.List()[0].Message)
}

func TestOverlayIsExclusive(t *testing.T) {
	m := NewManager(time.Hour, newWizard, nil)
	s, created := m.Get("")
	require.True(t, created)

	assert.Equal(t, OverlayView{Kind: "none"}, ViewOf(s.Overlay()))

	s.Open(ActionModal{ActionID: "voice-generate"})
	s.Open(ActionModal{ActionID: "support-ticket"})
	assert.Equal(t, OverlayView{Kind: "action", ActionID: "support-ticket"}, ViewOf(s.Overlay()))

	s.Close()
	assert.IsType(t, NoOverlay{}, s.Overlay())
}

func TestManagerReusesAndEvicts(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(30*time.Minute, newWizard, nil)
	m.Now = func() time.Time { return now }

	a, _ := m.Get("")
	b, _ := m.Get("")
	assert.NotEqual(t, a.ID, b.ID)

	got, created := m.Get(a.ID)
	assert.False(t, created)
	assert.Same(t, a, got)

	_, created = m.Get("not-a-session")
	assert.True(t, created)
	assert.Equal(t, 3, m.Len())

	now = now.Add(20 * time.Minute)
	m.Get(a.ID)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 2, m.Evict())
	assert.Equal(t, 1, m.Len())
	got, created = m.Get(a.ID)
	assert.False(t, created)
	assert.Same(t, a, got)
}

func TestSessionsHaveIndependentWizards(t *testing.T) {
	m := NewManager(time.Hour, newWizard, nil)
	a, _ := m.Get("")
	b, _ := m.Get("")

	require.NoError(t, a.Wizard.SelectTool(domain.ToolApollo))
	assert.Equal(t, wizard.StepFilters, a.Wizard.Snapshot().Step)
	assert.Equal(t, wizard.StepToolSelection, b.Wizard.Snapshot().Step)
}
