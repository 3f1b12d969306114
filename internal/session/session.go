package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"commandcenter/internal/wizard"
)

const CookieName = "cc_session"

type Session struct {
	ID     string
	Wizard *wizard.Wizard
	Toasts *Toasts

	mu       sync.Mutex
	overlay  Overlay
	lastSeen time.Time
}

func (s *Session) Overlay() Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Open replaces whatever overlay was showing.
func (s *Session) Open(o Overlay) {
	if o == nil {
		o = NoOverlay{}
	}
	s.mu.Lock()
	s.overlay = o
	s.mu.Unlock()
}

func (s *Session) Close() { s.Open(NoOverlay{}) }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager owns every live session.
type Manager struct {
	TTL       time.Duration
	NewWizard func() *wizard.Wizard
	Logger    *zap.Logger
	Now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(ttl time.Duration, newWizard func() *wizard.Wizard, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		TTL:       ttl,
		NewWizard: newWizard,
		Logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Get returns the session for id, creating a fresh one when id is empty or
// unknown. created reports whether a new id was minted.
func (m *Manager) Get(id string) (s *Session, created bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && id != "" {
		s.touch(now)
		return s, false
	}

	s = &Session{
		ID:       uuid.NewString(),
		Wizard:   m.NewWizard(),
		Toasts:   &Toasts{},
		overlay:  NoOverlay{},
		lastSeen: now,
	}
	m.sessions[s.ID] = s
	return s, true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SetTTL changes the idle timeout for future evictions.
func (m *Manager) SetTTL(ttl time.Duration) {
	m.mu.Lock()
	m.TTL = ttl
	m.mu.Unlock()
}

// Evict drops sessions idle for longer than TTL and returns how many went.
func (m *Manager) Evict() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.TTL)
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.Logger.Debug("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", len(m.sessions)))
	}
	return n
}
