package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Toast is a transient notification. Blocking toasts explain why a request
// was refused rather than how it ended.
type Toast struct {
	ID       string    `json:"id"`
	Level    Level     `json:"level"`
	Message  string    `json:"message"`
	Blocking bool      `json:"blocking,omitempty"`
	At       time.Time `json:"at"`
}

const toastCapacity = 5

// Toasts is a bounded queue, newest first. Pushing past capacity drops the
// oldest non-blocking toast; blocking toasts go only when nothing else is
// left to drop.
type Toasts struct {
	mu    sync.Mutex
	items []Toast
}

func (q *Toasts) Push(t Toast) Toast {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]Toast{t}, q.items...)
	for len(q.items) > toastCapacity {
		q.items = evictOldest(q.items)
	}
	return t
}

// evictOldest never drops items[0], the toast just pushed.
func evictOldest(items []Toast) []Toast {
	for i := len(items) - 1; i > 0; i-- {
		if !items[i].Blocking {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items[:len(items)-1]
}

func (q *Toasts) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.items))
	copy(out, q.items)
	return out
}

// Dismiss removes a toast and reports whether it was present.
func (q *Toasts) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
