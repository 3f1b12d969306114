package action

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"commandcenter/internal/backend"
	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/session"
	"commandcenter/internal/store"
)

// Poster is the write half of backend.Client.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any) (backend.Result, error)
}

// PayloadBuilder replaces the static payload of an action with one derived
// from the submitted form.
type PayloadBuilder func(ctx context.Context, form map[string]string) (map[string]any, error)

type Request struct {
	Confirmed bool
	Typed     string
	Form      map[string]string
	RequestID string
	SessionID string
}

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeBlocked  = "blocked"
	OutcomeRejected = "rejected"
)

// Outcome is what the user sees after a dispatch. Sent reports whether a
// backend call was made.
type Outcome struct {
	ActionID string        `json:"actionId"`
	Outcome  string        `json:"outcome"`
	Sent     bool          `json:"sent"`
	Status   int           `json:"status,omitempty"`
	Toast    session.Toast `json:"toast"`
}

const fallbackFailure = "Something went wrong. Please try again."

type Dispatcher struct {
	Catalog  *Catalog
	Backend  Poster
	Mode     func() domain.SystemMode
	DB       *sql.DB
	Hub      *events.Hub
	Logger   *zap.Logger
	Builders map[string]PayloadBuilder

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewDispatcher(c *Catalog, backend Poster, mode func() domain.SystemMode, db *sql.DB, hub *events.Hub, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		Catalog:  c,
		Backend:  backend,
		Mode:     mode,
		DB:       db,
		Hub:      hub,
		Logger:   logger,
		Builders: map[string]PayloadBuilder{},
		inflight: map[string]struct{}{},
	}
}

// InFlight lists the ids of actions currently waiting on the backend.
func (d *Dispatcher) InFlight() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.inflight))
	for id := range d.inflight {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (d *Dispatcher) IsInFlight(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inflight[id]
	return ok
}

func (d *Dispatcher) acquire(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inflight == nil {
		d.inflight = map[string]struct{}{}
	}
	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id string) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}

func (d *Dispatcher) mode() domain.SystemMode {
	if d.Mode == nil {
		return domain.ModeTest
	}
	return d.Mode().Normalize()
}

// Dispatch runs one action. Refusals and backend failures come back as an
// Outcome carrying a toast; the error is reserved for unknown ids and
// duplicate in-flight requests.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, req Request) (Outcome, error) {
	a, ok := d.Catalog.Lookup(id)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	mode := d.mode()
	logger := d.Logger.With(zap.String("action", id), zap.String("mode", string(mode)), zap.String("request_id", req.RequestID))

	if a.RequireLive && !mode.IsLive() {
		out := refuse(a, OutcomeBlocked, session.LevelWarning,
			fmt.Sprintf("%s is only available in live mode. Switch the system to live and try again.", a.Label))
		out.Toast.Blocking = true
		d.finish(ctx, logger, a, mode, req, out)
		return out, nil
	}

	switch a.Guard {
	case GuardConfirm:
		if !req.Confirmed {
			out := refuse(a, OutcomeRejected, session.LevelWarning, a.Label+" needs confirmation.")
			d.finish(ctx, logger, a, mode, req, out)
			return out, nil
		}
	case GuardTypedDelete:
		if strings.TrimSpace(strings.ToLower(req.Typed)) != TypedDeleteWord {
			out := refuse(a, OutcomeRejected, session.LevelWarning, fmt.Sprintf("Type %q to confirm %s.", TypedDeleteWord, a.Label))
			d.finish(ctx, logger, a, mode, req, out)
			return out, nil
		}
	}

	if missing := a.missingFields(req.Form); len(missing) > 0 {
		out := refuse(a, OutcomeRejected, session.LevelError, "Please fill in: "+strings.Join(missing, ", "))
		d.finish(ctx, logger, a, mode, req, out)
		return out, nil
	}

	if !d.acquire(a.ID) {
		out := refuse(a, OutcomeRejected, session.LevelWarning, a.Label+" is already running.")
		return out, ErrInFlight
	}
	defer d.release(a.ID)

	payload, err := d.payload(ctx, a, req.Form, mode)
	if err != nil {
		out := refuse(a, OutcomeFailure, session.LevelError, err.Error())
		d.finish(ctx, logger, a, mode, req, out)
		return out, nil
	}

	d.Hub.Emit(req.RequestID, events.TypeActionStarted, map[string]any{"action": a.ID, "mode": mode})

	res, err := d.Backend.PostJSON(ctx, a.Endpoint, payload)
	out := Outcome{ActionID: a.ID, Sent: true, Status: res.Status}
	if err != nil {
		out.Outcome = OutcomeFailure
		out.Toast = session.Toast{Level: session.LevelError, Message: failureText(err)}
	} else {
		msg := res.Message
		if msg == "" {
			msg = a.successText()
		}
		out.Outcome = OutcomeSuccess
		out.Toast = session.Toast{Level: session.LevelSuccess, Message: msg}
	}
	d.finish(ctx, logger, a, mode, req, out)
	return out, nil
}

func (d *Dispatcher) payload(ctx context.Context, a Action, form map[string]string, mode domain.SystemMode) (map[string]any, error) {
	payload := make(map[string]any, len(a.Payload)+len(form)+1)
	if b, ok := d.Builders[a.ID]; ok {
		built, err := b(ctx, form)
		if err != nil {
			return nil, err
		}
		for k, v := range built {
			payload[k] = v
		}
	} else {
		for k, v := range a.Payload {
			payload[k] = v
		}
		for k, v := range form {
			if v != "" {
				payload[k] = v
			}
		}
	}
	payload["mode"] = mode
	return payload, nil
}

func refuse(a Action, outcome string, level session.Level, msg string) Outcome {
	return Outcome{
		ActionID: a.ID,
		Outcome:  outcome,
		Toast:    session.Toast{Level: level, Message: msg},
	}
}

func failureText(err error) string {
	var f *backend.Failure
	if errors.As(err, &f) {
		if s := f.Error(); s != "" {
			return s
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Request cancelled before the backend replied."
	}
	return fallbackFailure
}

func (d *Dispatcher) finish(ctx context.Context, logger *zap.Logger, a Action, mode domain.SystemMode, req Request, out Outcome) {
	logger.Info("action dispatched",
		zap.String("outcome", out.Outcome),
		zap.Bool("sent", out.Sent),
		zap.Int("status", out.Status),
	)

	if d.DB != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		_, err := store.InsertActionRecord(actx, d.DB, store.ActionRecord{
			ActionID:   a.ID,
			Mode:       string(mode),
			Outcome:    out.Outcome,
			HTTPStatus: out.Status,
			Message:    out.Toast.Message,
			RequestID:  req.RequestID,
			SessionID:  req.SessionID,
		})
		cancel()
		if err != nil {
			logger.Warn("audit write failed", zap.Error(err))
		}
	}

	d.Hub.Emit(req.RequestID, events.TypeActionCompleted, map[string]any{
		"action":  a.ID,
		"outcome": out.Outcome,
		"sent":    out.Sent,
		"mode":    mode,
	})
}
