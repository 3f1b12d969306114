package poll

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"commandcenter/internal/domain"
	"commandcenter/internal/events"
)

// Getter is the read half of backend.Client.
type Getter interface {
	GetJSON(ctx context.Context, path string, mode domain.SystemMode) (json.RawMessage, error)
}

// FetchOnce refreshes one query under mode and records the outcome.
func (p *Poller) FetchOnce(ctx context.Context, q Query, mode domain.SystemMode) error {
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout(q))
	defer cancel()

	data, err := p.Backend.GetJSON(fctx, q.Path, mode)
	now := p.now()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e := p.Cache.StoreFailure(q.Key, mode, err, now)
		p.Hub.Emit("", events.TypeQueryRefreshed, map[string]any{
			"key": q.Key, "mode": mode, "ok": false, "stale": e.Stale, "error": e.LastError,
		})
		return err
	}

	p.Cache.StoreSuccess(q.Key, mode, data, now)
	p.Hub.Emit("", events.TypeQueryRefreshed, map[string]any{"key": q.Key, "mode": mode, "ok": true})
	return nil
}

// RefreshAll fetches every query concurrently under the current mode and
// reports how many failed. Failures are independent of each other.
func (p *Poller) RefreshAll(ctx context.Context) (failed int) {
	mode := p.Mode()
	results := make(chan error, len(p.Registry.All()))

	var g errgroup.Group
	for _, q := range p.Registry.All() {
		q := q
		g.Go(func() error {
			results <- p.FetchOnce(ctx, q, mode)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for err := range results {
		if err != nil {
			failed++
		}
	}
	p.Logger.Info("refreshed all queries",
		zap.String("mode", string(mode)),
		zap.Int("queries", len(p.Registry.All())),
		zap.Int("failed", failed),
	)
	return failed
}

func (p *Poller) fetchTimeout(q Query) time.Duration {
	t := p.FetchTimeout
	if t <= 0 {
		t = 20 * time.Second
	}
	if q.Interval > 0 && q.Interval < t {
		t = q.Interval
	}
	return t
}
