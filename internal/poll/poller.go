package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/scheduler"
)

// Poller keeps every registered query fresh. Each query has its own loop, so
// a slow or failing endpoint never delays another panel.
type Poller struct {
	Registry     *Registry
	Cache        *Cache
	Backend      Getter
	Mode         func() domain.SystemMode
	Hub          *events.Hub
	Logger       *zap.Logger
	FetchTimeout time.Duration
	Now          func() time.Time

	kick chan struct{}
	once sync.Once
}

func New(reg *Registry, backend Getter, mode func() domain.SystemMode, hub *events.Hub, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == nil {
		mode = func() domain.SystemMode { return domain.ModeTest }
	}
	return &Poller{
		Registry: reg,
		Cache:    NewCache(),
		Backend:  backend,
		Mode:     mode,
		Hub:      hub,
		Logger:   logger,
	}
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *Poller) kickCh() chan struct{} {
	p.once.Do(func() { p.kick = make(chan struct{}, 1) })
	return p.kick
}

// Kick asks Run to refresh every query now, e.g. after a mode change.
// Kicks coalesce while a refresh is pending.
func (p *Poller) Kick() {
	select {
	case p.kickCh() <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled and returns once every loop has exited.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, q := range p.Registry.All() {
		q := q
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := p.Logger.With(zap.String("query", q.Key))
			scheduler.Every(ctx, q.Interval, "poll:"+q.Key, logger, func(ctx context.Context) error {
				return p.FetchOnce(ctx, q, p.Mode())
			})
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		kick := p.kickCh()
		for {
			select {
			case <-ctx.Done():
				return
			case <-kick:
				p.RefreshAll(ctx)
			}
		}
	}()

	p.Logger.Info("poller started", zap.Int("queries", len(p.Registry.All())))
	wg.Wait()
	p.Logger.Info("poller stopped")
}
