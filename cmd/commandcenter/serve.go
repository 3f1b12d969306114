package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"commandcenter/internal/action"
	"commandcenter/internal/backend"
	"commandcenter/internal/config"
	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/httpapi"
	"commandcenter/internal/knowledge"
	"commandcenter/internal/mode"
	"commandcenter/internal/poll"
	"commandcenter/internal/rank"
	"commandcenter/internal/scheduler"
	"commandcenter/internal/scrape"
	"commandcenter/internal/secrets"
	"commandcenter/internal/session"
	"commandcenter/internal/store"
	"commandcenter/internal/wizard"
)

const envShutdownToken = "COMMANDCENTER_SHUTDOWN_TOKEN"

var (
	listenFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine and dashboard",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "listen address (default 127.0.0.1:<app.port>)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	undo, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))
	defer undo()
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	cfg, cfgPath, vr, err := loadConfig()
	if err != nil {
		return err
	}
	for _, w := range vr.Warnings {
		logger.Warn("config warning", zap.String("warning", w))
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			logger.Error("config error", zap.String("error", e))
		}
		return fmt.Errorf("config %s is invalid (%d errors)", cfgPath, len(vr.Errors))
	}

	lock := flock.New(filepath.Join(dataDir(), "commandcenter.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another commandcenter is already running on %s", dataDir())
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, cfgPath, logger)
	if err != nil {
		return err
	}
	defer app.db.Close()

	addr := listenFlag
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := httpapi.NewMux(app.deps)
	if tok := os.Getenv(envShutdownToken); tok != "" {
		mux.HandleFunc("/shutdown", shutdownHandler(tok, stop))
	}
	srv := &http.Server{
		Handler:           httpapi.Handler(mux, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("engine listening",
		zap.String("url", "http://"+ln.Addr().String()),
		zap.String("db", dbPath(cfg)),
		zap.String("config", cfgPath),
		zap.String("mode", string(app.mode.Current())),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		app.poller.Run(gctx)
		return nil
	})
	g.Go(func() error {
		scheduler.Every(gctx, 5*time.Minute, "session-evict", logger, func(context.Context) error {
			app.sessions.Evict()
			return nil
		})
		return nil
	})
	g.Go(func() error {
		scheduler.Every(gctx, 24*time.Hour, "retention", logger, func(ctx context.Context) error {
			return app.cleanup(ctx)
		})
		return nil
	})

	err = g.Wait()
	logger.Info("engine stopped")
	return err
}

type app struct {
	db       *store.DB
	cfgVal   *atomic.Value
	mode     *mode.Holder
	poller   *poll.Poller
	sessions *session.Manager
	deps     httpapi.Deps
	logger   *zap.Logger
}

func buildApp(ctx context.Context, cfg config.Config, cfgPath string, logger *zap.Logger) (*app, error) {
	db, err := store.Open(dbPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	var cfgVal atomic.Value
	cfgVal.Store(cfg)
	current := func() config.Config { return cfgVal.Load().(config.Config) }

	hub := events.NewHub()

	defMode, err := domain.ParseSystemMode(cfg.App.DefaultMode)
	if err != nil {
		defMode = domain.ModeTest
	}
	holder, err := mode.Load(ctx, db.Pool, hub, logger.Named("mode"), defMode)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	client := backend.New(backend.Options{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.BackendTimeout(),
		RatePerSecond: cfg.Backend.RatePerSecond,
		Burst:         cfg.Backend.Burst,
		APIKey:        apiKeySource(current, logger),
		Logger:        logger.Named("backend"),
	})

	reg, err := poll.NewRegistry(cfg.Polling.Queries)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	poller := poll.New(reg, client, holder.Current, hub, logger.Named("poll"))
	holder.OnChange(func(domain.SystemMode) { poller.Kick() })

	scraper := scrape.Recorder{
		Next:   scrape.BackendScraper{Backend: client, Scorer: liveScorer{current}},
		DB:     db.Pool,
		Hub:    hub,
		Mode:   holder.Current,
		Logger: logger.Named("scrape"),
	}
	sessions := session.NewManager(cfg.SessionTTL(), func() *wizard.Wizard { return wizard.New(scraper) }, logger.Named("session"))

	dispatcher := action.NewDispatcher(action.DefaultCatalog(), client, holder.Current, db.Pool, hub, logger.Named("action"))
	ingestor := knowledge.NewIngestor(logger.Named("knowledge"))
	dispatcher.Builders["knowledge-upload-url"] = ingestor.Payload

	a := &app{
		db:       db,
		cfgVal:   &cfgVal,
		mode:     holder,
		poller:   poller,
		sessions: sessions,
		logger:   logger,
	}
	a.deps = httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Logger:      logger,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return readConfig(cfgPath) },
		OnConfigReload: func(next config.Config) {
			sessions.SetTTL(next.SessionTTL())
			logger.Info("config applied; polling and backend changes take effect on restart")
		},
		Mode:       holder,
		Poller:     poller,
		Dispatcher: dispatcher,
		Sessions:   sessions,
	}
	return a, nil
}

func (a *app) cleanup(ctx context.Context) error {
	cfg := a.cfgVal.Load().(config.Config)
	runs, err := store.CleanupOldRuns(ctx, a.db.Pool, cfg.Retention.RunsDays)
	if err != nil {
		return err
	}
	recs, err := store.CleanupOldActionRecords(ctx, a.db.Pool, cfg.Retention.AuditDays)
	if err != nil {
		return err
	}
	if runs > 0 || recs > 0 {
		a.logger.Info("retention cleanup", zap.Int64("runs", runs), zap.Int64("audit_records", recs))
	}
	return nil
}

// liveScorer scores with whatever scoring rules are configured right now.
type liveScorer struct {
	cfg func() config.Config
}

func (s liveScorer) Score(l domain.Lead) (int, []string) {
	return rank.YAMLScorer{Cfg: s.cfg()}.Score(l)
}

// apiKeySource reads the backend key from the keychain (or env) and caches
// it briefly so polling does not hit the keychain on every request.
func apiKeySource(cfg func() config.Config, logger *zap.Logger) func() string {
	type cached struct {
		key string
		at  time.Time
	}
	var last atomic.Pointer[cached]
	return func() string {
		if c := last.Load(); c != nil && time.Since(c.at) < time.Minute {
			return c.key
		}
		key, err := secrets.GetBackendAPIKey(cfg().Backend.KeyringAccount, os.LookupEnv)
		if err != nil && !errors.Is(err, secrets.ErrNoAPIKey) {
			logger.Warn("backend API key lookup failed", zap.Error(err))
		}
		last.Store(&cached{key: key, at: time.Now()})
		return key
	}
}
