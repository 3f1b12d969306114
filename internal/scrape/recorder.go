package scrape

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"commandcenter/internal/domain"
	"commandcenter/internal/events"
	"commandcenter/internal/store"
)

// Recorder wraps a Scraper and keeps a history of every run. Recording
// problems are logged and never change the scrape outcome.
type Recorder struct {
	Next   Scraper
	DB     *sql.DB
	Hub    *events.Hub
	Mode   func() domain.SystemMode
	Logger *zap.Logger
	Now    func() time.Time
}

func (r Recorder) Scrape(ctx context.Context, tool domain.Tool, filters map[string]string) (domain.ScrapingResult, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	started := now()

	res, err := r.Next.Scrape(ctx, tool, filters)

	run := store.Run{
		ID:         uuid.NewString(),
		Tool:       string(tool),
		Mode:       string(domain.ModeTest),
		Filters:    domain.RedactFilters(filters),
		Success:    err == nil,
		LeadCount:  res.Count,
		StartedAt:  started,
		FinishedAt: now(),
	}
	if r.Mode != nil {
		run.Mode = string(r.Mode().Normalize())
	}
	if err != nil {
		run.Error = err.Error()
	}

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("scrape finished",
		zap.String("run_id", run.ID),
		zap.String("tool", run.Tool),
		zap.Bool("success", run.Success),
		zap.Int("leads", run.LeadCount),
		zap.Duration("took", run.FinishedAt.Sub(started)),
		zap.String("error", run.Error),
	)

	if r.DB != nil && !errors.Is(err, context.Canceled) {
		// detached so a closed request does not drop the history row
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if ierr := store.InsertRun(sctx, r.DB, run, res.Leads); ierr != nil {
			logger.Error("record scrape run", zap.String("run_id", run.ID), zap.Error(ierr))
		}
		cancel()
	}

	r.Hub.Emit("", events.TypeScrapeCompleted, map[string]any{
		"runId":   run.ID,
		"tool":    run.Tool,
		"success": run.Success,
		"count":   run.LeadCount,
	})

	return res, err
}
