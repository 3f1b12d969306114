package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"commandcenter/internal/domain"
)

// Run is one completed pass of the lead scraper wizard.
type Run struct {
	ID         string            `json:"id"`
	Tool       string            `json:"tool"`
	Mode       string            `json:"mode"`
	Filters    map[string]string `json:"filters"`
	Success    bool              `json:"success"`
	LeadCount  int               `json:"leadCount"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// InsertRun stores the run and its leads in one transaction.
func InsertRun(ctx context.Context, db *sql.DB, r Run, leads []domain.Lead) error {
	filtersB, _ := json.Marshal(r.Filters)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO scrape_runs(id, tool, mode, filters, success, lead_count, error, started_at, finished_at)
VALUES(?,?,?,?,?,?,?,?,?);`,
		r.ID, r.Tool, r.Mode, string(filtersB), boolInt(r.Success), r.LeadCount, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, l := range leads {
		var score sql.NullInt64
		if l.Score != nil {
			score = sql.NullInt64{Int64: int64(*l.Score), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scrape_leads(run_id, position, full_name, email, phone, company, title, location, score)
VALUES(?,?,?,?,?,?,?,?,?);`,
			r.ID, i, l.FullName, l.Email, l.Phone, l.Company, l.Title, l.Location, score,
		); err != nil {
			return fmt.Errorf("insert lead %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, tool, mode, filters, success, lead_count, error, started_at, finished_at
FROM scrape_runs
ORDER BY finished_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var r Run
		var filtersJSON, startedStr, finishedStr string
		var success int
		if err := rows.Scan(&r.ID, &r.Tool, &r.Mode, &filtersJSON, &success, &r.LeadCount, &r.Error, &startedStr, &finishedStr); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(filtersJSON), &r.Filters)
		r.Success = success != 0
		r.StartedAt, _ = time.Parse(time.RFC3339, startedStr)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finishedStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

func LeadsForRun(ctx context.Context, db *sql.DB, runID string) ([]domain.Lead, error) {
	rows, err := db.QueryContext(ctx, `
SELECT full_name, email, phone, company, title, location, score
FROM scrape_leads
WHERE run_id = ?
ORDER BY position ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		var l domain.Lead
		var score sql.NullInt64
		if err := rows.Scan(&l.FullName, &l.Email, &l.Phone, &l.Company, &l.Title, &l.Location, &score); err != nil {
			return nil, err
		}
		if score.Valid {
			s := int(score.Int64)
			l.Score = &s
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CleanupOldRuns deletes runs (and their leads) finished more than days ago.
func CleanupOldRuns(ctx context.Context, db *sql.DB, days int) (deleted int64, err error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	if _, err := db.ExecContext(ctx, `
DELETE FROM scrape_leads
WHERE run_id IN (SELECT id FROM scrape_runs WHERE finished_at < ?);`, cutoff); err != nil {
		return 0, fmt.Errorf("cleanup old leads: %w", err)
	}
	res, err := db.ExecContext(ctx, `DELETE FROM scrape_runs WHERE finished_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
