package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ActionRecord is one audit row for a dispatched (or refused) action.
type ActionRecord struct {
	ID         int64     `json:"id"`
	ActionID   string    `json:"actionId"`
	Mode       string    `json:"mode"`
	Outcome    string    `json:"outcome"`
	HTTPStatus int       `json:"httpStatus"`
	Message    string    `json:"message"`
	RequestID  string    `json:"requestId,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	At         time.Time `json:"at"`
}

func InsertActionRecord(ctx context.Context, db *sql.DB, rec ActionRecord) (int64, error) {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	res, err := db.ExecContext(ctx, `
INSERT INTO action_log(action_id, mode, outcome, http_status, message, request_id, session_id, at)
VALUES(?,?,?,?,?,?,?,?);`,
		rec.ActionID, rec.Mode, rec.Outcome, rec.HTTPStatus, rec.Message, rec.RequestID, rec.SessionID,
		rec.At.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert action record: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// ListActionRecords returns the newest records first. An empty actionID
// matches every action.
func ListActionRecords(ctx context.Context, db *sql.DB, actionID string, limit int) ([]ActionRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, action_id, mode, outcome, http_status, message, request_id, session_id, at
FROM action_log
WHERE (? = '' OR action_id = ?)
ORDER BY id DESC
LIMIT ?;`, actionID, actionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActionRecord{}
	for rows.Next() {
		var r ActionRecord
		var at string
		if err := rows.Scan(&r.ID, &r.ActionID, &r.Mode, &r.Outcome, &r.HTTPStatus, &r.Message, &r.RequestID, &r.SessionID, &at); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

func CleanupOldActionRecords(ctx context.Context, db *sql.DB, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM action_log WHERE at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup action log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
