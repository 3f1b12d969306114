package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandcenter/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, schemaVersion, v)
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v, err := GetSetting(ctx, db.Pool, SettingSystemMode)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, PutSetting(ctx, db.Pool, SettingSystemMode, "live"))
	require.NoError(t, PutSetting(ctx, db.Pool, SettingSystemMode, "test"))

	v, err = GetSetting(ctx, db.Pool, SettingSystemMode)
	require.NoError(t, err)
	assert.Equal(t, "test", v)
}

func TestRunsAndLeads(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	score := 72
	now := time.Now().UTC().Truncate(time.Second)
	run := Run{
		ID:         "run-1",
		Tool:       "apollo",
		Mode:       "test",
		Filters:    map[string]string{"personTitles": "ceo"},
		Success:    true,
		LeadCount:  2,
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
	}
	leads := []domain.Lead{
		{FullName: "Jane Doe", Title: "CEO", Company: "Acme", Score: &score},
		{FullName: "John Roe", Title: "CTO", Company: "Beta"},
	}
	require.NoError(t, InsertRun(ctx, db.Pool, run, leads))

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "apollo", runs[0].Tool)
	assert.True(t, runs[0].Success)
	assert.Equal(t, map[string]string{"personTitles": "ceo"}, runs[0].Filters)
	assert.Equal(t, now, runs[0].FinishedAt)

	got, err := LeadsForRun(ctx, db.Pool, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].FullName)
	require.NotNil(t, got[0].Score)
	assert.Equal(t, 72, *got[0].Score)
	assert.Nil(t, got[1].Score)
}

func TestCleanupOldRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -100)
	require.NoError(t, InsertRun(ctx, db.Pool, Run{ID: "old", Tool: "apify", StartedAt: old, FinishedAt: old}, []domain.Lead{{FullName: "x"}}))
	require.NoError(t, InsertRun(ctx, db.Pool, Run{ID: "new", Tool: "apify", StartedAt: time.Now(), FinishedAt: time.Now()}, nil))

	n, err := CleanupOldRuns(ctx, db.Pool, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	leads, err := LeadsForRun(ctx, db.Pool, "old")
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestActionRecords(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertActionRecord(ctx, db.Pool, ActionRecord{ActionID: "emergency-stop", Mode: "live", Outcome: "success", HTTPStatus: 200})
	require.NoError(t, err)
	_, err = InsertActionRecord(ctx, db.Pool, ActionRecord{ActionID: "purge-knowledge", Mode: "test", Outcome: "blocked", Message: "live mode required"})
	require.NoError(t, err)

	all, err := ListActionRecords(ctx, db.Pool, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "purge-knowledge", all[0].ActionID)

	only, err := ListActionRecords(ctx, db.Pool, "emergency-stop", 10)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, 200, only[0].HTTPStatus)
}
