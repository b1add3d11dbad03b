//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/OHANAGROUP/nexfit/internal/domain"
)

func startRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("nexfit"),
		postgrescontainer.WithUsername("nexfit"),
		postgrescontainer.WithPassword("nexfit"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return NewRepository(pool)
}

func TestAlertStoreDedupAndTenantScoping(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	subjectID := uuid.NewString()
	day := time.Now().UTC().Truncate(24 * time.Hour)

	alert := domain.Alert{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		SubjectID:  subjectID,
		Kind:       domain.AlertMissedSession,
		Title:      "⚠️ Atleta Inactivo",
		Message:    "Atleta lleva más de 7 días sin completar una sesión. Revisá su plan.",
		Severity:   domain.SeverityWarning,
		DedupKey:   domain.DedupKey(subjectID, domain.AlertMissedSession, day),
		DetectedOn: day,
		Metadata:   map[string]any{"detected_at": day.Format(domain.DayFormat)},
	}

	inserted, err := repo.Insert(ctx, alert)
	require.NoError(t, err)
	require.True(t, inserted)

	exists, err := repo.Exists(ctx, alert.DedupKey)
	require.NoError(t, err)
	require.True(t, exists)

	duplicate := alert
	duplicate.ID = uuid.NewString()
	inserted, err = repo.Insert(ctx, duplicate)
	require.NoError(t, err)
	require.False(t, inserted, "dedup key constraint must suppress the second insert")

	alerts, err := repo.ListByTenant(ctx, tenantID, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, alert.DedupKey, alerts[0].DedupKey)
	require.Equal(t, day.Format(domain.DayFormat), alerts[0].Metadata["detected_at"])

	otherTenant, err := repo.ListByTenant(ctx, uuid.NewString(), 10)
	require.NoError(t, err)
	require.Empty(t, otherTenant)

	require.NoError(t, repo.MarkRead(ctx, tenantID, alert.ID))
	require.ErrorIs(t, repo.MarkRead(ctx, tenantID, uuid.NewString()), domain.ErrAlertNotFound)

	alerts, err = repo.ListByTenant(ctx, tenantID, 10)
	require.NoError(t, err)
	require.True(t, alerts[0].IsRead)
}

func TestDetectorSourcesReadFixtureRows(t *testing.T) {
	ctx := context.Background()
	repo := startRepository(t, ctx)

	tenantID := uuid.NewString()
	subjectID := uuid.NewString()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := repo.pool.Exec(ctx,
		"INSERT INTO profiles (user_id, tenant_id, full_name) VALUES ($1, $2, $3)",
		subjectID, tenantID, "María Garcia")
	require.NoError(t, err)

	_, err = repo.pool.Exec(ctx,
		"INSERT INTO training_schedule (tenant_id, user_id, scheduled_for, status) VALUES ($1, $2, $3, 'planned')",
		tenantID, subjectID, today.AddDate(0, 0, -9))
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		_, err = repo.pool.Exec(ctx,
			"INSERT INTO training_schedule (tenant_id, user_id, scheduled_for, status) VALUES ($1, $2, $3, 'done')",
			tenantID, subjectID, today.AddDate(0, 0, -i))
		require.NoError(t, err)
	}

	_, err = repo.pool.Exec(ctx,
		"INSERT INTO memberships (tenant_id, user_id, plan_name, monthly_price, ends_at, status) VALUES ($1, $2, 'Pro', 45000, $3, 'active')",
		tenantID, subjectID, today.AddDate(0, 0, 3))
	require.NoError(t, err)

	overdue, err := repo.OverduePlanned(ctx, today.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, subjectID, overdue[0].SubjectID)
	require.Equal(t, "María Garcia", overdue[0].FullName)

	dates, err := repo.RecentDoneDates(ctx, subjectID, 14)
	require.NoError(t, err)
	require.Len(t, dates, 7)
	require.True(t, dates[0].After(dates[len(dates)-1]), "dates must come newest first")
	require.Equal(t, 7, domain.StreakLength(dates))

	expiring, err := repo.ExpiringActive(ctx, today, today.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	require.Equal(t, "Pro", expiring[0].PlanName)

	athletes, err := repo.ActiveAthletes(ctx, 7)
	require.NoError(t, err)
	require.Len(t, athletes, 1)
	require.Equal(t, 7, athletes[0].SessionsDone)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
		"../../../db/postgres/migrations/0002_alerts.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
