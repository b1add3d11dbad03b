// Package postgres provides pgx-backed persistence for alerts and the
// analytics reads behind the snapshot builder and the detector.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OHANAGROUP/nexfit/internal/domain"
	"github.com/OHANAGROUP/nexfit/internal/snapshot"
)

// Repository provides Postgres-backed reads and alert writes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// withTenantTx runs fn inside a transaction with the tenant set for RLS.
func (r *Repository) withTenantTx(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ─── detector sources ───
// The detector runs with the service role across all tenants, so these scans
// are not tenant-scoped.

// OverduePlanned returns planned sessions scheduled before the cutoff, most
// recent first, joined with the owning profile.
func (r *Repository) OverduePlanned(ctx context.Context, before time.Time) ([]domain.ScheduleEntry, error) {
	const query = `SELECT ts.user_id, ts.tenant_id, p.full_name, ts.scheduled_for, ts.status
        FROM training_schedule ts
        JOIN profiles p ON p.user_id = ts.user_id
        WHERE ts.status = 'planned' AND ts.scheduled_for < $1
        ORDER BY ts.scheduled_for DESC`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduleEntry
	for rows.Next() {
		var entry domain.ScheduleEntry
		if err := rows.Scan(&entry.SubjectID, &entry.TenantID, &entry.FullName, &entry.ScheduledFor, &entry.Status); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// RecentDoneDates returns the subject's completed-session dates, newest first.
func (r *Repository) RecentDoneDates(ctx context.Context, subjectID string, limit int) ([]time.Time, error) {
	const query = `SELECT scheduled_for FROM training_schedule
        WHERE user_id = $1 AND status = 'done'
        ORDER BY scheduled_for DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var when time.Time
		if err := rows.Scan(&when); err != nil {
			return nil, err
		}
		out = append(out, when)
	}
	return out, rows.Err()
}

// ExpiringActive returns active memberships ending inside [from, to].
func (r *Repository) ExpiringActive(ctx context.Context, from, to time.Time) ([]domain.MembershipRecord, error) {
	const query = `SELECT m.user_id, m.tenant_id, p.full_name, m.plan_name, m.ends_at, m.status
        FROM memberships m
        JOIN profiles p ON p.user_id = m.user_id
        WHERE m.status = 'active' AND m.ends_at >= $1 AND m.ends_at <= $2`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MembershipRecord
	for rows.Next() {
		var memb domain.MembershipRecord
		if err := rows.Scan(&memb.SubjectID, &memb.TenantID, &memb.FullName, &memb.PlanName, &memb.EndsAt, &memb.Status); err != nil {
			return nil, err
		}
		out = append(out, memb)
	}
	return out, rows.Err()
}

// ActiveAthletes returns subjects with at least minSessions completed sessions.
func (r *Repository) ActiveAthletes(ctx context.Context, minSessions int) ([]domain.AthleteRecord, error) {
	const query = `SELECT ts.user_id, ts.tenant_id, p.full_name, COUNT(*) AS sessions_done
        FROM training_schedule ts
        JOIN profiles p ON p.user_id = ts.user_id
        WHERE ts.status = 'done'
        GROUP BY ts.user_id, ts.tenant_id, p.full_name
        HAVING COUNT(*) >= $1`

	rows, err := r.pool.Query(ctx, query, minSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AthleteRecord
	for rows.Next() {
		var athlete domain.AthleteRecord
		if err := rows.Scan(&athlete.SubjectID, &athlete.TenantID, &athlete.FullName, &athlete.SessionsDone); err != nil {
			return nil, err
		}
		out = append(out, athlete)
	}
	return out, rows.Err()
}

// ─── alert store ───

// Exists reports whether an alert with the dedup key is already stored.
func (r *Repository) Exists(ctx context.Context, dedupKey string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM alerts WHERE dedup_key = $1)", dedupKey).Scan(&exists)
	return exists, err
}

// Insert persists an alert. The unique index on dedup_key is the correctness
// backstop for concurrent runs; a suppressed insert returns false, nil.
func (r *Repository) Insert(ctx context.Context, alert domain.Alert) (bool, error) {
	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return false, err
	}

	const stmt = `INSERT INTO alerts
        (alert_id, tenant_id, user_id, kind, title, message, severity, is_read, dedup_key, detected_on, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (dedup_key) DO NOTHING`

	tag, err := r.pool.Exec(ctx, stmt,
		alert.ID,
		alert.TenantID,
		alert.SubjectID,
		alert.Kind,
		alert.Title,
		alert.Message,
		alert.Severity,
		alert.IsRead,
		alert.DedupKey,
		alert.DetectedOn,
		metadata,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByTenant returns the tenant's alerts, unread first, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.Alert, error) {
	const query = `SELECT alert_id, tenant_id, user_id, kind, title, message, severity, is_read, dedup_key, detected_on, metadata, created_at
        FROM alerts WHERE tenant_id = $1
        ORDER BY is_read ASC, created_at DESC
        LIMIT $2`

	var out []domain.Alert
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var alert domain.Alert
			var metadata []byte
			if err := rows.Scan(&alert.ID, &alert.TenantID, &alert.SubjectID, &alert.Kind, &alert.Title,
				&alert.Message, &alert.Severity, &alert.IsRead, &alert.DedupKey, &alert.DetectedOn,
				&metadata, &alert.CreatedAt); err != nil {
				return err
			}
			if len(metadata) > 0 {
				if err := json.Unmarshal(metadata, &alert.Metadata); err != nil {
					return err
				}
			}
			out = append(out, alert)
		}
		return rows.Err()
	})
	return out, err
}

// MarkRead flags a single alert as read.
func (r *Repository) MarkRead(ctx context.Context, tenantID, alertID string) error {
	return r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE alerts SET is_read = TRUE WHERE tenant_id = $1 AND alert_id = $2",
			tenantID, alertID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAlertNotFound
		}
		return nil
	})
}

// ─── snapshot source ───

// CohortSummary aggregates this month's training metrics for the tenant.
func (r *Repository) CohortSummary(ctx context.Context, tenantID string) (snapshot.CohortSummary, error) {
	const scheduleQuery = `SELECT
          COUNT(*) FILTER (WHERE status = 'done' AND scheduled_for >= date_trunc('month', now())) AS done_month,
          COUNT(*) FILTER (WHERE status = 'done' AND scheduled_for >= now() - interval '30 days') AS done_window,
          COUNT(*) FILTER (WHERE scheduled_for >= now() - interval '30 days' AND scheduled_for < now()) AS due_window
        FROM training_schedule WHERE tenant_id = $1`

	const alertQuery = `SELECT
          COUNT(*) FILTER (WHERE NOT is_read AND severity = 'warning') AS pending,
          COUNT(*) FILTER (WHERE NOT is_read) AS unread
        FROM alerts WHERE tenant_id = $1`

	var summary snapshot.CohortSummary
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		var doneMonth, doneWindow, dueWindow int
		if err := tx.QueryRow(ctx, scheduleQuery, tenantID).Scan(&doneMonth, &doneWindow, &dueWindow); err != nil {
			return err
		}
		summary.SessionsDone = doneMonth
		summary.AdherenceAvgPct = adherencePct(doneWindow, dueWindow)

		return tx.QueryRow(ctx, alertQuery, tenantID).Scan(&summary.PendingAlerts, &summary.UnreadNotifications)
	})
	return summary, err
}

// Leaderboard returns per-athlete adherence rows. Streaks need the gap walk,
// so each row costs one extra dated read; the limit keeps that bounded.
func (r *Repository) Leaderboard(ctx context.Context, tenantID string, limit int) ([]domain.AthleteStat, error) {
	const query = `SELECT p.user_id, p.full_name,
          COUNT(*) FILTER (WHERE ts.status = 'done') AS done,
          COUNT(*) FILTER (WHERE ts.scheduled_for < now()) AS due
        FROM profiles p
        JOIN training_schedule ts ON ts.user_id = p.user_id
        WHERE p.tenant_id = $1
        GROUP BY p.user_id, p.full_name
        ORDER BY done DESC
        LIMIT $2`

	type row struct {
		userID string
		stat   domain.AthleteStat
	}

	var scanned []row
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var entry row
			var done, due int
			if err := rows.Scan(&entry.userID, &entry.stat.DisplayName, &done, &due); err != nil {
				return err
			}
			entry.stat.SessionsDone = done
			entry.stat.AdherencePct = adherencePct(done, due)
			scanned = append(scanned, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.AthleteStat, 0, len(scanned))
	for _, entry := range scanned {
		dates, err := r.RecentDoneDates(ctx, entry.userID, 14)
		if err != nil {
			return nil, err
		}
		entry.stat.StreakDays = domain.StreakLength(dates)
		out = append(out, entry.stat)
	}
	return out, nil
}

// MembershipTotals aggregates the tenant's membership counts and revenue.
func (r *Repository) MembershipTotals(ctx context.Context, tenantID string) (snapshot.MembershipTotals, error) {
	const query = `SELECT
          COUNT(*) FILTER (WHERE status = 'active') AS active,
          COUNT(*) FILTER (WHERE status = 'active' AND ends_at >= now() AND ends_at <= now() + interval '7 days') AS expiring,
          COALESCE(SUM(monthly_price) FILTER (WHERE status = 'active'), 0) AS revenue
        FROM memberships WHERE tenant_id = $1`

	var totals snapshot.MembershipTotals
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, tenantID).Scan(&totals.Active, &totals.Expiring, &totals.MonthlyRevenue)
	})
	return totals, err
}

// CurrentMesocycle returns the tenant's active training block, or nil.
func (r *Repository) CurrentMesocycle(ctx context.Context, tenantID string) (*domain.Mesocycle, error) {
	const query = `SELECT name, week_number, total_weeks, goal
        FROM mesocycles WHERE tenant_id = $1 AND is_active
        ORDER BY started_at DESC LIMIT 1`

	var meso domain.Mesocycle
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, tenantID).Scan(&meso.Name, &meso.WeekNumber, &meso.TotalWeeks, &meso.Goal)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &meso, nil
}

// MuscleVolume returns accumulated tonnage per muscle group, heaviest first.
func (r *Repository) MuscleVolume(ctx context.Context, tenantID string) ([]domain.MuscleVolume, error) {
	const query = `SELECT muscle, SUM(sets * reps * weight_kg) AS total_load
        FROM session_sets WHERE tenant_id = $1
        GROUP BY muscle
        ORDER BY total_load DESC`

	var out []domain.MuscleVolume
	err := r.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var mv domain.MuscleVolume
			if err := rows.Scan(&mv.Name, &mv.TotalLoad); err != nil {
				return err
			}
			out = append(out, mv)
		}
		return rows.Err()
	})
	return out, err
}

func adherencePct(done, due int) float64 {
	if due <= 0 {
		return 0
	}
	pct := float64(done) / float64(due) * 100
	if pct > 100 {
		pct = 100
	}
	// The dashboard shows whole percentages.
	return float64(int(pct + 0.5))
}
