package service

import (
	"context"
	"fmt"
	"time"
)

const (
	auditText  = "text"
	auditImage = "image"
)

type EstimateAuditRow struct {
	Provider    string    `json:"provider"`
	InputKind   string    `json:"input_kind"`
	Outcome     string    `json:"outcome"`
	Calories    int       `json:"calories"`
	RequestedAt time.Time `json:"requested_at"`
}

// recordEstimate appends to estimate_audit. A failed write is logged and
// otherwise ignored so it never blocks logging a meal.
func recordEstimate(ctx context.Context, d Deps, inputKind, outcome string, calories int) {
	if d.DB == nil || d.Estimator == nil {
		return
	}
	_, err := d.DB.ExecContext(ctx, `
INSERT INTO estimate_audit(provider, input_kind, outcome, calories, requested_at)
VALUES(?, ?, ?, ?, ?)
`, d.Estimator.Name(), inputKind, outcome, calories, realNow(d).Format(time.RFC3339))
	if err != nil {
		d.logger().Warn(ctx, "record estimate audit", "err", err)
	}
}

func realNow(d Deps) time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock.RealNow().UTC()
}

// EstimateOutcomeCounts groups recorded estimate calls by outcome.
func EstimateOutcomeCounts(ctx context.Context, d Deps) (map[string]int, error) {
	rows, err := d.DB.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM estimate_audit GROUP BY outcome ORDER BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("query estimate audit: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan estimate audit: %w", err)
		}
		out[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate audit: %w", err)
	}
	return out, nil
}

func RecentEstimates(ctx context.Context, d Deps, limit int) ([]EstimateAuditRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.DB.QueryContext(ctx, `
SELECT provider, input_kind, outcome, calories, requested_at
FROM estimate_audit
ORDER BY requested_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list estimate audit: %w", err)
	}
	defer rows.Close()
	items := make([]EstimateAuditRow, 0)
	for rows.Next() {
		var r EstimateAuditRow
		var at string
		if err := rows.Scan(&r.Provider, &r.InputKind, &r.Outcome, &r.Calories, &at); err != nil {
			return nil, fmt.Errorf("scan estimate audit: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("parse requested_at %q: %w", at, err)
		}
		r.RequestedAt = parsed
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate audit: %w", err)
	}
	return items, nil
}
