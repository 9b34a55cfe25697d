// Package critiquelog implements the Critique Log Store: an append-only
// Postgres table of identified red flags per evaluation, built directly on
// pgx rather than a generated ORM layer (spec §6: "Critique log schema").
package critiquelog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchscope/pitchscope/pkg/agent/critique"
	"github.com/pitchscope/pitchscope/pkg/models"
)

// Store appends CritiqueReport rows to Postgres. It satisfies
// critique.LogAppender.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres at connString. Callers should run the
// migrations in pkg/store/critiquelog/migrations before first use.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("critiquelog: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("critiquelog: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Append inserts one row per the spec §6 schema: (id autoinc, startup_name,
// red_flag, severity, explanation, category, overall_risk_label, summary,
// created_at default now).
func (s *Store) Append(ctx context.Context, row critique.LogRow) error {
	const stmt = `
		INSERT INTO critique_log
			(startup_name, red_flag, severity, explanation, category, overall_risk_label, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, stmt,
		row.StartupName, row.Flag, row.Severity, row.Explanation, row.Category,
		row.OverallRiskLabel, row.Summary)
	if err != nil {
		return fmt.Errorf("critiquelog: insert: %w", err)
	}
	return nil
}

// ByStartup retrieves all logged red flags for a given startup name, most
// recent first — used by the (optional) history surface.
func (s *Store) ByStartup(ctx context.Context, startupName string) ([]critique.LogRow, error) {
	const stmt = `
		SELECT startup_name, red_flag, severity, explanation, category, overall_risk_label, summary
		FROM critique_log
		WHERE startup_name = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, stmt, startupName)
	if err != nil {
		return nil, fmt.Errorf("critiquelog: query: %w", err)
	}
	defer rows.Close()

	var out []critique.LogRow
	for rows.Next() {
		var r critique.LogRow
		var severity, category, risk string
		if err := rows.Scan(&r.StartupName, &r.Flag, &severity, &r.Explanation, &category, &risk, &r.Summary); err != nil {
			return nil, fmt.Errorf("critiquelog: scan: %w", err)
		}
		r.Severity = models.Severity(severity)
		r.Category = models.Category(category)
		r.OverallRiskLabel = models.RiskLabel(risk)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
