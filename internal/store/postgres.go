package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the run tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS restraint_runs (
			run_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			source       TEXT NOT NULL,
			pipeline     TEXT NOT NULL DEFAULT '',
			ls           DOUBLE PRECISION NOT NULL,
			lx           DOUBLE PRECISION NOT NULL,
			ly           DOUBLE PRECISION NOT NULL,
			lz           DOUBLE PRECISION NOT NULL,
			decay        TEXT NOT NULL,
			d0           DOUBLE PRECISION NOT NULL DEFAULT 0,
			record_count INTEGER NOT NULL,
			mean_omega   DOUBLE PRECISION NOT NULL,
			sigma_p      DOUBLE PRECISION NOT NULL,
			sigma_l      DOUBLE PRECISION NOT NULL,
			final_score  DOUBLE PRECISION NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS restraint_run_records (
			run_id    UUID NOT NULL REFERENCES restraint_runs(run_id) ON DELETE CASCADE,
			record_id TEXT NOT NULL,
			x         DOUBLE PRECISION NOT NULL,
			y         DOUBLE PRECISION NOT NULL,
			z         DOUBLE PRECISION NOT NULL,
			sl        DOUBLE PRECISION NOT NULL,
			wi        DOUBLE PRECISION NOT NULL,
			dij       DOUBLE PRECISION NOT NULL,
			fdij      DOUBLE PRECISION NOT NULL,
			omega_ij  DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, record_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const runColumns = `run_id, source, pipeline, ls, lx, ly, lz, decay, d0,
	record_count, mean_omega, sigma_p, sigma_l, final_score, created_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run, records []RunRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO restraint_runs (source, pipeline, ls, lx, ly, lz, decay, d0,
			record_count, mean_omega, sigma_p, sigma_l, final_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING run_id, created_at`,
		run.Source, run.Pipeline,
		run.Constants.Ls, run.Constants.Lx, run.Constants.Ly, run.Constants.Lz,
		run.DecayName, run.D0,
		run.RecordCount, run.MeanOmega, run.SigmaP, run.SigmaL, run.FinalScore,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{run.ID, r.RecordID, r.X, r.Y, r.Z, r.SL, r.WI, r.Dij, r.FDij, r.Omega}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"restraint_run_records"},
		[]string{"run_id", "record_id", "x", "y", "z", "sl", "wi", "dij", "fdij", "omega_ij"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert run records: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := &Run{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM restraint_runs WHERE run_id = $1`, id,
	).Scan(
		&run.ID, &run.Source, &run.Pipeline,
		&run.Constants.Ls, &run.Constants.Lx, &run.Constants.Ly, &run.Constants.Lz,
		&run.DecayName, &run.D0,
		&run.RecordCount, &run.MeanOmega, &run.SigmaP, &run.SigmaL, &run.FinalScore,
		&run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// buildRunListQuery assembles the filtered SELECT with positional args.
func buildRunListQuery(filter RunFilter) (string, []interface{}) {
	query := `SELECT ` + runColumns + ` FROM restraint_runs WHERE 1=1`
	args := []interface{}{}
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filter.Pipeline != "" {
		args = append(args, filter.Pipeline)
		query += fmt.Sprintf(" AND pipeline = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query, args := buildRunListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.Source, &run.Pipeline,
			&run.Constants.Ls, &run.Constants.Lx, &run.Constants.Ly, &run.Constants.Lz,
			&run.DecayName, &run.D0,
			&run.RecordCount, &run.MeanOmega, &run.SigmaP, &run.SigmaL, &run.FinalScore,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) GetRunRecords(ctx context.Context, id uuid.UUID) ([]RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, record_id, x, y, z, sl, wi, dij, fdij, omega_ij
		FROM restraint_run_records WHERE run_id = $1
		ORDER BY record_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.RecordID, &r.X, &r.Y, &r.Z, &r.SL, &r.WI, &r.Dij, &r.FDij, &r.Omega); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(record_count), 0),
		       COALESCE(AVG(final_score), 0),
		       COALESCE(MAX(final_score), 0)
		FROM restraint_runs`,
	).Scan(&st.TotalRuns, &st.TotalRecords, &st.AvgScore, &st.MaxScore)
	if err != nil {
		return nil, err
	}
	return st, nil
}
