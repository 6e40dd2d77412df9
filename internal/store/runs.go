package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses. A run starts as running and ends in exactly one of the
// other three: succeeded when cards were rendered (or would have been,
// for a dry run), empty when the reply held no usable cards, failed on
// a hard error.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusEmpty     = "empty"
)

// Run is one recorded generation run.
type Run struct {
	ID           string
	SourceName   string
	SourceHash   string
	Provider     string
	Model        string
	CardTypes    string
	MaxCards     int
	CardsParsed  int
	CardsCreated int
	CardsSkipped int
	Status       string
	ErrorMessage sql.NullString
	StartedAt    time.Time
	FinishedAt   sql.NullTime
}

const runColumns = `id, source_name, source_hash, provider, model, card_types, max_cards,
	cards_parsed, cards_created, cards_skipped, status, error_message, started_at, finished_at`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.SourceName, &r.SourceHash, &r.Provider, &r.Model, &r.CardTypes, &r.MaxCards,
		&r.CardsParsed, &r.CardsCreated, &r.CardsSkipped, &r.Status, &r.ErrorMessage,
		&r.StartedAt, &r.FinishedAt,
	)
	return r, err
}

// CreateRun inserts a new run in the running state.
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO runs (id, source_name, source_hash, provider, model, card_types, max_cards, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceName, r.SourceHash, r.Provider, r.Model, r.CardTypes, r.MaxCards,
		StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id, status, errMsg string, parsed, created, skipped int) error {
	message := sql.NullString{String: errMsg, Valid: errMsg != ""}
	_, err := s.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error_message = ?, cards_parsed = ?, cards_created = ?, cards_skipped = ?, finished_at = ?
		WHERE id = ?`,
		status, message, parsed, created, skipped, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// GetRunBySourceHash returns the most recent run for a source hash.
// sql.ErrNoRows means the source was never processed.
func (s *Store) GetRunBySourceHash(ctx context.Context, hash string) (Run, error) {
	row := s.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE source_hash = ? ORDER BY started_at DESC, id DESC LIMIT 1`, hash)
	r, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the limit most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Totals aggregates lifetime run accounting.
type Totals struct {
	Runs         int64
	CardsParsed  int64
	CardsCreated int64
	CardsSkipped int64
}

// GetTotals sums accounting over every recorded run.
func (s *Store) GetTotals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(cards_parsed), 0),
			COALESCE(SUM(cards_created), 0),
			COALESCE(SUM(cards_skipped), 0)
		FROM runs`,
	).Scan(&t.Runs, &t.CardsParsed, &t.CardsCreated, &t.CardsSkipped)
	if err != nil {
		return Totals{}, fmt.Errorf("aggregate runs: %w", err)
	}
	return t, nil
}

// CountRuns returns the number of recorded runs.
func (s *Store) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	if err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}
