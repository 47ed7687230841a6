package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RolloverRecord is one rollover that closed at least one cycle.
type RolloverRecord struct {
	RanAt          time.Time `json:"ranAt"`
	CyclesClosed   int       `json:"cyclesClosed"`
	Forced         bool      `json:"forced"`
	NextSalaryDate string    `json:"nextSalaryDate"`
}

type RolloverLogRepo struct {
	db *sql.DB
}

func NewRolloverLogRepo(db *sql.DB) *RolloverLogRepo {
	return &RolloverLogRepo{db: db}
}

func (r *RolloverLogRepo) Record(ctx context.Context, rec RolloverRecord) error {
	forced := 0
	if rec.Forced {
		forced = 1
	}
	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO rollover_log (ran_at, cycles_closed, forced, next_salary_date) VALUES (?, ?, ?, ?)`,
		rec.RanAt.UTC().Format(time.RFC3339Nano),
		rec.CyclesClosed,
		forced,
		rec.NextSalaryDate,
	); err != nil {
		return fmt.Errorf("insert rollover log: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *RolloverLogRepo) Recent(ctx context.Context, limit int) ([]RolloverRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT ran_at, cycles_closed, forced, next_salary_date
		 FROM rollover_log
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rollover log: %w", err)
	}
	defer rows.Close()

	out := make([]RolloverRecord, 0, limit)
	for rows.Next() {
		var (
			rec    RolloverRecord
			ranAt  string
			forced int
		)
		if err := rows.Scan(&ranAt, &rec.CyclesClosed, &forced, &rec.NextSalaryDate); err != nil {
			return nil, fmt.Errorf("scan rollover log: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ranAt)
		if err != nil {
			return nil, fmt.Errorf("parse rollover log ran_at %q: %w", ranAt, err)
		}
		rec.RanAt = t
		rec.Forced = forced == 1
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rollover log rows: %w", err)
	}
	return out, nil
}
