package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrPlanNotFound is returned for a missing plan, including one stored in
// an older format that was discarded on read.
var ErrPlanNotFound = errors.New("plan not found")

// planBody is the JSONB document stored per plan.
type planBody struct {
	Weeks     int               `json:"weeks"`
	Exercises []models.Exercise `json:"exercises"`
}

func encodeBody(p *models.Plan) ([]byte, error) {
	exs := p.Exercises
	if exs == nil {
		exs = []models.Exercise{}
	}
	b, err := json.Marshal(planBody{Weeks: p.WeekCount(), Exercises: exs})
	if err != nil {
		return nil, fmt.Errorf("encoding plan %s: %w", p.ID, err)
	}
	return b, nil
}

// CreatePlan inserts p, stamping its format and timestamps.
func (db *DB) CreatePlan(ctx context.Context, p *models.Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Format = models.FormatVersion
	body, err := encodeBody(p)
	if err != nil {
		return err
	}
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO plans (id, name, format, body) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Format, body,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

// GetPlan loads one plan. A row written in another format is deleted and
// reported as ErrPlanNotFound.
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	p, err := scanPlan(db.Pool.QueryRow(ctx,
		`SELECT id, name, format, body, created_at, updated_at FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if p.Format != models.FormatVersion {
		if _, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("discarding stale plan %s: %w", id, err)
		}
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// ListPlans returns summaries of every current-format plan, most recently
// updated first. Stale-format rows are discarded.
func (db *DB) ListPlans(ctx context.Context) ([]models.PlanSummary, error) {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE format <> $1`, models.FormatVersion); err != nil {
		return nil, fmt.Errorf("discarding stale plans: %w", err)
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name,
		        jsonb_array_length(body->'exercises'),
		        COALESCE(jsonb_array_length(body->'exercises'->0->'weekDetails'), (body->>'weeks')::int, 0),
		        updated_at
		 FROM plans ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	result := []models.PlanSummary{}
	for rows.Next() {
		var s models.PlanSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Exercises, &s.Weeks, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// updatePlan overwrites the stored name and exercises of p.
func updatePlan(ctx context.Context, q queryRower, p *models.Plan) error {
	p.Format = models.FormatVersion
	body, err := encodeBody(p)
	if err != nil {
		return err
	}
	err = q.QueryRow(ctx,
		`UPDATE plans SET name = $2, format = $3, body = $4, updated_at = now()
		 WHERE id = $1 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Format, body,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("updating plan %s: %w", p.ID, err)
	}
	return nil
}

// EditPlan loads a plan under a row lock, applies fn and stores the result
// in one transaction. If fn returns an error nothing is written.
func (db *DB) EditPlan(ctx context.Context, id uuid.UUID, fn func(*models.Plan) error) (*models.Plan, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanPlan(tx.QueryRow(ctx,
		`SELECT id, name, format, body, created_at, updated_at FROM plans WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if p.Format != models.FormatVersion {
		if _, err := tx.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("discarding stale plan %s: %w", id, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("committing: %w", err)
		}
		return nil, ErrPlanNotFound
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := updatePlan(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing plan %s: %w", id, err)
	}
	return p, nil
}

// DeletePlan removes a plan.
func (db *DB) DeletePlan(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var (
		p         models.Plan
		body      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Format, &body, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = createdAt, updatedAt
	if p.Format != models.FormatVersion {
		return &p, nil
	}
	var b planBody
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", p.ID, err)
	}
	p.Weeks = b.Weeks
	p.Exercises = b.Exercises
	if len(p.Exercises) > 0 {
		p.Weeks = models.WeekCount(p.Exercises)
	}
	if p.Exercises == nil {
		p.Exercises = []models.Exercise{}
	}
	return &p, nil
}
