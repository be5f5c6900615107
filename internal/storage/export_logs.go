package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// ExportLog records one workbook produced by the service.
type ExportLog struct {
	ID          int64            `json:"id"`
	PlanID      *uuid.UUID       `json:"planId"`
	CreatedAt   time.Time        `json:"createdAt"`
	Source      string           `json:"source"`
	RequestedBy string           `json:"requestedBy"`
	Exercises   int              `json:"exercises"`
	Weeks       int              `json:"weeks"`
	Warnings    []models.Warning `json:"warnings"`
	Bytes       int64            `json:"bytes"`
}

// InsertExportLog stores an export record and returns its ID.
func (db *DB) InsertExportLog(ctx context.Context, log ExportLog) (int64, error) {
	warnings := log.Warnings
	if warnings == nil {
		warnings = []models.Warning{}
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return 0, fmt.Errorf("encoding export warnings: %w", err)
	}
	var id int64
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO export_logs (plan_id, source, requested_by, exercises, weeks, warnings, bytes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		log.PlanID, log.Source, log.RequestedBy, log.Exercises, log.Weeks, raw, log.Bytes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting export log: %w", err)
	}
	return id, nil
}

// QueryExportLogs returns the most recent export records.
func (db *DB) QueryExportLogs(ctx context.Context, limit int) ([]ExportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, plan_id, created_at, source, requested_by, exercises, weeks, warnings, bytes
		 FROM export_logs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying export logs: %w", err)
	}
	defer rows.Close()

	result := []ExportLog{}
	for rows.Next() {
		var (
			l   ExportLog
			raw []byte
		)
		if err := rows.Scan(&l.ID, &l.PlanID, &l.CreatedAt, &l.Source, &l.RequestedBy, &l.Exercises, &l.Weeks, &raw, &l.Bytes); err != nil {
			return nil, fmt.Errorf("scanning export log: %w", err)
		}
		if err := json.Unmarshal(raw, &l.Warnings); err != nil {
			return nil, fmt.Errorf("decoding export warnings: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
