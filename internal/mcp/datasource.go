package mcp

import (
	"context"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/storage"
	"github.com/google/uuid"
)

// PlanSource abstracts where saved plans come from. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type PlanSource interface {
	ListPlans(ctx context.Context) ([]models.PlanSummary, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

// Compile-time check: *storage.DB satisfies PlanSource.
var _ PlanSource = (*storage.DB)(nil)
