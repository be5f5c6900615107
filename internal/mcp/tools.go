package mcp

import (
	"context"
	"errors"
	"math"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolComputeWeek = mcp.NewTool("compute_week",
	mcp.WithDescription("Compute the target weight for a training max and percentage, rounded to the nearest 5, with the plates to load on each side of the bar."),
	mcp.WithNumber("training_max", mcp.Required(), mcp.Description("Training max in pounds")),
	mcp.WithNumber("pct", mcp.Required(), mcp.Description("Percentage of the training max, e.g. 85")),
)

var toolComputePlates = mcp.NewTool("compute_plates",
	mcp.WithDescription("Break a total bar weight into plates per side. Reports any weight the plate set cannot load exactly."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Total weight in pounds, bar included")),
)

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List saved workout plans with their exercise and week counts."),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Get a saved plan with every exercise's training max and weekly percentage, sets, and reps."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan ID from list_plans")),
)

var toolGetPlanOutline = mcp.NewTool("get_plan_outline",
	mcp.WithDescription("Get a saved plan as a week-by-week outline: target weight and plate breakdown per exercise and week, plus any warnings."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan ID from list_plans")),
)

type computeWeekResult struct {
	plan.Week
	PlatesText string           `json:"platesText"`
	Warnings   []models.Warning `json:"warnings"`
}

type computePlatesResult struct {
	plan.PlateBreakdown
	PlatesText string `json:"platesText"`
	Exact      bool   `json:"exact"`
}

type planOutlineResult struct {
	ID      uuid.UUID    `json:"id"`
	Name    string       `json:"name"`
	Headers []string     `json:"headers"`
	Outline plan.Outline `json:"outline"`
}

// --- Tool handlers ---

func (h *handlers) computeWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tm, err := requireNumber(req, "training_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pct, err := requireNumber(req, "pct")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	week := h.loadout.Week(tm, pct)
	return jsonResult(computeWeekResult{
		Week:       week,
		PlatesText: week.Plates.String(),
		Warnings:   week.Warnings(),
	})
}

func (h *handlers) computePlates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := requireNumber(req, "weight")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b := h.loadout.Breakdown(weight)
	return jsonResult(computePlatesResult{
		PlateBreakdown: b,
		PlatesText:     b.String(),
		Exact:          b.Exact(),
	})
}

func (h *handlers) listPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.src.ListPlans(ctx)
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plans)
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := h.lookupPlan(ctx, req, "mcp get_plan")
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(p)
}

func (h *handlers) getPlanOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := h.lookupPlan(ctx, req, "mcp get_plan_outline")
	if errResult != nil {
		return errResult, nil
	}

	o := h.loadout.Outline(p.Snapshot())
	return jsonResult(planOutlineResult{
		ID:      p.ID,
		Name:    p.Name,
		Headers: o.Headers(),
		Outline: o,
	})
}

// lookupPlan loads the plan named by the plan_id argument. On failure it
// returns the tool error to hand back to the client.
func (h *handlers) lookupPlan(ctx context.Context, req mcp.CallToolRequest, op string) (*models.Plan, *mcp.CallToolResult) {
	raw, err := req.RequireString("plan_id")
	if err != nil {
		return nil, mcp.NewToolResultError("plan_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, mcp.NewToolResultError("invalid plan_id: " + raw)
	}

	p, err := h.src.GetPlan(ctx, id)
	if errors.Is(err, storage.ErrPlanNotFound) {
		return nil, mcp.NewToolResultError("plan not found: " + raw)
	}
	if err != nil {
		h.log.Error(op, "plan_id", raw, "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return p, nil
}

// requireNumber reads a finite numeric argument.
func requireNumber(req mcp.CallToolRequest, key string) (float64, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(key + " must be finite")
	}
	return v, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
