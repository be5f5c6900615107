package mcp

import (
	"log/slog"

	"github.com/claude/liftplan/internal/catalog"
	"github.com/claude/liftplan/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures the MCP server. Zero values fall back to the standard
// plate set and the shipped exercise catalog.
type Options struct {
	Loadout plan.Loadout
	Catalog *catalog.Catalog
}

// New creates an MCP server with all tools and resources registered.
func New(src PlanSource, opts Options, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftPlan workout plan server. Compute target weights and plate loading from a training max and percentage, and read saved plans as week-by-week outlines. Weights are in pounds."),
	)

	h := &handlers{src: src, loadout: opts.Loadout, catalog: opts.Catalog, log: log}
	if len(h.loadout.Plates) == 0 {
		h.loadout = plan.StandardLoadout
	}
	if h.catalog == nil {
		h.catalog = catalog.MustDefault()
	}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolComputeWeek, Handler: h.computeWeek},
		server.ServerTool{Tool: toolComputePlates, Handler: h.computePlates},
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetPlanOutline, Handler: h.getPlanOutline},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resLoadout, Handler: h.plateLoadout},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	src     PlanSource
	loadout plan.Loadout
	catalog *catalog.Catalog
	log     *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"liftplan://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Exercise names offered when building a plan"),
	mcp.WithMIMEType("application/json"),
)

var resLoadout = mcp.NewResource(
	"liftplan://loadout",
	"Plate Loadout",
	mcp.WithResourceDescription("Bar weight and plate denominations used for plate breakdowns"),
	mcp.WithMIMEType("application/json"),
)
