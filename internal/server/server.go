package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftplan/internal/catalog"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/storage"
	"github.com/claude/liftplan/internal/workbook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// Store is the persistence the handlers need.
type Store interface {
	CreatePlan(ctx context.Context, p *models.Plan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.PlanSummary, error)
	EditPlan(ctx context.Context, id uuid.UUID, fn func(*models.Plan) error) (*models.Plan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	InsertExportLog(ctx context.Context, log storage.ExportLog) (int64, error)
	QueryExportLogs(ctx context.Context, limit int) ([]storage.ExportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Options configures a Server. Zero values fall back to the standard plate
// set, the default sheet names and the shipped exercise catalog.
type Options struct {
	APIKey         string
	AllowedOrigins []string
	Loadout        plan.Loadout
	Builder        workbook.Builder
	Catalog        *catalog.Catalog
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	catalog  *catalog.Catalog
	loadout  plan.Loadout
	builder  workbook.Builder
	log      *slog.Logger
	apiKey   string
	origins  []string
	identify IdentifyFunc
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, opts Options, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		catalog: opts.Catalog,
		loadout: opts.Loadout,
		builder: opts.Builder,
		log:     log,
		apiKey:  opts.APIKey,
		origins: opts.AllowedOrigins,
		router:  chi.NewRouter(),
	}
	if len(s.loadout.Plates) == 0 {
		s.loadout = plan.StandardLoadout
	}
	if s.builder == (workbook.Builder{}) {
		s.builder = workbook.DefaultBuilder
	}
	if s.catalog == nil {
		s.catalog = catalog.MustDefault()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.routes()
	return s
}

// SetIdentity installs the function that resolves who made a request, such
// as a Tailscale WhoIs lookup. Without one every request is the local user.
func (s *Server) SetIdentity(fn IdentifyFunc) {
	s.identify = fn
}

// Mount attaches h under pattern behind the same middleware as the API.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(Identity(s.identifyRequest))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)

	// Stateless calculator endpoints
	s.router.Get("/api/v1/exercises/catalog", s.handleCatalog)
	s.router.Post("/api/v1/calculate", s.handleCalculate)
	s.router.Post("/api/v1/plates", s.handlePlates)
	s.router.Post("/api/v1/outline", s.handleOutline)
	s.router.Post("/api/v1/export", s.handleExport)
	s.router.Get("/api/v1/exports", s.handleExportLogs)

	s.router.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Get("/{id}", s.handleGetPlan)
		r.Get("/{id}/outline", s.handlePlanOutline)
		r.Get("/{id}/export", s.handlePlanExport)

		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleCreatePlan)
			r.Put("/{id}", s.handleReplacePlan)
			r.Delete("/{id}", s.handleDeletePlan)
			r.Post("/{id}/exercises", s.handleAddExercise)
			r.Put("/{id}/exercises/{exerciseID}", s.handleUpdateExercise)
			r.Delete("/{id}/exercises/{exerciseID}", s.handleRemoveExercise)
			r.Post("/{id}/exercises/move", s.handleMoveExercise)
			r.Post("/{id}/weeks", s.handleAddWeek)
			r.Delete("/{id}/weeks/{week}", s.handleDeleteWeek)
			r.Post("/{id}/weeks/{week}/duplicate", s.handleDuplicateWeek)
			r.Post("/{id}/weeks/{week}/fill-down", s.handleFillDown)
		})
	})

	s.router.With(APIKeyAuth(s.apiKey)).Post("/api/v1/exercises/catalog", s.handleAddCatalogName)
}
