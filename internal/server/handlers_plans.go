package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/liftplan/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createPlanRequest struct {
	Name      string            `json:"name"`
	Weeks     int               `json:"weeks"`
	Exercises []models.Exercise `json:"exercises"`
}

type replacePlanRequest struct {
	Name      string            `json:"name"`
	Exercises []models.Exercise `json:"exercises"`
}

type addExerciseRequest struct {
	Name        string        `json:"name"`
	TrainingMax models.Number `json:"trainingMax"`
}

type moveExerciseRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type fillDownRequest struct {
	Field models.WeekField `json:"field"`
}

type fillDownResponse struct {
	Filled bool         `json:"filled"`
	Plan   *models.Plan `json:"plan"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlanOutline(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.loadout.Outline(p.Snapshot()))
}

func (s *Server) handlePlanExport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	s.writeWorkbook(w, r, &p.ID, p.Snapshot())
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := models.NewPlan(strings.TrimSpace(req.Name), req.Weeks)
	if req.Exercises != nil {
		p.Exercises = withIDs(req.Exercises)
		if err := p.Validate(); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := s.store.CreatePlan(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleReplacePlan(w http.ResponseWriter, r *http.Request) {
	var req replacePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		p.Name = strings.TrimSpace(req.Name)
		p.Exercises = withIDs(req.Exercises)
		return p.Validate()
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		ex := p.AddExercise()
		ex.Name = strings.TrimSpace(req.Name)
		ex.TrainingMax = req.TrainingMax
		return p.UpdateExercise(ex)
	})
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	exID, ok := pathUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	ex.ID = exID
	s.editPlan(w, r, func(p *models.Plan) error {
		return p.UpdateExercise(ex)
	})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	exID, ok := pathUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		return p.RemoveExercise(exID)
	})
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	var req moveExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		return p.MoveExercise(req.From, req.To)
	})
}

func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	s.editPlan(w, r, func(p *models.Plan) error {
		p.AddWeek()
		return nil
	})
}

func (s *Server) handleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := pathWeek(w, r)
	if !ok {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		return p.DeleteWeek(week)
	})
}

func (s *Server) handleDuplicateWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := pathWeek(w, r)
	if !ok {
		return
	}
	s.editPlan(w, r, func(p *models.Plan) error {
		return p.DuplicateWeek(week)
	})
}

func (s *Server) handleFillDown(w http.ResponseWriter, r *http.Request) {
	week, ok := pathWeek(w, r)
	if !ok {
		return
	}
	var req fillDownRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var filled bool
	p, err := s.store.EditPlan(r.Context(), id, func(p *models.Plan) error {
		var err error
		filled, err = p.FillDown(week, req.Field)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fillDownResponse{Filled: filled, Plan: p})
}

// editPlan applies fn to the plan named in the path and answers with the
// stored result.
func (s *Server) editPlan(w http.ResponseWriter, r *http.Request, fn func(*models.Plan) error) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.store.EditPlan(r.Context(), id, fn)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*models.Plan, bool) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return nil, false
	}
	p, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return p, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid %s", param)})
		return uuid.Nil, false
	}
	return id, true
}

// pathWeek reads the 1-based {week} parameter and returns it zero-based.
func pathWeek(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week must be a positive integer"})
		return 0, false
	}
	return n - 1, true
}

// withIDs gives every exercise without an ID a fresh one.
func withIDs(exs []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, len(exs))
	for i, ex := range exs {
		if ex.ID == uuid.Nil {
			ex.ID = uuid.New()
		}
		out[i] = ex.Clone()
	}
	return out
}
