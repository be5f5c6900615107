package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/storage"
	"github.com/claude/liftplan/internal/workbook"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type calculateRequest struct {
	TrainingMax models.Number `json:"trainingMax"`
	Pct         models.Number `json:"pct"`
}

type calculateResponse struct {
	plan.Week
	Warnings []models.Warning `json:"warnings"`
}

type platesRequest struct {
	Weight models.Number `json:"weight"`
}

type exercisesRequest struct {
	Exercises []models.Exercise `json:"exercises"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Names())
}

func (s *Server) handleAddCatalogName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	added := s.catalog.Add(req.Name)
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "names": s.catalog.Names()})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	week := s.loadout.Week(req.TrainingMax.Float(), req.Pct.Float())
	resp := calculateResponse{Week: week, Warnings: week.Warnings()}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlates(w http.ResponseWriter, r *http.Request) {
	var req platesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.loadout.Breakdown(req.Weight.Float()))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req exercisesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.loadout.Outline(req.Exercises))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exercisesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.writeWorkbook(w, r, nil, req.Exercises)
}

// writeWorkbook builds and streams the xlsx for exercises and records the
// export. planID is nil for ad-hoc exports.
func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, planID *uuid.UUID, exercises []models.Exercise) {
	wb, err := s.builder.Build(exercises)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		s.writeError(w, err)
		return
	}
	for _, warn := range wb.Warnings {
		s.log.Warn("export warning", "kind", warn.Kind, "message", warn.Message)
	}
	size := int64(buf.Len())

	w.Header().Set("Content-Type", workbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, workbook.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("X-Warning-Count", strconv.Itoa(len(wb.Warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Error("writing export", "error", err)
		return
	}

	s.logExport(r, storage.ExportLog{
		PlanID:    planID,
		Source:    "http",
		Exercises: len(exercises),
		Weeks:     wb.Weeks,
		Warnings:  wb.Warnings,
		Bytes:     size,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors to 404 or 400 and logs anything else as a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrPlanNotFound),
		errors.Is(err, models.ErrExerciseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrIndexOutOfRange),
		errors.Is(err, models.ErrWeekOutOfRange),
		errors.Is(err, models.ErrWeekCountChanged),
		errors.Is(err, models.ErrUnknownField),
		errors.Is(err, workbook.ErrTooManyWeeks),
		errors.Is(err, workbook.ErrTooManyExercises):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
