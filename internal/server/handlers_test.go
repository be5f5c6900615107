package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/plan"
	"github.com/claude/liftplan/internal/storage"
	"github.com/claude/liftplan/internal/workbook"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const testKey = "test-key"

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	plans   map[uuid.UUID]*models.Plan
	exports []storage.ExportLog
}

func newMemStore() *memStore {
	return &memStore{plans: make(map[uuid.UUID]*models.Plan)}
}

func copyPlan(p *models.Plan) *models.Plan {
	c := *p
	c.Exercises = p.Snapshot()
	return &c
}

func (m *memStore) CreatePlan(ctx context.Context, p *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = copyPlan(p)
	return nil
}

func (m *memStore) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, storage.ErrPlanNotFound
	}
	return copyPlan(p), nil
}

func (m *memStore) ListPlans(ctx context.Context) ([]models.PlanSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PlanSummary{}
	for _, p := range m.plans {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) EditPlan(ctx context.Context, id uuid.UUID, fn func(*models.Plan) error) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, storage.ErrPlanNotFound
	}
	c := copyPlan(p)
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	m.plans[id] = copyPlan(c)
	return c, nil
}

func (m *memStore) DeletePlan(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return storage.ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *memStore) InsertExportLog(ctx context.Context, log storage.ExportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = int64(len(m.exports) + 1)
	m.exports = append(m.exports, log)
	return log.ID, nil
}

func (m *memStore) QueryExportLogs(ctx context.Context, limit int) ([]storage.ExportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]storage.ExportLog{}, m.exports...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(newMemStore(), Options{APIKey: testKey}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// do sends a request through the full router. Writes carry the API key.
func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func squat() models.Exercise {
	ex := models.NewExercise(3)
	ex.Name = "Squat"
	ex.TrainingMax = "225"
	ex.WeekDetails[0] = models.WeekDetail{Pct: "85", Sets: "3", Reps: "5"}
	ex.WeekDetails[1] = models.WeekDetail{Pct: "90", Sets: "3", Reps: "3"}
	ex.WeekDetails[2] = models.WeekDetail{Pct: "95", Sets: "1", Reps: "1"}
	return ex
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

// TestHandleMeDefault verifies /api/v1/me returns the local identity when no
// resolver is installed.
func TestHandleMeDefault(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/v1/me", nil)
	info := decode[UserInfo](t, rec)
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestHandleMeResolved verifies /api/v1/me returns the resolved identity.
func TestHandleMeResolved(t *testing.T) {
	s := newTestServer(t)
	s.SetIdentity(func(r *http.Request) (UserInfo, error) {
		return UserInfo{Login: "alice@example.com", DisplayName: "Alice"}, nil
	})
	info := decode[UserInfo](t, do(t, s, http.MethodGet, "/api/v1/me", nil))
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	names := decode[[]string](t, do(t, s, http.MethodGet, "/api/v1/exercises/catalog", nil))
	if len(names) != 47 || names[0] != "Squat" {
		t.Fatalf("catalog = %d names, first %q", len(names), names[0])
	}

	rec := do(t, s, http.MethodPost, "/api/v1/exercises/catalog", map[string]string{"name": "Zercher Squat"})
	got := decode[struct {
		Added bool     `json:"added"`
		Names []string `json:"names"`
	}](t, rec)
	if !got.Added || got.Names[len(got.Names)-1] != "Zercher Squat" {
		t.Errorf("add = %+v", got)
	}
}

// TestCalculate checks the worked example over HTTP, with string and
// numeric field encodings.
func TestCalculate(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []any{
		map[string]any{"trainingMax": 225, "pct": 85},
		map[string]any{"trainingMax": "225", "pct": "85"},
	} {
		rec := do(t, s, http.MethodPost, "/api/v1/calculate", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		got := decode[calculateResponse](t, rec)
		if got.TargetWeight != 190 || got.Plates.String() != "45, 25, 2.5" {
			t.Errorf("week = %+v", got.Week)
		}
		if len(got.Warnings) != 0 {
			t.Errorf("warnings = %v", got.Warnings)
		}
	}
}

// TestCalculateUnrepresentable verifies a custom loadout that cannot reach
// the target is reported.
func TestCalculateUnrepresentable(t *testing.T) {
	s := New(newMemStore(), Options{
		APIKey:  testKey,
		Loadout: plan.Loadout{Bar: 45, Plates: []float64{45, 25, 10}},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	got := decode[calculateResponse](t, do(t, s, http.MethodPost, "/api/v1/calculate",
		map[string]any{"trainingMax": 225, "pct": 85}))
	if got.Plates.Remainder != 2.5 || len(got.Warnings) != 1 {
		t.Errorf("response = %+v", got)
	}
}

func TestPlates(t *testing.T) {
	s := newTestServer(t)
	got := decode[plan.PlateBreakdown](t, do(t, s, http.MethodPost, "/api/v1/plates", map[string]any{"weight": 50}))
	want := []plan.PlateCount{{Weight: 2.5, Count: 1}}
	if diff := cmp.Diff(want, got.Plates); diff != "" {
		t.Errorf("plates (-want +got):\n%s", diff)
	}

	rec := do(t, s, http.MethodPost, "/api/v1/plates", "not an object")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", rec.Code)
	}
}

func TestOutline(t *testing.T) {
	s := newTestServer(t)
	short := squat()
	short.WeekDetails = short.WeekDetails[:2]
	rec := do(t, s, http.MethodPost, "/api/v1/outline",
		exercisesRequest{Exercises: []models.Exercise{squat(), short}})
	got := decode[plan.Outline](t, rec)
	if got.Weeks != 3 || len(got.Rows) != 2 {
		t.Fatalf("outline = %+v", got)
	}
	if got.Rows[0].Cells[0].PlatesText != "45, 25, 2.5" {
		t.Errorf("plates text = %q", got.Rows[0].Cells[0].PlatesText)
	}
	if !got.Rows[1].Cells[2].Missing {
		t.Error("short row week 3 should be missing")
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Kind != models.WarnWeekCountMismatch {
		t.Errorf("warnings = %v", got.Warnings)
	}
}

// TestExport verifies the download headers, the workbook contents and the
// export record.
func TestExport(t *testing.T) {
	store := newMemStore()
	s := New(store, Options{APIKey: testKey}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := do(t, s, http.MethodPost, "/api/v1/export", exercisesRequest{Exercises: []models.Exercise{squat()}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != workbook.ContentType {
		t.Errorf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="workout_plan.xlsx"` {
		t.Errorf("content disposition = %q", got)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	formula, err := f.GetCellFormula("Plan", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if formula != "MROUND(Details!B2*Details!C2/100,5)" {
		t.Errorf("formula = %q", formula)
	}

	logs := decode[[]storage.ExportLog](t, do(t, s, http.MethodGet, "/api/v1/exports", nil))
	if len(logs) != 1 || logs[0].Exercises != 1 || logs[0].Weeks != 3 || logs[0].RequestedBy != "local" {
		t.Errorf("export logs = %+v", logs)
	}
}

// TestPlanWritesNeedKey verifies plan writes are rejected without the API key.
func TestPlanWritesNeedKey(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/", bytes.NewReader([]byte(`{"name":"x"}`)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestPlanLifecycle walks a plan through creation, structural edits,
// projection and deletion.
func TestPlanLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/plans/", createPlanRequest{Name: "5/3/1", Weeks: 3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	p := decode[models.Plan](t, rec)
	base := "/api/v1/plans/" + p.ID.String()
	if len(p.Exercises) != 1 || p.WeekCount() != 3 {
		t.Fatalf("new plan = %+v", p)
	}

	// Fill in the placeholder, then add a second exercise.
	ex := squat()
	ex.ID = p.Exercises[0].ID
	rec = do(t, s, http.MethodPut, base+"/exercises/"+ex.ID.String(), ex)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	p = decode[models.Plan](t, do(t, s, http.MethodPost, base+"/exercises",
		addExerciseRequest{Name: "Bench Press", TrainingMax: "185"}))
	if len(p.Exercises) != 2 || p.Exercises[1].Name != "Bench Press" || len(p.Exercises[1].WeekDetails) != 3 {
		t.Fatalf("after add = %+v", p.Exercises)
	}

	p = decode[models.Plan](t, do(t, s, http.MethodPost, base+"/exercises/move", moveExerciseRequest{From: 1, To: 0}))
	if p.Exercises[0].Name != "Bench Press" {
		t.Errorf("after move first = %q", p.Exercises[0].Name)
	}
	p = decode[models.Plan](t, do(t, s, http.MethodPost, base+"/exercises/move", moveExerciseRequest{From: 1, To: 0}))

	// Week operations use 1-based week numbers.
	p = decode[models.Plan](t, do(t, s, http.MethodPost, base+"/weeks/1/duplicate", nil))
	if p.WeekCount() != 4 || p.Exercises[0].WeekDetails[1].Pct != "85" {
		t.Errorf("after duplicate = %+v", p.Exercises[0].WeekDetails)
	}
	p = decode[models.Plan](t, do(t, s, http.MethodDelete, base+"/weeks/2", nil))
	if p.WeekCount() != 3 {
		t.Errorf("after delete week = %d weeks", p.WeekCount())
	}
	p = decode[models.Plan](t, do(t, s, http.MethodPost, base+"/weeks", nil))
	if p.WeekCount() != 4 {
		t.Errorf("after add week = %d weeks", p.WeekCount())
	}

	fill := decode[fillDownResponse](t, do(t, s, http.MethodPost, base+"/weeks/1/fill-down",
		fillDownRequest{Field: models.FieldSets}))
	if !fill.Filled || fill.Plan.Exercises[1].WeekDetails[0].Sets != "3" {
		t.Errorf("fill down = %+v", fill)
	}

	outline := decode[plan.Outline](t, do(t, s, http.MethodGet, base+"/outline", nil))
	if outline.Weeks != 4 || outline.Rows[0].Cells[0].TargetWeight != 190 {
		t.Errorf("outline = %+v", outline)
	}

	rec = do(t, s, http.MethodGet, base+"/export", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != workbook.ContentType {
		t.Errorf("export status = %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	list := decode[[]models.PlanSummary](t, do(t, s, http.MethodGet, "/api/v1/plans/", nil))
	if len(list) != 1 || list[0].Exercises != 2 || list[0].Weeks != 4 {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, s, http.MethodDelete, base+"/exercises/"+p.Exercises[1].ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("remove exercise status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, base, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

// TestPlanEditErrors verifies domain errors map to 400 and 404.
func TestPlanEditErrors(t *testing.T) {
	s := newTestServer(t)
	p := decode[models.Plan](t, do(t, s, http.MethodPost, "/api/v1/plans/", createPlanRequest{Name: "x"}))
	base := "/api/v1/plans/" + p.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown plan", http.MethodPost, "/api/v1/plans/" + uuid.NewString() + "/weeks", nil, http.StatusNotFound},
		{"bad plan id", http.MethodGet, "/api/v1/plans/nope", nil, http.StatusBadRequest},
		{"unknown exercise", http.MethodDelete, base + "/exercises/" + uuid.NewString(), nil, http.StatusNotFound},
		{"week zero", http.MethodDelete, base + "/weeks/0", nil, http.StatusBadRequest},
		{"week past end", http.MethodDelete, base + "/weeks/9", nil, http.StatusBadRequest},
		{"move out of range", http.MethodPost, base + "/exercises/move", moveExerciseRequest{From: 0, To: 5}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, base + "/weeks/1/fill-down", fillDownRequest{Field: "tempo"}, http.StatusBadRequest},
		{"ragged replace", http.MethodPut, base, replacePlanRequest{Name: "x", Exercises: []models.Exercise{
			models.NewExercise(3), models.NewExercise(2),
		}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	// A rejected edit leaves the plan unchanged.
	got := decode[models.Plan](t, do(t, s, http.MethodGet, base, nil))
	if got.WeekCount() != models.DefaultWeeks || len(got.Exercises) != 1 {
		t.Errorf("plan changed: %+v", got)
	}
}
