package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance-station/internal/identify"
	"attendance-station/internal/ledger"
	"attendance-station/internal/models"
	"attendance-station/internal/repository"
	"attendance-station/internal/sensor"
	"attendance-station/internal/settings"
	"attendance-station/pkg/clock"

	"github.com/gin-gonic/gin"
)

type fakeSettingRepo struct {
	values map[string]string
}

func (r *fakeSettingRepo) Get(key string) (*models.Setting, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (r *fakeSettingRepo) Upsert(key, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingRepo) GetAll() ([]*models.Setting, error) {
	out := make([]*models.Setting, 0, len(r.values))
	for k, v := range r.values {
		out = append(out, &models.Setting{Key: k, Value: v})
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	byID map[uint]*models.Employee
}

func (r *fakeEmployeeRepo) Create(e *models.Employee) error { r.byID[e.ID] = e; return nil }
func (r *fakeEmployeeRepo) Update(e *models.Employee) error { r.byID[e.ID] = e; return nil }
func (r *fakeEmployeeRepo) GetByID(id uint) (*models.Employee, error) {
	return r.byID[id], nil
}

func (r *fakeEmployeeRepo) GetByFingerprintID(fingerprintID string) (*models.Employee, error) {
	for _, e := range r.byID {
		if e.FingerprintID == fingerprintID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEmployeeRepo) GetAll() ([]*models.Employee, error) {
	out := make([]*models.Employee, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Count() (int64, error) { return int64(len(r.byID)), nil }

type fakeAttendanceRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   []*models.AttendanceRecord
}

func (r *fakeAttendanceRepo) Insert(record *models.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	clone := *record
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *fakeAttendanceRepo) Save(record *models.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ID == record.ID {
			clone := *record
			r.rows[i] = &clone
			return nil
		}
	}
	return nil
}

func (r *fakeAttendanceRepo) GetLatestForDay(employeeID uint, date string) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.AttendanceRecord
	for _, row := range r.rows {
		if row.EmployeeID == employeeID && row.Date == date {
			if latest == nil || row.ID > latest.ID {
				latest = row
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (r *fakeAttendanceRepo) GetForDay(employeeID uint, date string) ([]*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AttendanceRecord
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].EmployeeID == employeeID && r.rows[i].Date == date {
			clone := *r.rows[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) GetAll() ([]*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AttendanceRecord, len(r.rows))
	for i, row := range r.rows {
		clone := *row
		out[i] = &clone
	}
	return out, nil
}

func (r *fakeAttendanceRepo) CountForDay(date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.Date == date {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttendanceRepo) Transaction(fn func(repo repository.AttendanceRepository) error) error {
	return fn(r)
}

// newTestApp wires an App over in-memory fakes with the given stored
// settings. No face engine and no camera are configured.
func newTestApp(t *testing.T, stored map[string]string) (*App, *fakeAttendanceRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	employees := &fakeEmployeeRepo{byID: map[uint]*models.Employee{
		7: {ID: 7, Name: "Dana", FingerprintID: "badge-7"},
	}}
	records := &fakeAttendanceRepo{}
	led := ledger.New(records, clock.Fixed(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))
	settingsService := settings.NewService(&fakeSettingRepo{values: stored})

	build := func(snapshot settings.Snapshot) *identify.Coordinator {
		return identify.NewCoordinator(identify.Deps{
			Employees: employees,
			Ledger:    led,
			Scanner:   sensor.Unconfigured(),
		}, snapshot)
	}

	app := NewApp(&App{
		Ledger:           led,
		Employees:        employees,
		Settings:         settingsService,
		Secret:           []byte("test-secret"),
		BuildCoordinator: build,
	})
	return app, records
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	r := gin.New()
	r.POST("/x", handler)

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
		}
	}
	return w, parsed
}

func TestHandleIdentify_OmittedModeUsesStationMode(t *testing.T) {
	// The stored legacy value migrates to face mode; with no face engine the
	// request must surface sensor unavailability, proving the station mode
	// drove the dispatch rather than the fingerprint default.
	app, records := newTestApp(t, map[string]string{
		settings.KeyAttendanceMode: "facial_only",
	})

	w, body := postJSON(t, app.handleIdentify, `{}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (%s)", w.Code, w.Body.String())
	}
	if body["code"] != "SENSOR_UNAVAILABLE" {
		t.Errorf("expected SENSOR_UNAVAILABLE code, got %v", body["code"])
	}
	if n, _ := records.CountForDay("2024-03-15"); n != 0 {
		t.Errorf("expected no rows, got %d", n)
	}
}

func TestHandleIdentify_ExplicitModeOverridesStation(t *testing.T) {
	app, records := newTestApp(t, map[string]string{
		settings.KeyAttendanceMode: "facial_only",
	})

	w, body := postJSON(t, app.handleIdentify, `{"mode":"manual","input":"badge-7"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if body["action"] != ledger.ActionArrival {
		t.Errorf("expected arrival, got %v", body["action"])
	}
	if n, _ := records.CountForDay("2024-03-15"); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestHandleIdentify_ConfirmFlow(t *testing.T) {
	app, records := newTestApp(t, map[string]string{
		settings.KeyAttendanceMode:    "manual",
		settings.KeyConfirmBeforeMark: "true",
	})

	w, body := postJSON(t, app.handleIdentify, `{"input":"badge-7"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if body["pending"] != true {
		t.Fatalf("expected a pending result, got %v", body)
	}
	if n, _ := records.CountForDay("2024-03-15"); n != 0 {
		t.Fatalf("expected no rows before confirmation, got %d", n)
	}

	w, body = postJSON(t, app.handleConfirm, `{"employee_id":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if body["action"] != ledger.ActionArrival || body["pending"] == true {
		t.Errorf("unexpected confirmation body: %v", body)
	}
	if n, _ := records.CountForDay("2024-03-15"); n != 1 {
		t.Errorf("expected 1 row after confirmation, got %d", n)
	}
}
