package server

import (
	"net/http"
	"sync"

	"attendance-station/internal/apperr"
	"attendance-station/internal/auth"
	"attendance-station/internal/identify"
	"attendance-station/internal/ledger"
	"attendance-station/internal/repository"
	"attendance-station/internal/settings"

	"github.com/sirupsen/logrus"
)

// App bundles the service layer behind the HTTP surface. The coordinator is
// rebuilt from a fresh settings snapshot whenever settings change, so
// threshold edits take effect without a restart.
type App struct {
	Auth      *auth.Service
	Ledger    *ledger.Ledger
	Employees repository.EmployeeRepository
	Settings  *settings.Service
	Secret    []byte

	// BuildCoordinator constructs a coordinator from a resolved snapshot.
	BuildCoordinator func(settings.Snapshot) *identify.Coordinator

	mu          sync.RWMutex
	coordinator *identify.Coordinator
	logger      *logrus.Logger
}

func NewApp(app *App) *App {
	app.logger = logrus.New()
	app.logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	app.coordinator = app.BuildCoordinator(app.Settings.Snapshot())
	return app
}

// Coordinator returns the coordinator built from the current settings.
func (a *App) Coordinator() *identify.Coordinator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.coordinator
}

// Reload rebuilds the coordinator from a fresh settings snapshot.
func (a *App) Reload() {
	snapshot := a.Settings.Snapshot()

	a.mu.Lock()
	a.coordinator = a.BuildCoordinator(snapshot)
	a.mu.Unlock()

	a.logger.Info("Runtime settings reloaded")
}

// statusForError maps domain error codes to HTTP statuses. NO_MATCH keeps its
// code in the body so clients can tell it apart from sensor failures.
func statusForError(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeNotFound, apperr.CodeNoMatch:
		return http.StatusNotFound
	case apperr.CodeDuplicateIdentity:
		return http.StatusConflict
	case apperr.CodeQualityRejected:
		return http.StatusUnprocessableEntity
	case apperr.CodeSensorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
