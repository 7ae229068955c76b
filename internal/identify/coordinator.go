package identify

import (
	"fmt"
	"strconv"
	"strings"

	"attendance-station/internal/apperr"
	"attendance-station/internal/camera"
	"attendance-station/internal/face"
	"attendance-station/internal/ledger"
	"attendance-station/internal/models"
	"attendance-station/internal/notify"
	"attendance-station/internal/repository"
	"attendance-station/internal/sensor"
	"attendance-station/internal/settings"

	"github.com/sirupsen/logrus"
)

// MarkResult is a completed identification plus the ledger outcome.
type MarkResult struct {
	Employee *models.Employee `json:"employee"`
	Action   string           `json:"action"`
	Date     string           `json:"date"`
	Time     string           `json:"time"`
	// Score is backend-dependent: [0,1] under the descriptor strategy, a raw
	// good-match count under the keypoint strategy, 0 for non-face modes.
	Score float64 `json:"score"`
	// Pending is set when the station requires an operator confirmation:
	// the employee was identified but nothing was recorded yet.
	Pending bool `json:"pending"`
}

// Coordinator resolves a raw identification signal to an employee and records
// attendance. Identity resolution happens first; the ledger write is the last
// step, and notification delivery never rolls it back.
type Coordinator struct {
	employees repository.EmployeeRepository
	ledger    *ledger.Ledger
	matcher   *face.Matcher // nil when no face engine is configured
	scanner   sensor.Scanner
	camera    camera.Camera
	notifiers []notify.Notifier
	cfg       settings.Snapshot
	logger    *logrus.Logger
}

// Deps bundles the coordinator's collaborators.
type Deps struct {
	Employees repository.EmployeeRepository
	Ledger    *ledger.Ledger
	Matcher   *face.Matcher
	Scanner   sensor.Scanner
	Camera    camera.Camera
	Notifiers []notify.Notifier
}

func NewCoordinator(deps Deps, cfg settings.Snapshot) *Coordinator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Coordinator{
		employees: deps.Employees,
		ledger:    deps.Ledger,
		matcher:   deps.Matcher,
		scanner:   deps.Scanner,
		camera:    deps.Camera,
		notifiers: deps.Notifiers,
		cfg:       cfg,
		logger:    logger,
	}
}

// IdentifyFingerprint runs one sensor scan and records attendance for the
// employee enrolled at the matched template position.
func (c *Coordinator) IdentifyFingerprint() (*MarkResult, error) {
	if c.cfg.FingerprintPort == "" {
		return nil, apperr.SensorUnavailable("no fingerprint port configured")
	}

	if !c.scanner.Connect(c.cfg.FingerprintPort) {
		return nil, apperr.SensorUnavailable(
			fmt.Sprintf("scanner not reachable on port %s", c.cfg.FingerprintPort))
	}
	defer c.scanner.Disconnect()

	ok, position := c.scanner.Verify()
	if !ok {
		return nil, apperr.NoMatch("fingerprint not recognized")
	}

	employee, err := c.employees.GetByFingerprintID(strconv.Itoa(position))
	if err != nil {
		return nil, apperr.Storage("failed to look up employee", err)
	}
	if employee == nil {
		return nil, apperr.NoMatch(
			fmt.Sprintf("no employee enrolled at sensor position %d", position))
	}

	return c.mark(employee, 0)
}

// IdentifyManual records attendance for the employee whose fingerprint
// identifier equals the typed value; the field doubles as a generic lookup
// key in this mode.
func (c *Coordinator) IdentifyManual(input string) (*MarkResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, apperr.InvalidArgument("employee identifier is required")
	}

	employee, err := c.employees.GetByFingerprintID(input)
	if err != nil {
		return nil, apperr.Storage("failed to look up employee", err)
	}
	if employee == nil {
		return nil, apperr.NoMatch("no matching employee for manual input")
	}

	return c.mark(employee, 0)
}

// Confirm records attendance for an employee a previous identification
// returned as pending.
func (c *Coordinator) Confirm(employeeID uint) (*MarkResult, error) {
	employee, err := c.employees.GetByID(employeeID)
	if err != nil {
		return nil, apperr.Storage("failed to look up employee", err)
	}
	if employee == nil {
		return nil, apperr.NotFound(fmt.Sprintf("employee %d not found", employeeID))
	}

	return c.record(employee, 0)
}

// Mode reports the station attendance mode this coordinator was built with.
func (c *Coordinator) Mode() settings.Mode {
	return c.cfg.AttendanceMode
}

// mark either records the attendance event or, when the station is configured
// to confirm first, returns the identified employee as pending.
func (c *Coordinator) mark(employee *models.Employee, score float64) (*MarkResult, error) {
	if c.cfg.ConfirmBeforeMark {
		c.logger.WithFields(logrus.Fields{
			"employee_id": employee.ID,
			"name":        employee.Name,
		}).Info("Identification pending operator confirmation")
		return &MarkResult{Employee: employee, Score: score, Pending: true}, nil
	}
	return c.record(employee, score)
}

// record writes the ledger row and fans out notifications. Notification
// delivery is fire-and-forget by contract.
func (c *Coordinator) record(employee *models.Employee, score float64) (*MarkResult, error) {
	result, err := c.ledger.RecordAuto(employee.ID)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"employee_id": employee.ID,
		"name":        employee.Name,
		"action":      result.Action,
		"date":        result.Date,
		"time":        result.Time,
	}).Info("Attendance marked")

	event := notify.Event{
		EmployeeName:  employee.Name,
		EmployeeEmail: employee.Email,
		Action:        result.Action,
		Date:          result.Date,
		Time:          result.Time,
	}
	go notify.Broadcast(c.logger, c.notifiers, event)

	return &MarkResult{
		Employee: employee,
		Action:   result.Action,
		Date:     result.Date,
		Time:     result.Time,
		Score:    score,
	}, nil
}

// loadTemplates builds the matching set from the identity store. exclude
// drops one employee's own template, used by the duplicate-enrollment guard.
func (c *Coordinator) loadTemplates(exclude uint) ([]face.Template, error) {
	employees, err := c.employees.GetAll()
	if err != nil {
		return nil, apperr.Storage("failed to load employees", err)
	}

	templates := make([]face.Template, 0, len(employees))
	for _, e := range employees {
		if e.ID == exclude || !e.HasFaceTemplate() {
			continue
		}
		tpl := face.Template{EmployeeID: e.ID, ImagePath: e.FaceImagePath}
		desc, err := e.Descriptor()
		if err != nil {
			// Corrupt stored descriptors are skipped, not fatal.
			c.logger.WithError(err).WithField("employee_id", e.ID).Warn("Skipping corrupt face descriptor")
		} else {
			tpl.Descriptor = desc
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}
