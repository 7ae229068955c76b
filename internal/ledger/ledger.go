package ledger

import (
	"sync"

	"attendance-station/internal/apperr"
	"attendance-station/internal/models"
	"attendance-station/internal/repository"
	"attendance-station/pkg/clock"

	"github.com/sirupsen/logrus"
)

const (
	ActionArrival   = "arrival"
	ActionDeparture = "departure"
)

// Result reports what a ledger mutation recorded.
type Result struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// Ledger owns the per-employee, per-day arrival/departure state machine.
// The day slot may hold several rows; the latest row defines the day's state:
// no row or a closed row means the next event is an arrival, an open row means
// the next event is a departure. Mutations are serialized behind a single
// write lock and each runs in one transaction.
type Ledger struct {
	records repository.AttendanceRepository
	clock   clock.Clock
	mu      sync.Mutex
	logger  *logrus.Logger
}

func New(records repository.AttendanceRepository, clk clock.Clock) *Ledger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Ledger{
		records: records,
		clock:   clk,
		logger:  logger,
	}
}

// RecordArrival marks an arrival for today. A duplicate arrival against an
// open row is a no-op; a closed latest row starts a new session row.
func (l *Ledger) RecordArrival(employeeID uint) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	date, timeOfDay := clock.Date(now), clock.TimeOfDay(now)

	err := l.records.Transaction(func(repo repository.AttendanceRepository) error {
		return l.arrival(repo, employeeID, date, timeOfDay)
	})
	if err != nil {
		return nil, apperr.Storage("failed to record arrival", err)
	}

	l.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"date":        date,
		"time":        timeOfDay,
	}).Info("Arrival recorded")

	return &Result{Action: ActionArrival, Date: date, Time: timeOfDay}, nil
}

// RecordDeparture marks a departure for today. When no open row exists, a row
// with only a departure is created; an unmatched departure is allowed.
func (l *Ledger) RecordDeparture(employeeID uint) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	date, timeOfDay := clock.Date(now), clock.TimeOfDay(now)

	err := l.records.Transaction(func(repo repository.AttendanceRepository) error {
		return l.departure(repo, employeeID, date, timeOfDay)
	})
	if err != nil {
		return nil, apperr.Storage("failed to record departure", err)
	}

	l.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"date":        date,
		"time":        timeOfDay,
	}).Info("Departure recorded")

	return &Result{Action: ActionDeparture, Date: date, Time: timeOfDay}, nil
}

// RecordAuto infers arrival vs departure from the latest row of today's day
// slot: no open row means arrival, an open row means departure.
func (l *Ledger) RecordAuto(employeeID uint) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	date, timeOfDay := clock.Date(now), clock.TimeOfDay(now)

	action := ""
	err := l.records.Transaction(func(repo repository.AttendanceRepository) error {
		latest, err := repo.GetLatestForDay(employeeID, date)
		if err != nil {
			return err
		}

		if latest != nil && latest.IsOpen() {
			action = ActionDeparture
			return l.departure(repo, employeeID, date, timeOfDay)
		}

		action = ActionArrival
		return l.arrival(repo, employeeID, date, timeOfDay)
	})
	if err != nil {
		return nil, apperr.Storage("failed to record attendance", err)
	}

	l.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"action":      action,
		"date":        date,
		"time":        timeOfDay,
	}).Info("Attendance recorded")

	return &Result{Action: action, Date: date, Time: timeOfDay}, nil
}

func (l *Ledger) arrival(repo repository.AttendanceRepository, employeeID uint, date, timeOfDay string) error {
	latest, err := repo.GetLatestForDay(employeeID, date)
	if err != nil {
		return err
	}

	switch {
	case latest == nil:
		return repo.Insert(&models.AttendanceRecord{
			EmployeeID:  employeeID,
			Date:        date,
			ArrivalTime: &timeOfDay,
		})
	case latest.ArrivalTime == nil:
		// Row holds only an unmatched departure; fill the arrival.
		latest.ArrivalTime = &timeOfDay
		return repo.Save(latest)
	case latest.IsClosed():
		// New session for the same day.
		return repo.Insert(&models.AttendanceRecord{
			EmployeeID:  employeeID,
			Date:        date,
			ArrivalTime: &timeOfDay,
		})
	default:
		// Open row: duplicate arrival signal, leave as-is.
		l.logger.WithFields(logrus.Fields{
			"employee_id": employeeID,
			"date":        date,
		}).Debug("Duplicate arrival ignored")
		return nil
	}
}

func (l *Ledger) departure(repo repository.AttendanceRepository, employeeID uint, date, timeOfDay string) error {
	rows, err := repo.GetForDay(employeeID, date)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if row.IsOpen() {
			row.DepartureTime = &timeOfDay
			return repo.Save(row)
		}
	}

	return repo.Insert(&models.AttendanceRecord{
		EmployeeID:    employeeID,
		Date:          date,
		DepartureTime: &timeOfDay,
	})
}

// TodaysRecord returns the latest row of today's day slot, or nil.
func (l *Ledger) TodaysRecord(employeeID uint) (*models.AttendanceRecord, error) {
	record, err := l.records.GetLatestForDay(employeeID, clock.Date(l.clock.Now()))
	if err != nil {
		return nil, apperr.Storage("failed to read today's record", err)
	}
	return record, nil
}

// AllRecords returns every record, reverse-chronological by date then name.
func (l *Ledger) AllRecords() ([]*models.AttendanceRecord, error) {
	records, err := l.records.GetAll()
	if err != nil {
		return nil, apperr.Storage("failed to read attendance records", err)
	}
	return records, nil
}

// TodaysCount returns the number of rows recorded today.
func (l *Ledger) TodaysCount() (int64, error) {
	count, err := l.records.CountForDay(clock.Date(l.clock.Now()))
	if err != nil {
		return 0, apperr.Storage("failed to count today's records", err)
	}
	return count, nil
}
