package notify

import (
	"github.com/sirupsen/logrus"
)

// Event describes a recorded attendance action for notification sinks.
type Event struct {
	EmployeeName  string
	EmployeeEmail string
	Action        string // arrival | departure
	Date          string // YYYY-MM-DD
	Time          string // HH:MM:SS
}

// Notifier delivers attendance events on a best-effort basis. Failures are
// the notifier's own problem; they never fail the attendance record.
type Notifier interface {
	Name() string
	NotifyAttendance(event Event) error
}

// Broadcast fans an event out to every notifier, logging failures and
// swallowing them.
func Broadcast(logger *logrus.Logger, notifiers []Notifier, event Event) {
	for _, n := range notifiers {
		if err := n.NotifyAttendance(event); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"notifier": n.Name(),
				"employee": event.EmployeeName,
				"action":   event.Action,
			}).Warn("Notification delivery failed")
		}
	}
}
