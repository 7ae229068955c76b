package notify

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

type stubNotifier struct {
	name   string
	err    error
	events []Event
}

func (n *stubNotifier) Name() string { return n.name }

func (n *stubNotifier) NotifyAttendance(event Event) error {
	n.events = append(n.events, event)
	return n.err
}

func TestBroadcast_DeliversToAllDespiteFailures(t *testing.T) {
	failing := &stubNotifier{name: "email", err: errors.New("smtp down")}
	working := &stubNotifier{name: "upload"}
	event := Event{EmployeeName: "Dana", Action: "arrival", Date: "2024-03-15", Time: "09:00:00"}

	Broadcast(logrus.New(), []Notifier{failing, working}, event)

	if len(failing.events) != 1 || len(working.events) != 1 {
		t.Errorf("expected both notifiers invoked, got %d/%d", len(failing.events), len(working.events))
	}
	if working.events[0] != event {
		t.Errorf("unexpected event: %+v", working.events[0])
	}
}

func TestSimulatedUploader(t *testing.T) {
	u := NewSimulatedUploader()

	arrival := Event{EmployeeName: "Dana", Action: "arrival", Date: "2024-03-15", Time: "09:00:00"}
	departure := Event{EmployeeName: "Dana", Action: "departure", Date: "2024-03-15", Time: "17:30:00"}
	if err := u.NotifyAttendance(arrival); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := u.NotifyAttendance(departure); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	all := u.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 simulated uploads, got %d", len(all))
	}
	if all["2024-03-15 09:00:00 Dana"].Action != "arrival" {
		t.Errorf("unexpected stored event: %+v", all["2024-03-15 09:00:00 Dana"])
	}

	// All returns a copy; mutating it does not touch the store.
	delete(all, "2024-03-15 09:00:00 Dana")
	if len(u.All()) != 2 {
		t.Errorf("expected store unchanged after mutating the copy")
	}
}

func TestSimulatedUploader_SameSecondDifferentEmployees(t *testing.T) {
	u := NewSimulatedUploader()

	for _, name := range []string{"Dana", "Sam"} {
		event := Event{EmployeeName: name, Action: "arrival", Date: "2024-03-15", Time: "09:00:00"}
		if err := u.NotifyAttendance(event); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	if got := len(u.All()); got != 2 {
		t.Errorf("expected both same-second uploads retained, got %d", got)
	}
}
