package notify

import (
	"fmt"
	"sync"
)

// SimulatedUploader stands in for a remote attendance backend when none is
// configured. Uploads are kept in memory so the dashboard can still show
// what would have been sent.
type SimulatedUploader struct {
	mu      sync.Mutex
	entries map[string]Event
}

func NewSimulatedUploader() *SimulatedUploader {
	return &SimulatedUploader{entries: make(map[string]Event)}
}

func (u *SimulatedUploader) Name() string {
	return "upload"
}

func (u *SimulatedUploader) NotifyAttendance(event Event) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	// Two employees can be marked in the same second; the name keeps their
	// entries apart.
	key := fmt.Sprintf("%s %s %s", event.Date, event.Time, event.EmployeeName)
	u.entries[key] = event
	return nil
}

// All returns a copy of every simulated upload.
func (u *SimulatedUploader) All() map[string]Event {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]Event, len(u.entries))
	for k, v := range u.entries {
		out[k] = v
	}
	return out
}
