package ledger

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"attendance-station/internal/models"
	"attendance-station/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestLedger(t *testing.T) (*Ledger, *stubClock, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		t.Fatalf("failed to create attendance repository: %v", err)
	}

	clk := &stubClock{t: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	return New(repo, clk), clk, db
}

func rowsForDay(t *testing.T, db *gorm.DB, employeeID uint, date string) []models.AttendanceRecord {
	t.Helper()

	var rows []models.AttendanceRecord
	if err := db.Where("employee_id = ? AND date = ?", employeeID, date).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("failed to query rows: %v", err)
	}
	return rows
}

func TestRecordAuto_FirstEventIsArrival(t *testing.T) {
	l, _, db := newTestLedger(t)

	result, err := l.RecordAuto(7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Action != ActionArrival {
		t.Errorf("expected action %q, got %q", ActionArrival, result.Action)
	}
	if result.Date != "2024-03-15" || result.Time != "09:00:00" {
		t.Errorf("unexpected result stamp: %s %s", result.Date, result.Time)
	}

	rows := rowsForDay(t, db, 7, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ArrivalTime == nil || *rows[0].ArrivalTime != "09:00:00" {
		t.Errorf("expected arrival 09:00:00, got %v", rows[0].ArrivalTime)
	}
	if rows[0].DepartureTime != nil {
		t.Errorf("expected no departure, got %v", *rows[0].DepartureTime)
	}
}

func TestRecordAuto_ToggleScenario(t *testing.T) {
	l, clk, db := newTestLedger(t)

	// 09:00 opens the day.
	if res, err := l.RecordAuto(7); err != nil || res.Action != ActionArrival {
		t.Fatalf("first call: expected arrival, got %v / %v", res, err)
	}

	// 17:30 closes the same row.
	clk.set(time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC))
	res, err := l.RecordAuto(7)
	if err != nil {
		t.Fatalf("second call: expected no error, got %v", err)
	}
	if res.Action != ActionDeparture {
		t.Errorf("second call: expected departure, got %q", res.Action)
	}

	rows := rowsForDay(t, db, 7, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after close, got %d", len(rows))
	}
	if *rows[0].ArrivalTime != "09:00:00" || *rows[0].DepartureTime != "17:30:00" {
		t.Errorf("unexpected closed row: %v %v", *rows[0].ArrivalTime, *rows[0].DepartureTime)
	}

	// 18:00 starts a new session row, not a mutation of the closed one.
	clk.set(time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC))
	res, err = l.RecordAuto(7)
	if err != nil {
		t.Fatalf("third call: expected no error, got %v", err)
	}
	if res.Action != ActionArrival {
		t.Errorf("third call: expected arrival, got %q", res.Action)
	}

	rows = rowsForDay(t, db, 7, "2024-03-15")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if *rows[0].ArrivalTime != "09:00:00" || *rows[0].DepartureTime != "17:30:00" {
		t.Errorf("closed row changed: %v %v", *rows[0].ArrivalTime, *rows[0].DepartureTime)
	}
	if *rows[1].ArrivalTime != "18:00:00" || rows[1].DepartureTime != nil {
		t.Errorf("unexpected new session row: %v %v", *rows[1].ArrivalTime, rows[1].DepartureTime)
	}
}

func TestRecordArrival_DuplicateIsNoOp(t *testing.T) {
	l, clk, db := newTestLedger(t)

	if _, err := l.RecordArrival(3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	clk.set(time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC))
	if _, err := l.RecordArrival(3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows := rowsForDay(t, db, 3, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if *rows[0].ArrivalTime != "09:00:00" {
		t.Errorf("duplicate arrival mutated the row: %v", *rows[0].ArrivalTime)
	}
	if rows[0].DepartureTime != nil {
		t.Errorf("duplicate arrival set a departure: %v", *rows[0].DepartureTime)
	}
}

func TestRecordDeparture_WithoutArrivalCreatesOrphanRow(t *testing.T) {
	l, _, db := newTestLedger(t)

	result, err := l.RecordDeparture(4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Action != ActionDeparture {
		t.Errorf("expected departure, got %q", result.Action)
	}

	rows := rowsForDay(t, db, 4, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ArrivalTime != nil {
		t.Errorf("expected nil arrival, got %v", *rows[0].ArrivalTime)
	}
	if rows[0].DepartureTime == nil || *rows[0].DepartureTime != "09:00:00" {
		t.Errorf("expected departure 09:00:00, got %v", rows[0].DepartureTime)
	}
}

func TestRecordArrival_FillsOrphanDepartureRow(t *testing.T) {
	l, clk, db := newTestLedger(t)

	if _, err := l.RecordDeparture(5); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	clk.set(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))
	if _, err := l.RecordArrival(5); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rows := rowsForDay(t, db, 5, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected the orphan row to be filled, got %d rows", len(rows))
	}
	if rows[0].ArrivalTime == nil || *rows[0].ArrivalTime != "09:30:00" {
		t.Errorf("expected arrival 09:30:00, got %v", rows[0].ArrivalTime)
	}
	if rows[0].DepartureTime == nil || *rows[0].DepartureTime != "09:00:00" {
		t.Errorf("departure changed: %v", rows[0].DepartureTime)
	}
}

func TestRecordAuto_SerializedUnderConcurrency(t *testing.T) {
	l, _, db := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.RecordAuto(9); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	// One call must open and the other close the same row; never two
	// arrival rows.
	rows := rowsForDay(t, db, 9, "2024-03-15")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ArrivalTime == nil || rows[0].DepartureTime == nil {
		t.Errorf("expected a closed row, got %v / %v", rows[0].ArrivalTime, rows[0].DepartureTime)
	}
}

func TestTodaysRecordAndCount(t *testing.T) {
	l, _, _ := newTestLedger(t)

	record, err := l.TodaysRecord(7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record, got %+v", record)
	}

	if _, err := l.RecordAuto(7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := l.RecordAuto(8); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	record, err = l.TodaysRecord(7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record == nil || !record.IsOpen() {
		t.Errorf("expected an open record, got %+v", record)
	}

	count, err := l.TodaysCount()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}
