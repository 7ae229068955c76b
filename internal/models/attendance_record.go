package models

import (
	"time"
)

// AttendanceRecord is one arrival/departure row of a day slot. A day may hold
// more than one row per employee: each closed row is a finished session and a
// later arrival starts a new one. The state of the day is the state of the
// highest-id row for that date.
type AttendanceRecord struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	EmployeeID uint   `gorm:"not null;index" json:"employee_id"`
	Date       string `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD

	ArrivalTime   *string `gorm:"type:varchar(8)" json:"arrival_time"`   // HH:MM:SS
	DepartureTime *string `gorm:"type:varchar(8)" json:"departure_time"` // HH:MM:SS

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Employee Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (AttendanceRecord) TableName() string {
	return "attendance"
}

// IsOpen reports an arrival with no departure yet.
func (r *AttendanceRecord) IsOpen() bool {
	return r.ArrivalTime != nil && r.DepartureTime == nil
}

// IsClosed reports a finished session.
func (r *AttendanceRecord) IsClosed() bool {
	return r.ArrivalTime != nil && r.DepartureTime != nil
}

// IsValid checks the row references an employee and carries a date.
func (r *AttendanceRecord) IsValid() bool {
	if r.EmployeeID == 0 {
		return false
	}
	if r.Date == "" {
		return false
	}
	return true
}
