package repository

import (
	"strings"
	"time"

	"attendance-station/internal/models"
	"attendance-station/pkg/clock"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateLegacyAttendance converts an old attendance table that stored a
// single timestamp column into the arrival/departure row shape. Each legacy
// timestamp becomes an arrival with no departure. Runs before AutoMigrate and
// is a no-op on current schemas.
func MigrateLegacyAttendance(db *gorm.DB, logger *logrus.Logger) error {
	type columnInfo struct {
		Name string
	}

	var columns []columnInfo
	if err := db.Raw("PRAGMA table_info(attendance)").Scan(&columns).Error; err != nil {
		return err
	}

	hasTimestamp := false
	hasArrival := false
	for _, c := range columns {
		switch c.Name {
		case "timestamp":
			hasTimestamp = true
		case "arrival_time":
			hasArrival = true
		}
	}

	if !hasTimestamp || hasArrival {
		return nil
	}

	logger.Info("Legacy attendance schema detected, migrating")

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("ALTER TABLE attendance RENAME TO attendance_old").Error; err != nil {
			return err
		}
		if err := tx.AutoMigrate(&models.AttendanceRecord{}); err != nil {
			return err
		}

		type legacyRow struct {
			EmployeeID uint
			Timestamp  string
		}

		var rows []legacyRow
		if err := tx.Raw("SELECT employee_id, timestamp FROM attendance_old").Scan(&rows).Error; err != nil {
			return err
		}

		for _, row := range rows {
			date, tod := splitLegacyTimestamp(row.Timestamp)
			record := models.AttendanceRecord{
				EmployeeID:  row.EmployeeID,
				Date:        date,
				ArrivalTime: &tod,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec("DROP TABLE IF EXISTS attendance_old").Error; err != nil {
			return err
		}

		logger.WithField("rows", len(rows)).Info("Legacy attendance rows migrated")
		return nil
	})
}

func splitLegacyTimestamp(ts string) (date string, timeOfDay string) {
	if parsed, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
		return clock.Date(parsed), clock.TimeOfDay(parsed)
	}

	// Unparseable values keep whatever date prefix they have.
	fields := strings.Fields(ts)
	if len(fields) > 0 {
		date = fields[0]
	}
	return date, ts
}
