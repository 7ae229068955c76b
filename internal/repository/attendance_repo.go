package repository

import (
	"errors"

	"attendance-station/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	Insert(record *models.AttendanceRecord) error
	Save(record *models.AttendanceRecord) error
	GetLatestForDay(employeeID uint, date string) (*models.AttendanceRecord, error)
	GetForDay(employeeID uint, date string) ([]*models.AttendanceRecord, error)
	GetAll() ([]*models.AttendanceRecord, error)
	CountForDay(date string) (int64, error)

	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(fn func(repo AttendanceRepository) error) error
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.AttendanceRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance table")
		return nil, err
	}

	logger.Info("Attendance repository initialized")

	return &GormAttendanceRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAttendanceRepository) Transaction(fn func(repo AttendanceRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormAttendanceRepository{db: tx, logger: r.logger})
	})
}

func (r *GormAttendanceRepository) Insert(record *models.AttendanceRecord) error {
	if !record.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"employee_id": record.EmployeeID,
			"date":        record.Date,
		}).Warn("Invalid attendance record data")
		return errors.New("invalid attendance record data")
	}

	result := r.db.Create(record)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to insert attendance record")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":          record.ID,
		"employee_id": record.EmployeeID,
		"date":        record.Date,
	}).Info("Attendance record inserted")

	return nil
}

func (r *GormAttendanceRepository) Save(record *models.AttendanceRecord) error {
	if !record.IsValid() {
		return errors.New("invalid attendance record data")
	}

	result := r.db.Save(record)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to save attendance record")
		return result.Error
	}

	return nil
}

// GetLatestForDay returns the most recent row of the day slot, by insertion
// order. The latest row defines the day's state.
func (r *GormAttendanceRepository) GetLatestForDay(employeeID uint, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	result := r.db.Where("employee_id = ? AND date = ?", employeeID, date).
		Order("id DESC").
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"employee_id": employeeID,
			"date":        date,
		}).Debug("No attendance record for day")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get latest attendance record")
		return nil, result.Error
	}

	return &record, nil
}

// GetForDay returns all rows of the day slot, most recent first.
func (r *GormAttendanceRepository) GetForDay(employeeID uint, date string) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	result := r.db.Where("employee_id = ? AND date = ?", employeeID, date).
		Order("id DESC").
		Find(&records)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance records for day")
		return nil, result.Error
	}

	return records, nil
}

// GetAll returns every record, reverse-chronological by date, then by
// employee name.
func (r *GormAttendanceRepository) GetAll() ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	result := r.db.Preload("Employee").
		Joins("JOIN employees ON employees.id = attendance.employee_id").
		Order("attendance.date DESC, employees.name ASC").
		Find(&records)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance records")
		return nil, result.Error
	}

	r.logger.WithField("count", len(records)).Debug("Retrieved attendance records")

	return records, nil
}

func (r *GormAttendanceRepository) CountForDay(date string) (int64, error) {
	var count int64
	result := r.db.Model(&models.AttendanceRecord{}).
		Where("date = ?", date).
		Count(&count)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to count attendance records for day")
		return 0, result.Error
	}

	return count, nil
}
