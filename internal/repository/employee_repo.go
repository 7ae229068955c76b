package repository

import (
	"errors"

	"attendance-station/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(employee *models.Employee) error
	Update(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetByFingerprintID(fingerprintID string) (*models.Employee, error)
	GetAll() ([]*models.Employee, error)
	Count() (int64, error)
}

type GormEmployeeRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormEmployeeRepository(db *gorm.DB) (*GormEmployeeRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.Employee{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate employees table")
		return nil, err
	}

	logger.Info("Employee repository initialized")

	return &GormEmployeeRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormEmployeeRepository) Create(employee *models.Employee) error {
	r.logger.WithField("name", employee.Name).Info("Creating employee")

	if !employee.IsValid() {
		r.logger.Warn("Invalid employee data")
		return errors.New("invalid employee data")
	}

	result := r.db.Create(employee)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to create employee")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":   employee.ID,
		"name": employee.Name,
	}).Info("Employee created successfully")

	return nil
}

func (r *GormEmployeeRepository) Update(employee *models.Employee) error {
	r.logger.WithFields(logrus.Fields{
		"id":   employee.ID,
		"name": employee.Name,
	}).Info("Updating employee")

	if !employee.IsValid() {
		r.logger.Warn("Invalid employee data for update")
		return errors.New("invalid employee data")
	}

	existing, err := r.GetByID(employee.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		r.logger.WithField("id", employee.ID).Warn("Employee not found for update")
		return errors.New("employee not found")
	}

	result := r.db.Save(employee)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update employee")
		return result.Error
	}

	return nil
}

func (r *GormEmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	result := r.db.First(&employee, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Employee not found")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get employee by ID")
		return nil, result.Error
	}

	return &employee, nil
}

func (r *GormEmployeeRepository) GetByFingerprintID(fingerprintID string) (*models.Employee, error) {
	if fingerprintID == "" {
		return nil, nil
	}

	var employee models.Employee
	result := r.db.Where("fingerprint_id = ?", fingerprintID).First(&employee)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("fingerprint_id", fingerprintID).Debug("No employee for fingerprint ID")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get employee by fingerprint ID")
		return nil, result.Error
	}

	return &employee, nil
}

func (r *GormEmployeeRepository) GetAll() ([]*models.Employee, error) {
	var employees []*models.Employee
	result := r.db.Order("name ASC").Find(&employees)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get employees")
		return nil, result.Error
	}

	return employees, nil
}

func (r *GormEmployeeRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&models.Employee{}).Count(&count)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to count employees")
		return 0, result.Error
	}

	return count, nil
}
