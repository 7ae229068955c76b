package repository

import (
	"errors"

	"attendance-station/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	Upsert(key, value string) error
	GetAll() ([]*models.Setting, error)
}

type GormSettingRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSettingRepository(db *gorm.DB) (*GormSettingRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate settings table")
		return nil, err
	}

	return &GormSettingRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormSettingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	result := r.db.Where("key = ?", key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get setting")
		return nil, result.Error
	}

	return &setting, nil
}

func (r *GormSettingRepository) Upsert(key, value string) error {
	if key == "" {
		return errors.New("setting key is required")
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value})

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to upsert setting")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"key":   key,
		"value": value,
	}).Debug("Setting upserted")

	return nil
}

func (r *GormSettingRepository) GetAll() ([]*models.Setting, error) {
	var settings []*models.Setting
	result := r.db.Order("key ASC").Find(&settings)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get settings")
		return nil, result.Error
	}

	return settings, nil
}
