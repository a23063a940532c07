package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
)

type WorkplaceRepository interface {
	Create(ctx context.Context, workplace *models.Workplace) error
	GetByID(ctx context.Context, id uint) (*models.Workplace, error)
	GetByName(ctx context.Context, name string) (*models.Workplace, error)
	GetAll(ctx context.Context) ([]*models.Workplace, error)
}

type GormWorkplaceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkplaceRepository(db *gorm.DB) (*GormWorkplaceRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.Workplace{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate workplaces table")
		return nil, err
	}

	logger.Info("Workplace repository initialized")

	return &GormWorkplaceRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormWorkplaceRepository) Create(ctx context.Context, workplace *models.Workplace) error {
	r.logger.WithField("name", workplace.Name).Info("Creating workplace")

	if !workplace.IsValid() {
		r.logger.WithField("name", workplace.Name).Warn("Invalid workplace data")
		return ErrInvalidWorkplace
	}

	existing, err := r.GetByName(ctx, workplace.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		r.logger.WithField("name", workplace.Name).Warn("Workplace already exists")
		return ErrDuplicateName
	}

	if err := r.db.WithContext(ctx).Create(workplace).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create workplace")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":   workplace.ID,
		"name": workplace.Name,
	}).Info("Workplace created successfully")
	return nil
}

func (r *GormWorkplaceRepository) GetByID(ctx context.Context, id uint) (*models.Workplace, error) {
	var workplace models.Workplace
	result := r.db.WithContext(ctx).First(&workplace, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Workplace not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get workplace by ID")
		return nil, result.Error
	}
	return &workplace, nil
}

func (r *GormWorkplaceRepository) GetByName(ctx context.Context, name string) (*models.Workplace, error) {
	var workplace models.Workplace
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&workplace)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get workplace by name")
		return nil, result.Error
	}
	return &workplace, nil
}

func (r *GormWorkplaceRepository) GetAll(ctx context.Context) ([]*models.Workplace, error) {
	var workplaces []*models.Workplace
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&workplaces).Error; err != nil {
		r.logger.WithError(err).Error("Failed to get workplaces")
		return nil, err
	}

	r.logger.WithField("count", len(workplaces)).Debug("Retrieved workplaces")
	return workplaces, nil
}
