package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	GetByID(ctx context.Context, id uint) (*models.Worker, error)
	GetByWorkplace(ctx context.Context, workplaceID uint) ([]*models.Worker, error)
}

type GormWorkerRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkerRepository(db *gorm.DB) (*GormWorkerRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.Worker{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate workers table")
		return nil, err
	}

	logger.Info("Worker repository initialized")

	return &GormWorkerRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormWorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	r.logger.WithFields(logrus.Fields{
		"first_name":   worker.FirstName,
		"last_name":    worker.LastName,
		"workplace_id": worker.WorkplaceID,
	}).Info("Creating worker")

	if !worker.IsValid() {
		r.logger.WithField("first_name", worker.FirstName).Warn("Invalid worker data")
		return ErrInvalidWorker
	}

	if err := r.db.WithContext(ctx).Create(worker).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create worker")
		return err
	}

	r.logger.WithField("id", worker.ID).Info("Worker created successfully")
	return nil
}

func (r *GormWorkerRepository) GetByID(ctx context.Context, id uint) (*models.Worker, error) {
	var worker models.Worker
	result := r.db.WithContext(ctx).First(&worker, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Worker not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get worker by ID")
		return nil, result.Error
	}
	return &worker, nil
}

func (r *GormWorkerRepository) GetByWorkplace(ctx context.Context, workplaceID uint) ([]*models.Worker, error) {
	var workers []*models.Worker
	query := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC")
	if workplaceID != 0 {
		query = query.Where("workplace_id = ?", workplaceID)
	}

	if err := query.Find(&workers).Error; err != nil {
		r.logger.WithError(err).Error("Failed to get workers by workplace")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"workplace_id": workplaceID,
		"count":        len(workers),
	}).Debug("Retrieved workers")
	return workers, nil
}
