package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
)

type WeekRecordRepository interface {
	Create(ctx context.Context, record *models.WeekRecord) error
	GetByID(ctx context.Context, id string) (*models.WeekRecord, error)
	GetByWorkerAndWeek(ctx context.Context, workerID, weekID uint) (*models.WeekRecord, error)
	GetByWeekAndWorkplace(ctx context.Context, weekID, workplaceID uint) ([]*models.WeekRecord, error)
	GetByWorker(ctx context.Context, workerID uint, page, limit int) ([]*models.WeekRecord, int64, error)
	UpdateFields(ctx context.Context, id string, mutate func(*models.WeekRecord) error) (*models.WeekRecord, error)
	SetPaid(ctx context.Context, id string, from, to bool) error
	DeleteByID(ctx context.Context, id string) error
}

type GormWeekRecordRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWeekRecordRepository(db *gorm.DB) (*GormWeekRecordRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.WeekRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate week_records table")
		return nil, err
	}

	logger.Info("Week record repository initialized")

	return &GormWeekRecordRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormWeekRecordRepository) Create(ctx context.Context, record *models.WeekRecord) error {
	r.logger.WithFields(logrus.Fields{
		"worker_id":    record.WorkerID,
		"week_id":      record.WeekID,
		"workplace_id": record.WorkplaceID,
	}).Info("Creating week record")

	if !record.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"worker_id": record.WorkerID,
			"week_id":   record.WeekID,
		}).Warn("Invalid week record data")
		return ErrInvalidWeekRecord
	}

	existing, err := r.GetByWorkerAndWeek(ctx, record.WorkerID, record.WeekID)
	if err != nil {
		r.logger.WithError(err).Error("Failed to check existing week record")
		return err
	}
	if existing != nil {
		r.logger.WithFields(logrus.Fields{
			"worker_id": record.WorkerID,
			"week_id":   record.WeekID,
		}).Warn("Week record already exists for this worker and week")
		return ErrDuplicateRecord
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create week record")
		return err
	}

	r.logger.WithField("id", record.ID).Info("Week record created successfully")
	return nil
}

func (r *GormWeekRecordRepository) GetByID(ctx context.Context, id string) (*models.WeekRecord, error) {
	var record models.WeekRecord
	result := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Week").
		Where("id = ?", id).
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Week record not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week record by ID")
		return nil, result.Error
	}
	return &record, nil
}

func (r *GormWeekRecordRepository) GetByWorkerAndWeek(ctx context.Context, workerID, weekID uint) (*models.WeekRecord, error) {
	var record models.WeekRecord
	result := r.db.WithContext(ctx).
		Where("worker_id = ? AND week_id = ?", workerID, weekID).
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week record by worker and week")
		return nil, result.Error
	}
	return &record, nil
}

func (r *GormWeekRecordRepository) GetByWeekAndWorkplace(ctx context.Context, weekID, workplaceID uint) ([]*models.WeekRecord, error) {
	var records []*models.WeekRecord
	result := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Week").
		Where("week_id = ? AND workplace_id = ?", weekID, workplaceID).
		Order("created_at ASC, id ASC").
		Find(&records)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week records by week and workplace")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"week_id":      weekID,
		"workplace_id": workplaceID,
		"count":        len(records),
	}).Debug("Retrieved week records")
	return records, nil
}

// GetByWorker returns one page of a worker's records, newest week first,
// together with the total number of records.
func (r *GormWeekRecordRepository) GetByWorker(ctx context.Context, workerID uint, page, limit int) ([]*models.WeekRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.WeekRecord{}).
		Where("worker_id = ?", workerID).
		Count(&total).Error; err != nil {
		r.logger.WithError(err).Error("Failed to count week records by worker")
		return nil, 0, err
	}

	var records []*models.WeekRecord
	result := r.db.WithContext(ctx).
		Joins("Week").
		Preload("Worker").
		Where("week_records.worker_id = ?", workerID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Week", Name: "start_date"}, Desc: true}).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week records by worker")
		return nil, 0, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"worker_id": workerID,
		"page":      page,
		"limit":     limit,
		"count":     len(records),
		"total":     total,
	}).Debug("Retrieved week records by worker")
	return records, total, nil
}

// UpdateFields loads the record, lets mutate change it and saves it in one
// transaction. Nothing is written if mutate fails or the result is invalid.
func (r *GormWeekRecordRepository) UpdateFields(ctx context.Context, id string, mutate func(*models.WeekRecord) error) (*models.WeekRecord, error) {
	r.logger.WithField("id", id).Info("Updating week record")

	var record models.WeekRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).First(&record)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		if result.Error != nil {
			return result.Error
		}

		if err := mutate(&record); err != nil {
			return err
		}
		if !record.IsValid() {
			return ErrInvalidWeekRecord
		}

		return tx.Omit(clause.Associations).Save(&record).Error
	})
	if err != nil {
		r.logger.WithError(err).WithField("id", id).Warn("Week record update rolled back")
		return nil, err
	}

	r.logger.WithField("id", id).Info("Week record updated successfully")
	return r.GetByID(ctx, id)
}

// SetPaid flips is_paid from one value to the other. It fails with
// ErrPaidStateChanged when the stored flag no longer equals from.
func (r *GormWeekRecordRepository) SetPaid(ctx context.Context, id string, from, to bool) error {
	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("Setting week record payment state")

	result := r.db.WithContext(ctx).Model(&models.WeekRecord{}).
		Where("id = ? AND is_paid = ?", id, from).
		Update("is_paid", to)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to set payment state")
		return result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			r.logger.WithField("id", id).Warn("Week record not found for payment")
			return ErrRecordNotFound
		}
		r.logger.WithField("id", id).Warn("Payment state changed concurrently")
		return ErrPaidStateChanged
	}

	r.logger.WithFields(logrus.Fields{
		"id":      id,
		"is_paid": to,
	}).Info("Payment state updated successfully")
	return nil
}

func (r *GormWeekRecordRepository) DeleteByID(ctx context.Context, id string) error {
	r.logger.WithField("id", id).Info("Deleting week record by ID")

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WeekRecord{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete week record")
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Warn("Week record not found for deletion")
		return ErrRecordNotFound
	}

	r.logger.WithField("id", id).Info("Week record deleted successfully")
	return nil
}
