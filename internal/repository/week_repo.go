package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
)

type WeekRepository interface {
	BulkCreate(ctx context.Context, weeks []*models.Week) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Week, error)
	GetByYear(ctx context.Context, year int) ([]*models.Week, error)
	GetByYearAndNumber(ctx context.Context, year, number int) (*models.Week, error)
	FindByDate(ctx context.Context, date time.Time) (*models.Week, error)
	Neighbours(ctx context.Context, week *models.Week) (next, prev *uint, err error)
	YearNeighbours(ctx context.Context, year int) (next, prev *int, err error)
	Years(ctx context.Context) ([]int, error)
}

type GormWeekRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWeekRepository(db *gorm.DB) (*GormWeekRepository, error) {
	logger := logging.New()

	if err := db.AutoMigrate(&models.Week{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate weeks table")
		return nil, err
	}

	logger.Info("Week repository initialized")

	return &GormWeekRepository{
		db:     db,
		logger: logger,
	}, nil
}

// BulkCreate inserts the weeks, skipping any (year, number) already stored.
// It returns the number of weeks actually inserted.
func (r *GormWeekRepository) BulkCreate(ctx context.Context, weeks []*models.Week) (int64, error) {
	if len(weeks) == 0 {
		return 0, nil
	}

	for _, w := range weeks {
		if !w.IsValid() {
			r.logger.WithFields(logrus.Fields{
				"year":   w.Year,
				"number": w.Number,
			}).Warn("Invalid week data")
			return 0, ErrInvalidWeek
		}
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}, {Name: "number"}},
			DoNothing: true,
		}).
		Create(&weeks)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to create weeks")
		return 0, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"requested": len(weeks),
		"created":   result.RowsAffected,
	}).Info("Weeks created")
	return result.RowsAffected, nil
}

func (r *GormWeekRepository) GetByID(ctx context.Context, id uint) (*models.Week, error) {
	var week models.Week
	result := r.db.WithContext(ctx).First(&week, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Week not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week by ID")
		return nil, result.Error
	}
	return &week, nil
}

func (r *GormWeekRepository) GetByYear(ctx context.Context, year int) ([]*models.Week, error) {
	var weeks []*models.Week
	result := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("number ASC").
		Find(&weeks)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get weeks by year")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"year":  year,
		"count": len(weeks),
	}).Debug("Retrieved weeks by year")
	return weeks, nil
}

func (r *GormWeekRepository) GetByYearAndNumber(ctx context.Context, year, number int) (*models.Week, error) {
	var week models.Week
	result := r.db.WithContext(ctx).Where("year = ? AND number = ?", year, number).First(&week)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"year":   year,
			"number": number,
		}).Debug("Week not found for year/number")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get week by year and number")
		return nil, result.Error
	}
	return &week, nil
}

// FindByDate returns the stored week containing date. Weeks are keyed by ISO
// year and number, so a Sunday resolves to the week that just ended.
func (r *GormWeekRepository) FindByDate(ctx context.Context, date time.Time) (*models.Week, error) {
	year, number := date.ISOWeek()
	return r.GetByYearAndNumber(ctx, year, number)
}

// Neighbours returns the ids of the stored weeks just after and just before
// week. A nil id means there is none.
func (r *GormWeekRepository) Neighbours(ctx context.Context, week *models.Week) (next, prev *uint, err error) {
	var n, p models.Week

	result := r.db.WithContext(ctx).
		Where("year > ? OR (year = ? AND number > ?)", week.Year, week.Year, week.Number).
		Order("year ASC, number ASC").
		Limit(1).
		Find(&n)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get next week")
		return nil, nil, result.Error
	}
	if result.RowsAffected > 0 {
		next = &n.ID
	}

	result = r.db.WithContext(ctx).
		Where("year < ? OR (year = ? AND number < ?)", week.Year, week.Year, week.Number).
		Order("year DESC, number DESC").
		Limit(1).
		Find(&p)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get previous week")
		return nil, nil, result.Error
	}
	if result.RowsAffected > 0 {
		prev = &p.ID
	}

	return next, prev, nil
}

// YearNeighbours returns the closest years with generated weeks on each side
// of year.
func (r *GormWeekRepository) YearNeighbours(ctx context.Context, year int) (next, prev *int, err error) {
	next, err = r.scanYear(ctx, "MIN(year)", "year > ?", year)
	if err != nil {
		return nil, nil, err
	}
	prev, err = r.scanYear(ctx, "MAX(year)", "year < ?", year)
	if err != nil {
		return nil, nil, err
	}
	return next, prev, nil
}

func (r *GormWeekRepository) scanYear(ctx context.Context, aggregate, cond string, year int) (*int, error) {
	var v sql.NullInt64
	row := r.db.WithContext(ctx).Model(&models.Week{}).Select(aggregate).Where(cond, year).Row()
	if err := row.Scan(&v); err != nil {
		r.logger.WithError(err).Error("Failed to get neighbouring year")
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	y := int(v.Int64)
	return &y, nil
}

func (r *GormWeekRepository) Years(ctx context.Context) ([]int, error) {
	var years []int
	result := r.db.WithContext(ctx).Model(&models.Week{}).
		Distinct("year").
		Order("year ASC").
		Pluck("year", &years)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get years")
		return nil, result.Error
	}
	return years, nil
}
