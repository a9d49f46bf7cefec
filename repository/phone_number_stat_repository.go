package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wasend/wasend/models"
	"gorm.io/gorm"
)

// PhoneNumberStatRepositoryImpl implements the PhoneNumberStatRepository interface
type PhoneNumberStatRepositoryImpl struct {
	*BaseRepository[models.PhoneNumberStat, models.PhoneNumberStatFilter]
}

// NewPhoneNumberStatRepository creates a new phone number stat repository
func NewPhoneNumberStatRepository(db *gorm.DB) PhoneNumberStatRepository {
	return &PhoneNumberStatRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PhoneNumberStat, models.PhoneNumberStatFilter](db),
	}
}

// ByNumber retrieves the stat row for an exact number string
func (r *PhoneNumberStatRepositoryImpl) ByNumber(ctx context.Context, number string) (*models.PhoneNumberStat, error) {
	db := r.getDB(ctx)

	var stat models.PhoneNumberStat
	err := db.Where("number = ?", number).First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stat for number %s: %w", number, err)
	}

	return &stat, nil
}

// Update persists the mutated counters of an existing stat row
func (r *PhoneNumberStatRepositoryImpl) Update(ctx context.Context, stat *models.PhoneNumberStat) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(stat).Error
	if err != nil {
		return fmt.Errorf("failed to update stat for number %s: %w", stat.Number, err)
	}

	return nil
}

// Totals aggregates counters across every tracked number
func (r *PhoneNumberStatRepositoryImpl) Totals(ctx context.Context) (*StatTotals, error) {
	db := r.getDB(ctx)

	var totals StatTotals
	err := db.Model(&models.PhoneNumberStat{}).
		Select("COUNT(*) AS numbers, COALESCE(SUM(messages_sent), 0) AS messages_sent, COALESCE(SUM(successful_deliveries), 0) AS successful_deliveries, COALESCE(SUM(failed_deliveries), 0) AS failed_deliveries").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	return &totals, nil
}

// ByFilter retrieves stat rows matching the filter with ordering and pagination
func (r *PhoneNumberStatRepositoryImpl) ByFilter(ctx context.Context, filter models.PhoneNumberStatFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberStat, error) {
	db := r.applyFilter(r.getDB(ctx), filter)

	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var stats []*models.PhoneNumberStat
	if err := db.Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to find stats by filter: %w", err)
	}

	return stats, nil
}

// Count returns the number of stat rows matching the filter
func (r *PhoneNumberStatRepositoryImpl) Count(ctx context.Context, filter models.PhoneNumberStatFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.PhoneNumberStat{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stats: %w", err)
	}

	return count, nil
}

func (r *PhoneNumberStatRepositoryImpl) applyFilter(db *gorm.DB, filter models.PhoneNumberStatFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Number != nil {
		db = db.Where("number = ?", *filter.Number)
	}
	if filter.Niche != nil {
		db = db.Where("niche = ?", *filter.Niche)
	}
	if filter.Region != nil {
		db = db.Where("region = ?", *filter.Region)
	}
	if filter.Status != nil {
		db = db.Where("last_message_status = ?", *filter.Status)
	}
	if filter.UsedAfter != nil {
		db = db.Where("last_used >= ?", *filter.UsedAfter)
	}
	if filter.UsedBefore != nil {
		db = db.Where("last_used <= ?", *filter.UsedBefore)
	}
	return db
}
