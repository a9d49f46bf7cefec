package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// Save inserts a new campaign, filling defaults first
func (r *CampaignRepositoryImpl) Save(ctx context.Context, campaign *models.Campaign) error {
	if err := campaign.BeforeCreate(); err != nil {
		return err
	}
	return r.BaseRepository.Save(ctx, campaign)
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Campaign, error) {
	parsed, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	campaigns, err := r.ByFilter(ctx, models.CampaignFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign by UUID: %w", err)
	}
	if len(campaigns) == 0 {
		return nil, nil
	}
	return campaigns[0], nil
}

// Finalize writes the final counters, recipients and end date of a campaign.
// It is the single post-creation mutation the engine ever performs.
func (r *CampaignRepositoryImpl) Finalize(ctx context.Context, id uint, successful, failed int, recipients []string, endedAt time.Time) error {
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

	err = db.Model(&models.Campaign{}).Where("id = ?", id).Updates(map[string]any{
		"successful_deliveries": successful,
		"failed_deliveries":     failed,
		"recipients":            pq.StringArray(recipients),
		"ended_at":              endedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to finalize campaign %d: %w", id, err)
	}

	return nil
}

// ByFilter retrieves campaigns matching the filter with ordering and pagination
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
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

	var campaigns []*models.Campaign
	if err := db.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaigns by filter: %w", err)
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.applyFilter(r.getDB(ctx).Model(&models.Campaign{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	return count, nil
}

func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Niche != nil {
		db = db.Where("niche = ?", *filter.Niche)
	}
	if filter.MessageType != nil {
		db = db.Where("message_type = ?", *filter.MessageType)
	}
	if filter.StartedAfter != nil {
		db = db.Where("started_at >= ?", *filter.StartedAfter)
	}
	if filter.StartedBefore != nil {
		db = db.Where("started_at <= ?", *filter.StartedBefore)
	}
	if filter.Finalized != nil {
		if *filter.Finalized {
			db = db.Where("ended_at IS NOT NULL")
		} else {
			db = db.Where("ended_at IS NULL")
		}
	}
	return db
}
