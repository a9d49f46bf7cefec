// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/wasend/wasend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CampaignRepository defines operations for campaign records
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	Finalize(ctx context.Context, id uint, successful, failed int, recipients []string, endedAt time.Time) error
}

// PhoneNumberStatRepository defines operations for per-number delivery statistics
type PhoneNumberStatRepository interface {
	Repository[models.PhoneNumberStat, models.PhoneNumberStatFilter]
	ByNumber(ctx context.Context, number string) (*models.PhoneNumberStat, error)
	Update(ctx context.Context, stat *models.PhoneNumberStat) error
	Totals(ctx context.Context) (*StatTotals, error)
}

// StatTotals aggregates the ledger across all numbers
type StatTotals struct {
	Numbers              int64 `json:"numbers"`
	MessagesSent         int64 `json:"messages_sent"`
	SuccessfulDeliveries int64 `json:"successful_deliveries"`
	FailedDeliveries     int64 `json:"failed_deliveries"`
}

// UserRepository defines read-only operations for dashboard user profiles
type UserRepository interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
