package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// MessageStatus represents the outcome of the most recent attempt against a number
type MessageStatus string

const (
	MessageStatusSuccess MessageStatus = "success"
	MessageStatusFailed  MessageStatus = "failed"
)

// String returns the string representation of the status
func (s MessageStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s MessageStatus) Valid() bool {
	return s == MessageStatusSuccess || s == MessageStatusFailed
}

// Scan implements the sql.Scanner interface for MessageStatus
func (s *MessageStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = MessageStatus(v)
	case []byte:
		*s = MessageStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MessageStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MessageStatus
func (s MessageStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid MessageStatus: %s", s)
	}
	return string(s), nil
}

// PhoneNumberStat keeps one row per unique recipient address ever contacted,
// independent of campaign. Counters are monotonic; niche and status are
// last-write-wins.
type PhoneNumberStat struct {
	ID                   uint          `gorm:"primaryKey" json:"id"`
	Number               string        `gorm:"size:64;not null;uniqueIndex:uk_phone_number_stats_number" json:"number"`
	Niche                string        `gorm:"size:255;not null;default:'default';index:idx_phone_number_stats_niche" json:"niche"`
	Region               string        `gorm:"size:8" json:"region,omitempty"`
	LastUsed             time.Time     `gorm:"not null;index:idx_phone_number_stats_last_used" json:"last_used"`
	MessagesSent         int           `gorm:"not null;default:0" json:"messages_sent"`
	SuccessfulDeliveries int           `gorm:"not null;default:0" json:"successful_deliveries"`
	FailedDeliveries     int           `gorm:"not null;default:0" json:"failed_deliveries"`
	LastMessageStatus    MessageStatus `gorm:"type:message_status;not null" json:"last_message_status"`
}

// TableName returns the table name for the model
func (PhoneNumberStat) TableName() string {
	return "phone_number_stats"
}

// Apply folds one attempt into the row: counters go up, the rest is overwritten.
func (p *PhoneNumberStat) Apply(success bool, niche string, at time.Time) {
	p.MessagesSent++
	if success {
		p.SuccessfulDeliveries++
		p.LastMessageStatus = MessageStatusSuccess
	} else {
		p.FailedDeliveries++
		p.LastMessageStatus = MessageStatusFailed
	}
	p.LastUsed = at
	if niche != "" {
		p.Niche = niche
	}
}

// PhoneNumberStatFilter represents filter criteria for per-number stats
type PhoneNumberStatFilter struct {
	ID         *uint          `json:"id,omitempty"`
	Number     *string        `json:"number,omitempty"`
	Niche      *string        `json:"niche,omitempty"`
	Region     *string        `json:"region,omitempty"`
	Status     *MessageStatus `json:"status,omitempty"`
	UsedAfter  *time.Time     `json:"used_after,omitempty"`
	UsedBefore *time.Time     `json:"used_before,omitempty"`
}
