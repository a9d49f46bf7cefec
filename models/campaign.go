// Package models contains domain entities and business models for the bulk-messaging engine
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MessageType represents the kind of payload a campaign delivers
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeVideo    MessageType = "video"
	MessageTypeDocument MessageType = "document"
	MessageTypeAudio    MessageType = "audio"
)

// String returns the string representation of the message type
func (t MessageType) String() string {
	return string(t)
}

// Valid checks if the message type is valid
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo,
		MessageTypeDocument, MessageTypeAudio:
		return true
	default:
		return false
	}
}

// RequiresAttachment reports whether the type needs a media file
func (t MessageType) RequiresAttachment() bool {
	return t.Valid() && t != MessageTypeText
}

// Scan implements the sql.Scanner interface for MessageType
func (t *MessageType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = MessageType(v)
	case []byte:
		*t = MessageType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MessageType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MessageType
func (t MessageType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid MessageType: %s", t)
	}
	return string(t), nil
}

// Campaign represents one bulk-send invocation. Only counters and recipient
// addresses are persisted; message bodies never reach the database.
type Campaign struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UUID                 uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	Name                 string         `gorm:"size:255;not null" json:"name"`
	UserID               *uint          `gorm:"index:idx_campaigns_user_id" json:"user_id,omitempty"`
	Niche                string         `gorm:"size:255;not null;default:'default';index:idx_campaigns_niche" json:"niche"`
	MessageType          MessageType    `gorm:"type:message_type;not null;index:idx_campaigns_message_type" json:"message_type"`
	TotalRecipients      int            `gorm:"not null" json:"total_recipients"`
	SuccessfulDeliveries int            `gorm:"not null;default:0" json:"successful_deliveries"`
	FailedDeliveries     int            `gorm:"not null;default:0" json:"failed_deliveries"`
	Recipients           pq.StringArray `gorm:"type:text[]" json:"recipients,omitempty"`
	StartedAt            time.Time      `gorm:"not null;index:idx_campaigns_started_at" json:"started_at"`
	EndedAt              *time.Time     `gorm:"index:idx_campaigns_ended_at" json:"ended_at,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate() error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now().UTC()
	}
	if c.Niche == "" {
		c.Niche = "default"
	}
	return nil
}

// Finalized reports whether final counts have been written
func (c *Campaign) Finalized() bool {
	return c.EndedAt != nil
}

// CampaignName derives a display name from the message text, falling back to
// a timestamp when the text is blank.
func CampaignName(message string, at time.Time) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return "Campaign " + at.Format("2006-01-02 15:04:05")
	}
	runes := []rune(message)
	if len(runes) > 40 {
		return string(runes[:40]) + "..."
	}
	return message
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint        `json:"id,omitempty"`
	UUID          *uuid.UUID   `json:"uuid,omitempty"`
	UserID        *uint        `json:"user_id,omitempty"`
	Niche         *string      `json:"niche,omitempty"`
	MessageType   *MessageType `json:"message_type,omitempty"`
	StartedAfter  *time.Time   `json:"started_after,omitempty"`
	StartedBefore *time.Time   `json:"started_before,omitempty"`
	Finalized     *bool        `json:"finalized,omitempty"`
}
