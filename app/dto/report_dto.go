package dto

import (
	"time"

	"github.com/wasend/wasend/models"
)

// ListCampaignsRequest carries pagination and filters for campaign history.
type ListCampaignsRequest struct {
	Page        int     `json:"-"`
	Limit       int     `json:"-"`
	UserID      *uint   `json:"-"`
	Niche       *string `json:"-"`
	MessageType *string `json:"-"`
}

// CampaignSummary is the list representation of one campaign.
type CampaignSummary struct {
	UUID                 string     `json:"uuid"`
	Name                 string     `json:"name"`
	Niche                string     `json:"niche"`
	MessageType          string     `json:"message_type"`
	TotalRecipients      int        `json:"total_recipients"`
	SuccessfulDeliveries int        `json:"successful_deliveries"`
	FailedDeliveries     int        `json:"failed_deliveries"`
	StartedAt            time.Time  `json:"started_at"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
}

// NewCampaignSummary maps a campaign row to its list representation.
func NewCampaignSummary(c *models.Campaign) CampaignSummary {
	return CampaignSummary{
		UUID:                 c.UUID.String(),
		Name:                 c.Name,
		Niche:                c.Niche,
		MessageType:          c.MessageType.String(),
		TotalRecipients:      c.TotalRecipients,
		SuccessfulDeliveries: c.SuccessfulDeliveries,
		FailedDeliveries:     c.FailedDeliveries,
		StartedAt:            c.StartedAt,
		EndedAt:              c.EndedAt,
	}
}

// ListCampaignsResponse is a page of campaign summaries.
type ListCampaignsResponse struct {
	Items []CampaignSummary `json:"items"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// ListNumberStatsRequest carries pagination and filters for per-number stats.
type ListNumberStatsRequest struct {
	Page   int     `json:"-"`
	Limit  int     `json:"-"`
	Niche  *string `json:"-"`
	Region *string `json:"-"`
	Status *string `json:"-"`
}

// NumberStat is the list representation of one recipient's delivery history.
type NumberStat struct {
	Number               string    `json:"number"`
	Niche                string    `json:"niche"`
	Region               string    `json:"region,omitempty"`
	LastUsed             time.Time `json:"last_used"`
	MessagesSent         int       `json:"messages_sent"`
	SuccessfulDeliveries int       `json:"successful_deliveries"`
	FailedDeliveries     int       `json:"failed_deliveries"`
	LastMessageStatus    string    `json:"last_message_status"`
}

// NewNumberStat maps a stat row to its list representation.
func NewNumberStat(s *models.PhoneNumberStat) NumberStat {
	return NumberStat{
		Number:               s.Number,
		Niche:                s.Niche,
		Region:               s.Region,
		LastUsed:             s.LastUsed,
		MessagesSent:         s.MessagesSent,
		SuccessfulDeliveries: s.SuccessfulDeliveries,
		FailedDeliveries:     s.FailedDeliveries,
		LastMessageStatus:    s.LastMessageStatus.String(),
	}
}

// ListNumberStatsResponse is a page of per-number stats.
type ListNumberStatsResponse struct {
	Items []NumberStat `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int64        `json:"total"`
}

// SummaryResponse aggregates delivery activity across all campaigns.
type SummaryResponse struct {
	Campaigns            int64 `json:"campaigns"`
	Numbers              int64 `json:"numbers"`
	MessagesSent         int64 `json:"messages_sent"`
	SuccessfulDeliveries int64 `json:"successful_deliveries"`
	FailedDeliveries     int64 `json:"failed_deliveries"`
}

// ChannelStatusResponse reports the live session state of the messaging channel.
type ChannelStatusResponse struct {
	State         string `json:"state"`
	Ready         bool   `json:"ready"`
	Authenticated bool   `json:"authenticated"`
}
