package dto

import "strings"

// Outcome status values reported per recipient
const (
	OutcomeStatusSuccess = "success"
	OutcomeStatusError   = "error"
)

// SendBatchRequest contains a validated batch submission passed from handler
// to flow. FilePath points at the attachment already written to disk; it is
// empty for text messages.
type SendBatchRequest struct {
	Numbers     []string `json:"-"`
	Message     string   `json:"-"`
	MessageType string   `json:"-"`
	UserID      *uint    `json:"-"`
	Niche       string   `json:"-"`
	FilePath    string   `json:"-"`
	FileName    string   `json:"-"`
	FileSize    int64    `json:"-"`
}

// DeliveryOutcome reports the final result for one recipient.
type DeliveryOutcome struct {
	OriginalNumber  string `json:"originalNumber"`
	FormattedNumber string `json:"formattedNumber"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

// SendBatchResponse is returned by the batch send endpoint. Results holds one
// entry per submitted recipient, in submission order.
type SendBatchResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Results    []DeliveryOutcome `json:"results"`
	CampaignID *uint             `json:"campaignId,omitempty"`
	Note       string            `json:"note,omitempty"`
}

// ParseRecipientList splits a raw numbers field on newlines and commas,
// dropping blank entries. Clients submit either one number per line or a
// comma-separated list.
func ParseRecipientList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	numbers := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}
