package business_flow

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrEmptyRecipients    = errors.New("recipient list is empty")
	ErrMessageRequired    = errors.New("message text is required")
	ErrAttachmentRequired = errors.New("an attachment is required for this message type")
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrVideoTooLarge      = errors.New("video file exceeds the 64 MB limit")
	ErrChannelUnavailable = errors.New("messaging channel is not connected")
	ErrCampaignNotFound   = errors.New("campaign not found")
)

// BusinessError represents a business logic error with structured information
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err stems from rejected batch input, as
// opposed to an internal failure. Handlers use it to pick the status code.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyRecipients,
		ErrMessageRequired,
		ErrAttachmentRequired,
		ErrInvalidMessageType,
		ErrVideoTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
