// Package business_flow contains the campaign delivery flows.
package business_flow

import "time"

// ClientMetadata captures request-level information recorded on audit entries.
type ClientMetadata struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// NewClientMetadata builds metadata from request attributes.
func NewClientMetadata(ip, userAgent, requestID string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ip,
		UserAgent: userAgent,
		RequestID: requestID,
	}
}

// Clock returns the current UTC time. Flows call it instead of time.Now so
// tests can substitute a fixed instant.
type Clock func() time.Time
