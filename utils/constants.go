package utils

import (
	"time"
)

// Channel addressing constants
const (
	// CountryCallingCode is the calling code of the target country (Morocco)
	CountryCallingCode = "212"

	// DefaultRegion is the ISO region used when parsing ambiguous numbers
	DefaultRegion = "MA"

	// IntlDialPrefix is the international-dial prefix stripped before the country code
	IntlDialPrefix = "00"

	// ChannelSuffix is the fixed suffix of a channel-addressable identifier
	ChannelSuffix = "@c.us"
)

// Send engine constants
const (
	// MaxRetries is the total extra delivery attempts per recipient
	MaxRetries = 3

	// MaxVideoSizeBytes is the hard ceiling for video attachments (64 MB)
	MaxVideoSizeBytes = 64 * 1024 * 1024

	// DefaultSendDelay is the pause between consecutive recipients
	DefaultSendDelay = 100 * time.Millisecond

	// DefaultRetryDelayUnit scales the per-attempt backoff: (attempt+1) * unit
	DefaultRetryDelayUnit = time.Second

	// DefaultNiche is used when neither the request nor the user profile carries one
	DefaultNiche = "default"
)

// Cache keys
const (
	// SummaryCacheKey stores the aggregate dashboard summary
	SummaryCacheKey = "reports:summary"

	// SummaryCacheTTL bounds staleness of the cached summary
	SummaryCacheTTL = 30 * time.Second

	// ResolveCacheTTL bounds reuse of resolved channel identifiers
	ResolveCacheTTL = 10 * time.Minute
)
