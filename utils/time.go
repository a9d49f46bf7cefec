// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC. Flows take it as their default
// clock so tests can substitute a fixed one.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 format
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}
