package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhoneNumberStatApply(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	stat := &PhoneNumberStat{Number: "+212612345678@c.us"}

	stat.Apply(true, "retail", at)
	assert.Equal(t, 1, stat.MessagesSent)
	assert.Equal(t, 1, stat.SuccessfulDeliveries)
	assert.Equal(t, MessageStatusSuccess, stat.LastMessageStatus)
	assert.Equal(t, "retail", stat.Niche)
	assert.Equal(t, at, stat.LastUsed)

	later := at.Add(time.Hour)
	stat.Apply(false, "", later)
	assert.Equal(t, 2, stat.MessagesSent)
	assert.Equal(t, 1, stat.SuccessfulDeliveries)
	assert.Equal(t, 1, stat.FailedDeliveries)
	assert.Equal(t, MessageStatusFailed, stat.LastMessageStatus)
	// Blank niche keeps the previous value.
	assert.Equal(t, "retail", stat.Niche)
	assert.Equal(t, later, stat.LastUsed)
}

func TestMessageStatus(t *testing.T) {
	assert.True(t, MessageStatusSuccess.Valid())
	assert.True(t, MessageStatusFailed.Valid())
	assert.False(t, MessageStatus("pending").Valid())

	var s MessageStatus
	assert.NoError(t, s.Scan([]byte("failed")))
	assert.Equal(t, MessageStatusFailed, s)
}
