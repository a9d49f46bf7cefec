package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageType(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, mt := range []MessageType{MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeDocument, MessageTypeAudio} {
			assert.True(t, mt.Valid(), mt)
		}
		assert.False(t, MessageType("sticker").Valid())
		assert.False(t, MessageType("").Valid())
	})

	t.Run("RequiresAttachment", func(t *testing.T) {
		assert.False(t, MessageTypeText.RequiresAttachment())
		assert.True(t, MessageTypeImage.RequiresAttachment())
		assert.True(t, MessageTypeVideo.RequiresAttachment())
		assert.False(t, MessageType("sticker").RequiresAttachment())
	})

	t.Run("ScanValue", func(t *testing.T) {
		var mt MessageType
		require.NoError(t, mt.Scan("video"))
		assert.Equal(t, MessageTypeVideo, mt)

		v, err := MessageTypeVideo.Value()
		require.NoError(t, err)
		assert.Equal(t, "video", v)

		_, err = MessageType("sticker").Value()
		assert.Error(t, err)
	})
}

func TestCampaignBeforeCreate(t *testing.T) {
	c := &Campaign{Name: "x", MessageType: MessageTypeText}
	require.NoError(t, c.BeforeCreate())
	assert.NotEqual(t, uuid.Nil, c.UUID)
	assert.False(t, c.StartedAt.IsZero())
	assert.Equal(t, "default", c.Niche)

	// An assigned UUID is preserved.
	fixed := uuid.New()
	c2 := &Campaign{Name: "y", UUID: fixed, MessageType: MessageTypeText}
	require.NoError(t, c2.BeforeCreate())
	assert.Equal(t, fixed, c2.UUID)
}

func TestCampaignName(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Hello", CampaignName("  Hello  ", at))
	assert.Equal(t, "Campaign 2026-03-14 12:00:00", CampaignName("   ", at))

	long := strings.Repeat("a", 60)
	name := CampaignName(long, at)
	assert.Equal(t, strings.Repeat("a", 40)+"...", name)
}

func TestCampaignFinalized(t *testing.T) {
	c := &Campaign{}
	assert.False(t, c.Finalized())
	now := time.Now().UTC()
	c.EndedAt = &now
	assert.True(t, c.Finalized())
}
