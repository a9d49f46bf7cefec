package business_flow

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasend/wasend/app/services"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/utils"
)

const testDelayUnit = 10 * time.Millisecond

func newTestExecutor(gateway *services.MockChannelGateway) *DeliveryExecutor {
	cache := services.NewResolveCache(time.Minute, nil)
	return NewDeliveryExecutor(gateway, cache, 3, testDelayUnit, log.Default())
}

func TestDeliverTextFirstAttempt(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)

	deliveries := gateway.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "212612345678@c.us", deliveries[0].Handle)
	assert.Equal(t, "hello", deliveries[0].Text)
}

func TestDeliverFailsFastWhenChannelDown(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	gateway.Ready = false
	executor := newTestExecutor(gateway)

	start := time.Now()
	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})
	elapsed := time.Since(start)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Attempts)
	assert.Equal(t, ErrChannelUnavailable.Error(), result.Message)
	assert.Less(t, elapsed, testDelayUnit)
	assert.Empty(t, gateway.Deliveries())
}

func TestDeliverRetriesAfterTransientFailure(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	gateway.SendFailures["212612345678@c.us"] = 1
	executor := newTestExecutor(gateway)

	start := time.Now()
	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})
	elapsed := time.Since(start)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	// One backoff window of one delay unit sits between the two attempts.
	assert.GreaterOrEqual(t, elapsed, testDelayUnit)
	assert.Less(t, elapsed, 3*testDelayUnit)

	// The retry resolves from scratch instead of trusting the cache.
	assert.Equal(t, 2, gateway.ResolveCalls)
	assert.Len(t, gateway.Deliveries(), 1)
}

func TestDeliverExhaustsRetryBudget(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	gateway.SendFailures["212612345678@c.us"] = 10
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Attempts)
	assert.Empty(t, gateway.Deliveries())
}

func TestDeliverUnregisteredRecipient(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	gateway.Unregistered["212600000001"] = true
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212600000001@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, services.ErrUnresolved.Error())
	assert.Empty(t, gateway.Deliveries())
}

func TestDeliverVideoSwitchesOptionsOnRetry(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("not really a video"), 0o600))

	gateway := services.NewMockChannelGateway()
	gateway.SendFailures["212612345678@c.us"] = 1
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type:     models.MessageTypeVideo,
		Text:     "caption",
		FilePath: videoPath,
	})

	require.True(t, result.Success)

	deliveries := gateway.Deliveries()
	require.Len(t, deliveries, 1)
	assert.False(t, deliveries[0].Options.AsDocument)
	assert.True(t, deliveries[0].Options.DisableGIF)
	assert.Equal(t, "caption", deliveries[0].Options.Caption)

	// The file is consumed by a successful video send.
	_, err := os.Stat(videoPath)
	assert.True(t, os.IsNotExist(err))
}

func TestDeliverVideoFirstAttemptSendsAsDocument(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("payload"), 0o600))

	gateway := services.NewMockChannelGateway()
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type:     models.MessageTypeVideo,
		Text:     "caption",
		FilePath: videoPath,
	})

	require.True(t, result.Success)
	deliveries := gateway.Deliveries()
	require.Len(t, deliveries, 1)
	assert.True(t, deliveries[0].Options.AsDocument)
	assert.False(t, deliveries[0].Options.DisableGIF)
}

func TestDeliverRejectsOversizedVideo(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "huge.mp4")
	file, err := os.Create(videoPath)
	require.NoError(t, err)
	require.NoError(t, file.Truncate(utils.MaxVideoSizeBytes+1))
	require.NoError(t, file.Close())

	gateway := services.NewMockChannelGateway()
	executor := newTestExecutor(gateway)

	start := time.Now()
	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type:     models.MessageTypeVideo,
		Text:     "caption",
		FilePath: videoPath,
	})
	elapsed := time.Since(start)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Attempts)
	assert.Equal(t, ErrVideoTooLarge.Error(), result.Message)
	assert.Less(t, elapsed, testDelayUnit)
	assert.Empty(t, gateway.Deliveries())
}

func TestDeliverRejectsMissingVideoFile(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	executor := newTestExecutor(gateway)

	result := executor.Deliver(context.Background(), "+212612345678@c.us", DeliveryPayload{
		Type:     models.MessageTypeVideo,
		Text:     "caption",
		FilePath: filepath.Join(t.TempDir(), "gone.mp4"),
	})

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Attempts)
	assert.Contains(t, result.Message, "video file unavailable")
	assert.Empty(t, gateway.Deliveries())
}

func TestDeliverStopsWhenContextCanceled(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	gateway.SendFailures["212612345678@c.us"] = 10
	executor := newTestExecutor(gateway)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := executor.Deliver(ctx, "+212612345678@c.us", DeliveryPayload{
		Type: models.MessageTypeText,
		Text: "hello",
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Contains(t, result.Message, "canceled")
}
