package business_flow

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wasend/wasend/app/services"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/utils"
)

// DeliveryPayload is the content the executor pushes to one recipient.
type DeliveryPayload struct {
	Type     models.MessageType
	Text     string
	FilePath string
}

// DeliveryResult is the terminal outcome of delivering to one recipient.
// The executor never returns an error: every failure mode collapses into
// Success=false with a human-readable Message.
type DeliveryResult struct {
	Success  bool
	Message  string
	Attempts int
}

// DeliveryExecutor drives a single delivery through the channel gateway,
// retrying transient failures with a linear backoff. Each retry discards the
// cached address resolution and resolves again before sending, so a stale
// contact mapping cannot poison the whole retry budget.
type DeliveryExecutor struct {
	gateway    services.ChannelGateway
	cache      *services.ResolveCache
	maxRetries int
	delayUnit  time.Duration
	logger     *log.Logger
}

// NewDeliveryExecutor creates a configured executor. delayUnit scales every
// backoff wait; production passes one second.
func NewDeliveryExecutor(gateway services.ChannelGateway, cache *services.ResolveCache, maxRetries int, delayUnit time.Duration, logger *log.Logger) *DeliveryExecutor {
	if maxRetries <= 0 {
		maxRetries = utils.MaxRetries
	}
	if delayUnit <= 0 {
		delayUnit = utils.DefaultRetryDelayUnit
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DeliveryExecutor{
		gateway:    gateway,
		cache:      cache,
		maxRetries: maxRetries,
		delayUnit:  delayUnit,
		logger:     logger,
	}
}

// Deliver sends payload to the given channel address and reports the outcome.
// A session that is not connected and authenticated fails immediately without
// consuming the retry budget, as does a video payload whose file is missing or
// over the size ceiling. Otherwise one primary attempt runs, followed by
// up to maxRetries re-resolved attempts with waits of delayUnit, 2*delayUnit,
// and so on between them.
func (e *DeliveryExecutor) Deliver(ctx context.Context, address string, payload DeliveryPayload) DeliveryResult {
	if !e.gateway.IsReady(ctx) || !e.gateway.IsAuthenticated(ctx) {
		return DeliveryResult{
			Success:  false,
			Message:  ErrChannelUnavailable.Error(),
			Attempts: 0,
		}
	}

	if payload.Type == models.MessageTypeVideo {
		info, statErr := os.Stat(payload.FilePath)
		if statErr != nil {
			return DeliveryResult{
				Success:  false,
				Message:  fmt.Sprintf("video file unavailable: %v", statErr),
				Attempts: 0,
			}
		}
		if info.Size() > utils.MaxVideoSizeBytes {
			return DeliveryResult{
				Success:  false,
				Message:  ErrVideoTooLarge.Error(),
				Attempts: 0,
			}
		}
	}

	digits := utils.BareDigits(address)

	err := e.attempt(ctx, digits, address, payload, false)
	if err == nil {
		deliveryAttemptsTotal.WithLabelValues(payload.Type.String(), "success").Inc()
		return DeliveryResult{Success: true, Message: "delivered", Attempts: 1}
	}
	deliveryAttemptsTotal.WithLabelValues(payload.Type.String(), "failure").Inc()
	e.logger.Printf("delivery to %s failed, retrying: %v", address, err)

	for retry := 0; retry < e.maxRetries; retry++ {
		if waitErr := e.wait(ctx, time.Duration(retry+1)*e.delayUnit); waitErr != nil {
			return DeliveryResult{
				Success:  false,
				Message:  fmt.Sprintf("delivery canceled: %v", waitErr),
				Attempts: retry + 1,
			}
		}

		deliveryRetriesTotal.WithLabelValues(payload.Type.String()).Inc()
		e.cache.Forget(digits)

		err = e.attempt(ctx, digits, address, payload, true)
		if err == nil {
			deliveryAttemptsTotal.WithLabelValues(payload.Type.String(), "success").Inc()
			return DeliveryResult{Success: true, Message: "delivered", Attempts: retry + 2}
		}
		deliveryAttemptsTotal.WithLabelValues(payload.Type.String(), "failure").Inc()
		e.logger.Printf("delivery to %s failed on retry %d: %v", address, retry+1, err)
	}

	return DeliveryResult{
		Success:  false,
		Message:  err.Error(),
		Attempts: e.maxRetries + 1,
	}
}

// attempt performs one resolve-and-send round trip. alt switches video sends
// to the alternate options used on retries.
func (e *DeliveryExecutor) attempt(ctx context.Context, digits, address string, payload DeliveryPayload, alt bool) error {
	resolved, err := e.resolve(ctx, digits, address, alt)
	if err != nil {
		return err
	}

	handle, err := e.gateway.GetChatHandle(ctx, resolved)
	if err != nil {
		return err
	}

	switch payload.Type {
	case models.MessageTypeText:
		return e.gateway.SendText(ctx, handle, payload.Text)

	case models.MessageTypeVideo:
		if err := e.gateway.SendMedia(ctx, handle, payload.FilePath, services.MediaOptions{
			Caption:       payload.Text,
			AsDocument:    !alt,
			MediaTypeHint: "video",
			DisableGIF:    alt,
		}); err != nil {
			return err
		}
		// The channel has consumed the file at this point.
		if payload.FilePath != "" {
			if rmErr := os.Remove(payload.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
				e.logger.Printf("failed to remove sent video %s: %v", payload.FilePath, rmErr)
			}
		}
		return nil

	default:
		return e.gateway.SendMedia(ctx, handle, payload.FilePath, services.MediaOptions{
			Caption:       payload.Text,
			MediaTypeHint: payload.Type.String(),
		})
	}
}

// resolve maps bare digits to a channel-registered address, consulting the
// cache on the primary attempt and bypassing it on retries.
func (e *DeliveryExecutor) resolve(ctx context.Context, digits, address string, fresh bool) (string, error) {
	if !fresh {
		if cached, ok := e.cache.Get(digits); ok {
			return cached, nil
		}
	}

	resolved, err := e.gateway.ResolveAddress(ctx, digits)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", address, err)
	}
	e.cache.Put(digits, resolved)
	return resolved, nil
}

func (e *DeliveryExecutor) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
