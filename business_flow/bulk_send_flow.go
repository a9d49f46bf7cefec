package business_flow

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wasend/wasend/app/dto"
	"github.com/wasend/wasend/app/services"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/repository"
	"github.com/wasend/wasend/utils"
)

// BulkSendFlow handles batch message delivery
type BulkSendFlow interface {
	SendBatch(ctx context.Context, req *dto.SendBatchRequest, metadata *ClientMetadata) (*dto.SendBatchResponse, error)
}

// BulkSendFlowImpl implements BulkSendFlow. All batches share one send mutex:
// the underlying channel is a single session, so deliveries are serialized
// even when several HTTP requests arrive concurrently.
type BulkSendFlowImpl struct {
	campaignRepo repository.CampaignRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditLogRepository
	gateway      services.ChannelGateway
	executor     *DeliveryExecutor
	ledger       *StatsLedger
	clock        Clock
	sendMu       sync.Mutex
	limiter      *rate.Limiter
	logger       *log.Logger
}

// NewBulkSendFlow creates a new bulk send flow.
func NewBulkSendFlow(
	campaignRepo repository.CampaignRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	gateway services.ChannelGateway,
	executor *DeliveryExecutor,
	ledger *StatsLedger,
	sendDelay time.Duration,
	clock Clock,
	logger *log.Logger,
) BulkSendFlow {
	if sendDelay <= 0 {
		sendDelay = utils.DefaultSendDelay
	}
	if clock == nil {
		clock = utils.UTCNow
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BulkSendFlowImpl{
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		gateway:      gateway,
		executor:     executor,
		ledger:       ledger,
		clock:        clock,
		limiter:      rate.NewLimiter(rate.Every(sendDelay), 1),
		logger:       logger,
	}
}

// SendBatch validates the request, records a campaign row, then walks the
// recipient list sequentially: normalize, deliver through the executor, fold
// the outcome into the stats ledger. It returns one outcome per recipient in
// input order. Validation failures return an error; anything after validation
// is reported inside the response instead.
func (f *BulkSendFlowImpl) SendBatch(ctx context.Context, req *dto.SendBatchRequest, metadata *ClientMetadata) (*dto.SendBatchResponse, error) {
	if err := f.validate(ctx, req, metadata); err != nil {
		f.cleanupUpload(req.FilePath)
		return nil, err
	}

	niche := f.resolveNiche(ctx, req)
	startedAt := f.clock()

	campaign := &models.Campaign{
		Name:            models.CampaignName(req.Message, startedAt),
		UserID:          req.UserID,
		Niche:           niche,
		MessageType:     models.MessageType(req.MessageType),
		TotalRecipients: len(req.Numbers),
		StartedAt:       startedAt,
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		// Delivery must not depend on bookkeeping: proceed without a row.
		f.logger.Printf("campaign save failed, continuing without record: %v", err)
		f.audit(ctx, models.AuditActionCampaignSaveError, err.Error(), false, req.UserID, metadata)
		campaign = nil
	}

	f.audit(ctx, models.AuditActionBatchStarted,
		fmt.Sprintf("batch of %d %s messages", len(req.Numbers), req.MessageType),
		true, req.UserID, metadata)
	f.logger.Printf("starting batch of %d recipients, session state %s",
		len(req.Numbers), f.gateway.State(ctx))

	f.sendMu.Lock()
	results := f.deliverAll(ctx, req, niche)
	f.sendMu.Unlock()

	successful, failed := 0, 0
	for i := range results {
		if results[i].Status == dto.OutcomeStatusSuccess {
			successful++
		} else {
			failed++
		}
	}
	batchRecipientsTotal.WithLabelValues(dto.OutcomeStatusSuccess).Add(float64(successful))
	batchRecipientsTotal.WithLabelValues(dto.OutcomeStatusError).Add(float64(failed))
	if failed == 0 {
		batchesTotal.WithLabelValues("clean").Inc()
	} else {
		batchesTotal.WithLabelValues("partial").Inc()
	}

	resp := &dto.SendBatchResponse{
		Success: true,
		Message: fmt.Sprintf("Batch finished: %d delivered, %d failed", successful, failed),
		Results: results,
		Note:    "Messages are delivered sequentially through a single session; large batches take time.",
	}

	if campaign != nil {
		resp.CampaignID = utils.ToPtr(campaign.ID)
		formatted := make([]string, len(req.Numbers))
		for i, n := range req.Numbers {
			formatted[i] = utils.ChatAddress(n)
		}
		if err := f.campaignRepo.Finalize(ctx, campaign.ID, successful, failed, formatted, f.clock()); err != nil {
			f.logger.Printf("campaign %d finalize failed: %v", campaign.ID, err)
		}
	}

	f.audit(ctx, models.AuditActionBatchFinalized, resp.Message, true, req.UserID, metadata)
	f.cleanupUpload(req.FilePath)

	return resp, nil
}

// deliverAll runs the sequential per-recipient loop. A panic while handling
// one recipient is converted into a failed outcome for that recipient only.
func (f *BulkSendFlowImpl) deliverAll(ctx context.Context, req *dto.SendBatchRequest, niche string) []dto.DeliveryOutcome {
	payload := DeliveryPayload{
		Type:     models.MessageType(req.MessageType),
		Text:     req.Message,
		FilePath: req.FilePath,
	}

	results := make([]dto.DeliveryOutcome, 0, len(req.Numbers))
	for _, raw := range req.Numbers {
		if err := f.limiter.Wait(ctx); err != nil {
			results = append(results, dto.DeliveryOutcome{
				OriginalNumber:  raw,
				FormattedNumber: utils.ChatAddress(raw),
				Status:          dto.OutcomeStatusError,
				Message:         fmt.Sprintf("batch canceled: %v", err),
			})
			continue
		}
		results = append(results, f.deliverOne(ctx, raw, payload, niche))
	}
	return results
}

func (f *BulkSendFlowImpl) deliverOne(ctx context.Context, raw string, payload DeliveryPayload, niche string) (outcome dto.DeliveryOutcome) {
	address := utils.ChatAddress(raw)
	outcome = dto.DeliveryOutcome{
		OriginalNumber:  raw,
		FormattedNumber: address,
	}

	defer func() {
		if r := recover(); r != nil {
			f.logger.Printf("panic delivering to %s: %v", address, r)
			outcome.Status = dto.OutcomeStatusError
			outcome.Message = fmt.Sprintf("internal error: %v", r)
			f.ledger.RecordAttempt(ctx, address, false, niche)
		}
	}()

	result := f.executor.Deliver(ctx, address, payload)
	f.ledger.RecordAttempt(ctx, address, result.Success, niche)

	if result.Success {
		outcome.Status = dto.OutcomeStatusSuccess
		outcome.Message = result.Message
	} else {
		outcome.Status = dto.OutcomeStatusError
		outcome.Message = result.Message
	}
	return outcome
}

func (f *BulkSendFlowImpl) validate(ctx context.Context, req *dto.SendBatchRequest, metadata *ClientMetadata) error {
	reject := func(err error) error {
		batchesTotal.WithLabelValues("rejected").Inc()
		f.audit(ctx, models.AuditActionBatchRejected, err.Error(), false, req.UserID, metadata)
		return NewBusinessError("BATCH_REJECTED", err.Error(), err)
	}

	if len(req.Numbers) == 0 {
		return reject(ErrEmptyRecipients)
	}

	msgType := models.MessageType(req.MessageType)
	if !msgType.Valid() {
		return reject(ErrInvalidMessageType)
	}
	if msgType == models.MessageTypeText && strings.TrimSpace(req.Message) == "" {
		return reject(ErrMessageRequired)
	}
	if msgType.RequiresAttachment() && req.FilePath == "" {
		return reject(ErrAttachmentRequired)
	}

	if msgType == models.MessageTypeVideo {
		info, err := os.Stat(req.FilePath)
		if err != nil {
			return reject(fmt.Errorf("%w: %v", ErrAttachmentRequired, err))
		}
		if info.Size() > utils.MaxVideoSizeBytes {
			return reject(ErrVideoTooLarge)
		}
	}

	return nil
}

// resolveNiche picks the campaign niche: the sender's configured niche wins,
// then the request value, then the default.
func (f *BulkSendFlowImpl) resolveNiche(ctx context.Context, req *dto.SendBatchRequest) string {
	if req.UserID != nil {
		user, err := f.userRepo.ByID(ctx, *req.UserID)
		if err != nil {
			f.logger.Printf("user %d lookup failed: %v", *req.UserID, err)
		} else if user != nil && user.HasNiche() {
			return user.Niche
		}
	}
	if req.Niche != "" {
		return req.Niche
	}
	return utils.DefaultNiche
}

func (f *BulkSendFlowImpl) cleanupUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		f.logger.Printf("failed to remove upload %s: %v", path, err)
	}
}

func (f *BulkSendFlowImpl) audit(ctx context.Context, action, description string, success bool, userID *uint, metadata *ClientMetadata) {
	entry := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: utils.ToPtr(description),
		Success:     utils.ToPtr(success),
		CreatedAt:   f.clock(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = utils.ToPtr(metadata.UserAgent)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil {
		f.logger.Printf("audit write failed (%s): %v", action, err)
	}
}
