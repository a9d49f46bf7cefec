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

	"github.com/wasend/wasend/app/dto"
	"github.com/wasend/wasend/app/services"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/utils"
)

type flowFixture struct {
	gateway      *services.MockChannelGateway
	campaignRepo *fakeCampaignRepo
	statRepo     *fakePhoneStatRepo
	userRepo     *fakeUserRepo
	auditRepo    *fakeAuditRepo
	flow         BulkSendFlow
}

func newFlowFixture() *flowFixture {
	gateway := services.NewMockChannelGateway()
	cache := services.NewResolveCache(time.Minute, nil)
	executor := NewDeliveryExecutor(gateway, cache, 3, testDelayUnit, log.Default())

	statRepo := newFakePhoneStatRepo()
	campaignRepo := &fakeCampaignRepo{}
	userRepo := &fakeUserRepo{users: make(map[uint]*models.User)}
	auditRepo := &fakeAuditRepo{}

	flow := NewBulkSendFlow(
		campaignRepo,
		userRepo,
		auditRepo,
		gateway,
		executor,
		NewStatsLedger(statRepo, nil, log.Default()),
		time.Millisecond,
		nil,
		log.Default(),
	)

	return &flowFixture{
		gateway:      gateway,
		campaignRepo: campaignRepo,
		statRepo:     statRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		flow:         flow,
	}
}

func testMetadata() *ClientMetadata {
	return NewClientMetadata("127.0.0.1", "go-test", "req-1")
}

func TestSendBatchReportsEveryRecipient(t *testing.T) {
	f := newFlowFixture()
	// The middle number never accepts a send.
	f.gateway.SendFailures["212698765432@c.us"] = 10

	resp, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678", "+212698765432", "0021261122334"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "0612345678", resp.Results[0].OriginalNumber)
	assert.Equal(t, "+212612345678@c.us", resp.Results[0].FormattedNumber)
	assert.Equal(t, dto.OutcomeStatusSuccess, resp.Results[0].Status)
	assert.Equal(t, dto.OutcomeStatusError, resp.Results[1].Status)
	assert.Equal(t, dto.OutcomeStatusSuccess, resp.Results[2].Status)

	successful, failed := 0, 0
	for _, r := range resp.Results {
		if r.Status == dto.OutcomeStatusSuccess {
			successful++
		} else {
			failed++
		}
	}
	assert.Equal(t, len(resp.Results), successful+failed)

	// Campaign row records final counts and the formatted recipient list.
	require.NotNil(t, resp.CampaignID)
	assert.Equal(t, 1, f.campaignRepo.finalizeCalls)
	assert.Equal(t, *resp.CampaignID, f.campaignRepo.finalizedID)
	assert.Equal(t, 2, f.campaignRepo.finalizedSucceeded)
	assert.Equal(t, 1, f.campaignRepo.finalizedFailed)
	assert.Contains(t, f.campaignRepo.finalizedAddrs, "+212698765432@c.us")

	// Every recipient got a ledger row, including the failed one.
	assert.Len(t, f.statRepo.stats, 3)
	failedStat := f.statRepo.stats["+212698765432@c.us"]
	require.NotNil(t, failedStat)
	assert.Equal(t, models.MessageStatusFailed, failedStat.LastMessageStatus)

	assert.Contains(t, f.auditRepo.actions(), models.AuditActionBatchStarted)
	assert.Contains(t, f.auditRepo.actions(), models.AuditActionBatchFinalized)
}

func TestSendBatchRejectsEmptyRecipientList(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     nil,
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	// Nothing was sent and nothing was recorded.
	assert.Zero(t, f.gateway.ResolveCalls)
	assert.Empty(t, f.gateway.Deliveries())
	assert.Empty(t, f.campaignRepo.campaigns)
	assert.Contains(t, f.auditRepo.actions(), models.AuditActionBatchRejected)
}

func TestSendBatchRejectsInvalidMessageType(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "promo",
		MessageType: "sticker",
	}, testMetadata())

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestSendBatchRejectsTextWithoutMessage(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		MessageType: "text",
	}, testMetadata())

	require.ErrorIs(t, err, ErrMessageRequired)
}

func TestSendBatchRejectsWhitespaceOnlyMessage(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "   \t  ",
		MessageType: "text",
	}, testMetadata())

	require.ErrorIs(t, err, ErrMessageRequired)
	assert.Empty(t, f.gateway.Deliveries())
}

func TestSendBatchRejectsMediaWithoutAttachment(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "caption",
		MessageType: "image",
	}, testMetadata())

	require.ErrorIs(t, err, ErrAttachmentRequired)
}

func TestSendBatchRejectsOversizedVideo(t *testing.T) {
	f := newFlowFixture()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "huge.mp4")
	file, err := os.Create(videoPath)
	require.NoError(t, err)
	require.NoError(t, file.Truncate(utils.MaxVideoSizeBytes+1))
	require.NoError(t, file.Close())

	_, err = f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "caption",
		MessageType: "video",
		FilePath:    videoPath,
	}, testMetadata())

	require.ErrorIs(t, err, ErrVideoTooLarge)
	assert.Empty(t, f.campaignRepo.campaigns)
	assert.Empty(t, f.gateway.Deliveries())

	// The rejected upload is cleaned up.
	_, statErr := os.Stat(videoPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSendBatchSurvivesCampaignSaveFailure(t *testing.T) {
	f := newFlowFixture()
	f.campaignRepo.failSave = true

	resp, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	require.NoError(t, err)

	// Delivery proceeds without a campaign row.
	require.Len(t, resp.Results, 1)
	assert.Equal(t, dto.OutcomeStatusSuccess, resp.Results[0].Status)
	assert.Nil(t, resp.CampaignID)
	assert.Zero(t, f.campaignRepo.finalizeCalls)
	assert.Contains(t, f.auditRepo.actions(), models.AuditActionCampaignSaveError)
}

func TestSendBatchUsesSenderNiche(t *testing.T) {
	f := newFlowFixture()
	f.userRepo.users[7] = &models.User{ID: 7, Name: "Store", Niche: "retail"}

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "promo",
		MessageType: "text",
		UserID:      utils.ToPtr(uint(7)),
		Niche:       "ignored",
	}, testMetadata())
	require.NoError(t, err)

	stat := f.statRepo.stats["+212612345678@c.us"]
	require.NotNil(t, stat)
	assert.Equal(t, "retail", stat.Niche)

	require.Len(t, f.campaignRepo.campaigns, 1)
	assert.Equal(t, "retail", f.campaignRepo.campaigns[0].Niche)
}

func TestSendBatchDefaultsNiche(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	require.NoError(t, err)

	require.Len(t, f.campaignRepo.campaigns, 1)
	assert.Equal(t, utils.DefaultNiche, f.campaignRepo.campaigns[0].Niche)
}

func TestSendBatchWhenChannelDown(t *testing.T) {
	f := newFlowFixture()
	f.gateway.Ready = false

	resp, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678", "0712345678"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.Equal(t, dto.OutcomeStatusError, r.Status)
		assert.Equal(t, ErrChannelUnavailable.Error(), r.Message)
	}
	// Failed attempts still reach the ledger.
	assert.Len(t, f.statRepo.stats, 2)
}

func TestSendBatchReadsSessionState(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, f.gateway.StateCalls, 1)
}

func TestSendBatchHonorsConfiguredSendDelay(t *testing.T) {
	gateway := services.NewMockChannelGateway()
	cache := services.NewResolveCache(time.Minute, nil)
	executor := NewDeliveryExecutor(gateway, cache, 3, testDelayUnit, log.Default())
	statRepo := newFakePhoneStatRepo()

	delay := 25 * time.Millisecond
	flow := NewBulkSendFlow(
		&fakeCampaignRepo{},
		&fakeUserRepo{users: make(map[uint]*models.User)},
		&fakeAuditRepo{},
		gateway,
		executor,
		NewStatsLedger(statRepo, nil, log.Default()),
		delay,
		nil,
		log.Default(),
	)

	start := time.Now()
	resp, err := flow.SendBatch(context.Background(), &dto.SendBatchRequest{
		Numbers:     []string{"0612345678", "0698765432", "0712345678"},
		Message:     "promo",
		MessageType: "text",
	}, testMetadata())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	// The first recipient goes immediately; the next two each wait one delay.
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}
