package business_flow

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/wasend/wasend/app/dto"
	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/repository"
	"github.com/wasend/wasend/utils"
)

// ReportFlow serves the dashboard read side: campaign history, per-number
// statistics, and the cross-campaign summary.
type ReportFlow interface {
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, uuid string) (*models.Campaign, error)
	ListNumberStats(ctx context.Context, req *dto.ListNumberStatsRequest) (*dto.ListNumberStatsResponse, error)
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
}

// ReportFlowImpl implements ReportFlow. The summary aggregate is cached in
// Redis for a short TTL; a nil or unreachable Redis degrades to direct
// database reads.
type ReportFlowImpl struct {
	campaignRepo repository.CampaignRepository
	statRepo     repository.PhoneNumberStatRepository
	redisClient  *redis.Client
	logger       *log.Logger
}

// NewReportFlow creates a new report flow.
func NewReportFlow(
	campaignRepo repository.CampaignRepository,
	statRepo repository.PhoneNumberStatRepository,
	redisClient *redis.Client,
	logger *log.Logger,
) ReportFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &ReportFlowImpl{
		campaignRepo: campaignRepo,
		statRepo:     statRepo,
		redisClient:  redisClient,
		logger:       logger,
	}
}

// ListCampaigns returns a page of campaigns, newest first.
func (f *ReportFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	filter := models.CampaignFilter{
		UserID: req.UserID,
		Niche:  req.Niche,
	}
	if req.MessageType != nil {
		mt := models.MessageType(*req.MessageType)
		if !mt.Valid() {
			return nil, NewBusinessError("INVALID_FILTER", ErrInvalidMessageType.Error(), ErrInvalidMessageType)
		}
		filter.MessageType = &mt
	}

	total, err := f.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "failed to count campaigns", err)
	}

	campaigns, err := f.campaignRepo.ByFilter(ctx, filter, "started_at DESC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "failed to list campaigns", err)
	}

	items := make([]dto.CampaignSummary, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, dto.NewCampaignSummary(c))
	}

	return &dto.ListCampaignsResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// GetCampaign returns one campaign by its public UUID.
func (f *ReportFlowImpl) GetCampaign(ctx context.Context, uuid string) (*models.Campaign, error) {
	campaign, err := f.campaignRepo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", ErrCampaignNotFound.Error(), ErrCampaignNotFound)
	}
	return campaign, nil
}

// ListNumberStats returns a page of per-number statistics, most recently
// used first.
func (f *ReportFlowImpl) ListNumberStats(ctx context.Context, req *dto.ListNumberStatsRequest) (*dto.ListNumberStatsResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	filter := models.PhoneNumberStatFilter{
		Niche:  req.Niche,
		Region: req.Region,
	}
	if req.Status != nil {
		st := models.MessageStatus(*req.Status)
		if !st.Valid() {
			return nil, NewBusinessError("INVALID_FILTER", "invalid status filter", nil)
		}
		filter.Status = &st
	}

	total, err := f.statRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("STAT_LIST_FAILED", "failed to count number stats", err)
	}

	stats, err := f.statRepo.ByFilter(ctx, filter, "last_used DESC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("STAT_LIST_FAILED", "failed to list number stats", err)
	}

	items := make([]dto.NumberStat, 0, len(stats))
	for _, s := range stats {
		items = append(items, dto.NewNumberStat(s))
	}

	return &dto.ListNumberStatsResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// Summary returns the cross-campaign aggregate, served from Redis when a
// fresh copy exists.
func (f *ReportFlowImpl) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	if f.redisClient != nil {
		cached, err := f.redisClient.Get(ctx, utils.SummaryCacheKey).Result()
		if err == nil {
			var resp dto.SummaryResponse
			if jsonErr := json.Unmarshal([]byte(cached), &resp); jsonErr == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			f.logger.Printf("summary cache read failed: %v", err)
		}
	}

	totals, err := f.statRepo.Totals(ctx)
	if err != nil {
		return nil, NewBusinessError("SUMMARY_FAILED", "failed to aggregate number stats", err)
	}

	campaignCount, err := f.campaignRepo.Count(ctx, models.CampaignFilter{})
	if err != nil {
		return nil, NewBusinessError("SUMMARY_FAILED", "failed to count campaigns", err)
	}

	resp := &dto.SummaryResponse{
		Campaigns:            campaignCount,
		Numbers:              totals.Numbers,
		MessagesSent:         totals.MessagesSent,
		SuccessfulDeliveries: totals.SuccessfulDeliveries,
		FailedDeliveries:     totals.FailedDeliveries,
	}

	if f.redisClient != nil {
		payload, jsonErr := json.Marshal(resp)
		if jsonErr == nil {
			if err := f.redisClient.Set(ctx, utils.SummaryCacheKey, payload, utils.SummaryCacheTTL).Err(); err != nil {
				f.logger.Printf("summary cache write failed: %v", err)
			}
		}
	}

	return resp, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
