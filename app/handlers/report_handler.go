// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/wasend/wasend/app/dto"
	businessflow "github.com/wasend/wasend/business_flow"
	"github.com/wasend/wasend/utils"
)

// ReportHandlerInterface defines the contract for reporting handlers.
type ReportHandlerInterface interface {
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	ListNumbers(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
}

// ReportHandler serves campaign history and delivery statistics.
type ReportHandler struct {
	flow businessflow.ReportFlow
}

// NewReportHandler creates a new report handler.
func NewReportHandler(flow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{flow: flow}
}

func (h *ReportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ReportHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListCampaigns returns a page of campaigns, newest first.
func (h *ReportHandler) ListCampaigns(c fiber.Ctx) error {
	req := dto.ListCampaignsRequest{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if niche := c.Query("niche"); niche != "" {
		req.Niche = utils.ToPtr(niche)
	}
	if mt := c.Query("message_type"); mt != "" {
		req.MessageType = utils.ToPtr(mt)
	}
	if uid := c.Query("uid"); uid != "" {
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid uid", "INVALID_UID", nil)
		}
		req.UserID = utils.ToPtr(uint(parsed))
	}

	result, err := h.flow.ListCampaigns(h.createRequestContext(c, "/api/v1/campaigns"), &req)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "INVALID_FILTER" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list campaigns", "CAMPAIGN_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign returns one campaign by UUID.
func (h *ReportHandler) GetCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid uuid", "INVALID_UUID", nil)
	}

	campaign, err := h.flow.GetCampaign(h.createRequestContext(c, "/api/v1/campaigns/{uuid}"), campaignUUID)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "CAMPAIGN_NOT_FOUND" {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load campaign", "CAMPAIGN_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", dto.NewCampaignSummary(campaign))
}

// ListNumbers returns per-number delivery statistics, most recently used first.
func (h *ReportHandler) ListNumbers(c fiber.Ctx) error {
	req := dto.ListNumberStatsRequest{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if niche := c.Query("niche"); niche != "" {
		req.Niche = utils.ToPtr(niche)
	}
	if region := c.Query("region"); region != "" {
		req.Region = utils.ToPtr(region)
	}
	if status := c.Query("status"); status != "" {
		req.Status = utils.ToPtr(status)
	}

	result, err := h.flow.ListNumberStats(h.createRequestContext(c, "/api/v1/numbers"), &req)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "INVALID_FILTER" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list number stats", "STAT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Number stats retrieved successfully", result)
}

// Summary returns the cross-campaign delivery aggregate.
func (h *ReportHandler) Summary(c fiber.Ctx) error {
	result, err := h.flow.Summary(h.createRequestContext(c, "/api/v1/reports/summary"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build summary", "SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Summary retrieved successfully", result)
}

func (h *ReportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func queryInt(c fiber.Ctx, key string, def int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
