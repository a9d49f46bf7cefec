// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/wasend/wasend/app/dto"
	"github.com/wasend/wasend/app/services"
)

// ChannelHandlerInterface defines the contract for channel status handlers.
type ChannelHandlerInterface interface {
	Status(c fiber.Ctx) error
}

// ChannelHandler exposes the live state of the messaging channel session.
type ChannelHandler struct {
	gateway services.ChannelGateway
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(gateway services.ChannelGateway) *ChannelHandler {
	return &ChannelHandler{gateway: gateway}
}

// Status reports whether the channel session can accept sends right now.
func (h *ChannelHandler) Status(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state := h.gateway.State(ctx)
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Channel status retrieved successfully",
		Data: dto.ChannelStatusResponse{
			State:         string(state),
			Ready:         h.gateway.IsReady(ctx),
			Authenticated: h.gateway.IsAuthenticated(ctx),
		},
	})
}
