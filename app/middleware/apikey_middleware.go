// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"github.com/wasend/wasend/app/dto"
	"github.com/wasend/wasend/config"
)

// APIKeyMiddleware guards the API with a shared key. The dashboard runs on a
// trusted network by default, so the check is disabled unless configured.
type APIKeyMiddleware struct {
	cfg config.SecurityConfig
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(cfg config.SecurityConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{cfg: cfg}
}

// Require is the middleware function that validates the API key header
func (m *APIKeyMiddleware) Require() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !m.cfg.RequireAPIKey {
			return c.Next()
		}

		key := c.Get(m.cfg.APIKeyHeader)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "API key is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_API_KEY",
				},
			})
		}

		for _, allowed := range m.cfg.AllowedAPIKeys {
			if subtle.ConstantTimeCompare([]byte(key), []byte(allowed)) == 1 {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid API key",
			Error: dto.ErrorDetail{
				Code: "INVALID_API_KEY",
			},
		})
	}
}
