// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/wasend/wasend/app/dto"
	businessflow "github.com/wasend/wasend/business_flow"
	"github.com/wasend/wasend/config"
	"github.com/wasend/wasend/utils"
)

// Attachment content types accepted per message type. Anything else is
// rejected before the file touches disk.
var allowedMimeTypes = map[string][]string{
	"image": {"image/jpeg", "image/png", "image/gif"},
	"video": {
		"video/mp4", "video/quicktime", "video/x-msvideo", "video/x-ms-wmv",
		"video/webm", "video/3gpp", "video/x-flv", "video/mpeg",
	},
	"document": {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
	},
	"audio": {"audio/mpeg", "audio/wav", "audio/ogg"},
}

// SendHandlerInterface defines the contract for batch send handlers.
type SendHandlerInterface interface {
	Send(c fiber.Ctx) error
}

// SendHandler handles batch message submissions.
type SendHandler struct {
	flow      businessflow.BulkSendFlow
	uploadCfg config.UploadConfig
	validator *validator.Validate
}

// NewSendHandler creates a new send handler.
func NewSendHandler(flow businessflow.BulkSendFlow, uploadCfg config.UploadConfig) *SendHandler {
	return &SendHandler{
		flow:      flow,
		uploadCfg: uploadCfg,
		validator: validator.New(),
	}
}

func (h *SendHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

type sendForm struct {
	Numbers     string `validate:"required"`
	Message     string `validate:"max=65536"`
	MessageType string `validate:"required,oneof=text image video document audio"`
	UID         string `validate:"omitempty,numeric"`
	Niche       string `validate:"omitempty,max=255"`
}

// Send accepts a multipart batch submission: a recipient list, a message
// body, a message type, and an optional attachment. It blocks until every
// recipient has a terminal outcome and returns them all.
func (h *SendHandler) Send(c fiber.Ctx) error {
	form := sendForm{
		Numbers:     c.FormValue("numbers"),
		Message:     c.FormValue("message"),
		MessageType: strings.TrimSpace(c.FormValue("message_type", "text")),
		UID:         strings.TrimSpace(c.FormValue("uid")),
		Niche:       strings.TrimSpace(c.FormValue("niche")),
	}

	if err := h.validator.Struct(form); err != nil {
		var details []string
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				details = append(details, getValidationErrorMessage(fe))
			}
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", "INVALID_REQUEST", details)
	}

	req := dto.SendBatchRequest{
		Numbers:     dto.ParseRecipientList(form.Numbers),
		Message:     form.Message,
		MessageType: form.MessageType,
		Niche:       form.Niche,
	}

	if form.UID != "" {
		parsed, err := strconv.ParseUint(form.UID, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid uid", "INVALID_UID", nil)
		}
		req.UserID = utils.ToPtr(uint(parsed))
	}

	if form.MessageType != "text" {
		if err := h.acceptUpload(c, &req); err != nil {
			return err
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"), c.Get("X-Request-ID"))
	result, err := h.flow.SendBatch(h.createRequestContext(c, "/api/v1/messages/send"), &req, metadata)
	if err != nil {
		if businessflow.IsValidationError(err) {
			code := "BATCH_REJECTED"
			if be, ok := err.(*businessflow.BusinessError); ok {
				code = be.Code
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process batch", "BATCH_FAILED", nil)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// acceptUpload validates and persists the attachment, filling in the file
// fields of req.
func (h *SendHandler) acceptUpload(c fiber.Ctx, req *dto.SendBatchRequest) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "An attachment is required for "+req.MessageType+" messages", "MISSING_ATTACHMENT", nil)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !mimeAllowed(req.MessageType, contentType) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported file type for "+req.MessageType, "INVALID_FILE_TYPE", contentType)
	}

	limit := h.uploadCfg.MaxFileSize
	if req.MessageType == "video" {
		limit = h.uploadCfg.MaxVideoFileSize
	}
	if fileHeader.Size > limit {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "File too large", "FILE_TOO_LARGE", fileHeader.Size)
	}

	name := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	path := filepath.Join(h.uploadCfg.Dir, name)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", "UPLOAD_FAILED", nil)
	}

	req.FilePath = path
	req.FileName = fileHeader.Filename
	req.FileSize = fileHeader.Size
	return nil
}

func mimeAllowed(messageType, contentType string) bool {
	for _, allowed := range allowedMimeTypes[messageType] {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func (h *SendHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	// Delivery of a large batch with retries can legitimately take minutes.
	return createRequestContextWithTimeout(c, endpoint, 30*time.Minute)
}
