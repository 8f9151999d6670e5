package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
)

type SettingHandler struct {
	settings *services.SystemSettingService
	logger   *logger.Logger
}

func NewSettingHandler(settings *services.SystemSettingService, logger *logger.Logger) *SettingHandler {
	return &SettingHandler{settings: settings, logger: logger}
}

func (h *SettingHandler) GetByCategory(c *fiber.Ctx) error {
	category := c.Query("category", "engagement")
	settings, err := h.settings.GetByCategory(c.Context(), category)
	if err != nil {
		h.logger.Errorw("settings_list_failed", "category", category, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}
	return c.JSON(settings)
}

func (h *SettingHandler) UpdateSetting(c *fiber.Ctx) error {
	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errors := req.Validate(); len(errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errors,
		})
	}

	if err := h.settings.Set(c.Context(), req.Key, req.Value, req.Type, req.Category); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.SuccessResponse{Message: "setting updated"})
}

func (h *SettingHandler) DeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "setting key is required",
		})
	}

	if err := h.settings.Delete(c.Context(), key); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.SuccessResponse{Message: "setting deleted"})
}
