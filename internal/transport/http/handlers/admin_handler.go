package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
)

type AdminHandler struct {
	tasks  ports.AdminTaskService
	logger *logger.Logger
}

func NewAdminHandler(tasks ports.AdminTaskService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{tasks: tasks, logger: logger}
}

func (h *AdminHandler) PublishTask(c *fiber.Ctx) error {
	var req dto.PublishTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_publish_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("task_publish_validation_failed", "details", errors)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errors,
		})
	}

	h.logger.Infow("task_publish_request", "title", req.Title)
	task, err := h.tasks.PublishTask(c.Context(), req.ToInput())
	if err != nil {
		if err == services.ErrTaskInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		h.logger.Errorw("task_publish_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("task_publish_success", "id", task.ID, "title", task.Title)
	return c.Status(fiber.StatusCreated).JSON(dto.TaskToResponse(task))
}

func (h *AdminHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid task id",
		})
	}

	var req dto.PublishTaskRequest
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

	task, err := h.tasks.UpdateTask(c.Context(), uint(id), req.ToInput())
	if err != nil {
		if err == services.ErrTaskNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "task not found",
			})
		}
		if err == services.ErrTaskInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		h.logger.Errorw("task_update_failed", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("task_update_success", "id", task.ID)
	return c.JSON(dto.TaskToResponse(task))
}

func (h *AdminHandler) DeactivateTask(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid task id",
		})
	}

	if err := h.tasks.DeactivateTask(c.Context(), uint(id)); err != nil {
		if err == services.ErrTaskNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "task not found",
			})
		}
		h.logger.Errorw("task_deactivate_failed", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("task_deactivate_success", "id", id)
	return c.JSON(dto.SuccessResponse{Message: "task deactivated"})
}
