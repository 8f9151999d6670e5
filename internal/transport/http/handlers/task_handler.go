package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
	"github.com/earnly/backend/internal/transport/http/middleware"
)

type TaskHandler struct {
	lifecycle   ports.LifecycleService
	eligibility ports.EligibilityService
	logger      *logger.Logger
}

func NewTaskHandler(lifecycle ports.LifecycleService, eligibility ports.EligibilityService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{lifecycle: lifecycle, eligibility: eligibility, logger: logger}
}

// ListTasks returns every active task with the caller's per-task state.
// A blocked region yields zero tasks plus the eligibility snapshot so the
// client can render the block instead of an empty list.
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	overviews, snap, err := h.lifecycle.ListTasks(c.Context(), user)
	if err != nil {
		if err == services.ErrRegionBlocked {
			h.logger.Infow("tasks_list_region_blocked", "user_id", user.ID, "region", snap.RegionCode)
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:  "tasks are not available in your region",
				Code:   "region_blocked",
				Region: snap.RegionCode,
			})
		}
		h.logger.Errorw("tasks_list_failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("tasks_list_success", "user_id", user.ID, "count", len(overviews))
	return c.JSON(dto.OverviewsToResponse(overviews, snap))
}

func (h *TaskHandler) GetEligibility(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	snap, err := h.eligibility.Snapshot(c.Context(), user)
	if err != nil {
		h.logger.Errorw("eligibility_snapshot_failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(dto.EligibilityToResponse(snap))
}

func (h *TaskHandler) StartTask(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		h.logger.Warnw("task_start_invalid_id", "user_id", user.ID)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid task id",
		})
	}

	h.logger.Infow("task_start_request", "user_id", user.ID, "task_id", id)
	attempt, err := h.lifecycle.StartTask(c.Context(), user, uint(id))
	if err != nil {
		return h.startError(c, user.ID, uint(id), err)
	}

	h.logger.Infow("task_start_success", "user_id", user.ID, "task_id", id, "attempt_id", attempt.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.AttemptToResponse(attempt))
}

func (h *TaskHandler) startError(c *fiber.Ctx, userID, taskID uint, err error) error {
	switch err {
	case services.ErrRegionBlocked:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "tasks are not available in your region",
			Code:  "region_blocked",
		})
	case services.ErrReferralRequired:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "invite a friend to keep completing tasks",
			Code:  "referral_required",
		})
	case services.ErrAccessDisabled:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "account access is disabled",
			Code:  "access_disabled",
		})
	case services.ErrQuotaExceeded:
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Error: "daily task quota reached, try again tomorrow",
			Code:  "quota_exceeded",
		})
	case services.ErrTaskNotFound, services.ErrTaskInactive:
		h.logger.Warnw("task_start_not_found", "user_id", userID, "task_id", taskID)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "task not found",
		})
	case services.ErrTaskCompleted:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: "task already completed",
			Code:  "task_completed",
		})
	case services.ErrAttemptsExhausted:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: "no attempts left for this task",
			Code:  "attempts_exhausted",
		})
	default:
		h.logger.Errorw("task_start_failed", "user_id", userID, "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}
}
