package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
	"github.com/earnly/backend/internal/transport/http/middleware"
)

type AttemptHandler struct {
	lifecycle ports.LifecycleService
	logger    *logger.Logger
}

func NewAttemptHandler(lifecycle ports.LifecycleService, logger *logger.Logger) *AttemptHandler {
	return &AttemptHandler{lifecycle: lifecycle, logger: logger}
}

// ReportSignal folds one content event into the attempt's accumulated
// signals. The returned may_complete flag is advisory; acceptance is
// decided only at submission.
func (h *AttemptHandler) ReportSignal(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	attemptID := c.Params("id")

	var req dto.ReportSignalRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("signal_body_parse_failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("signal_validation_failed", "user_id", user.ID, "details", errors)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errors,
		})
	}

	report, err := h.lifecycle.ReportSignal(c.Context(), user, attemptID, req.ToEvent())
	if err != nil {
		return h.attemptError(c, user.ID, attemptID, "signal", err)
	}

	return c.JSON(dto.SignalReportResponse{
		Snapshot:    report.Snapshot,
		MayComplete: report.MayComplete,
		Score:       report.Score,
	})
}

func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	attemptID := c.Params("id")

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("submit_body_parse_failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("submit_validation_failed", "user_id", user.ID, "details", errors)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errors,
		})
	}

	h.logger.Infow("submit_request", "user_id", user.ID, "attempt_id", attemptID)
	result, err := h.lifecycle.SubmitAttempt(c.Context(), user, attemptID, req.ToInput())
	if err != nil {
		return h.attemptError(c, user.ID, attemptID, "submit", err)
	}

	h.logger.Infow("submit_decided",
		"user_id", user.ID,
		"attempt_id", attemptID,
		"accepted", result.Accepted,
		"reason", result.Reason,
	)
	return c.JSON(dto.SubmissionToResponse(result))
}

func (h *AttemptHandler) attemptError(c *fiber.Ctx, userID uint, attemptID, op string, err error) error {
	switch err {
	case services.ErrAttemptNotFound, services.ErrAttemptNotOwned:
		// Not-owned maps to 404 on purpose: do not confirm that the
		// attempt id exists for someone else.
		h.logger.Warnw(op+"_attempt_not_found", "user_id", userID, "attempt_id", attemptID)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "attempt not found",
		})
	case services.ErrAttemptExpired:
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{
			Error: "attempt time limit exceeded",
			Code:  "attempt_expired",
		})
	case services.ErrAttemptTerminal, services.ErrAttemptNotActive:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: "attempt already decided",
			Code:  "attempt_decided",
		})
	case services.ErrQuotaExceeded:
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Error: "daily task quota reached, try again tomorrow",
			Code:  "quota_exceeded",
		})
	default:
		h.logger.Errorw(op+"_failed", "user_id", userID, "attempt_id", attemptID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}
}
