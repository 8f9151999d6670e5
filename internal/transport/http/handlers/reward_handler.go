package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
	"github.com/earnly/backend/internal/transport/http/middleware"
)

type RewardHandler struct {
	rewards ports.RewardRepository
	logger  *logger.Logger
}

func NewRewardHandler(rewards ports.RewardRepository, logger *logger.Logger) *RewardHandler {
	return &RewardHandler{rewards: rewards, logger: logger}
}

// GetRewards lists the caller's ledger entries newest first with the
// running total.
func (h *RewardHandler) GetRewards(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)

	entries, err := h.rewards.GetByUser(c.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("rewards_list_failed", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	resp := dto.RewardListResponse{
		Rewards: make([]dto.RewardEntryResponse, 0, len(entries)),
		Total:   decimal.Zero,
	}
	for i := range entries {
		entry := entries[i]
		resp.Total = resp.Total.Add(entry.Amount)
		resp.Rewards = append(resp.Rewards, dto.RewardEntryResponse{
			AttemptID: entry.AttemptID,
			TaskID:    entry.TaskID,
			Amount:    entry.Amount,
			CreatedAt: entry.CreatedAt,
		})
	}

	h.logger.Infow("rewards_list_success", "user_id", user.ID, "count", len(entries))
	return c.JSON(resp)
}
