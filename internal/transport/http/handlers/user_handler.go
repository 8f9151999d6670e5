package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/dto"
	"github.com/earnly/backend/internal/transport/http/middleware"
	"github.com/earnly/backend/pkg/utils/keygen"
)

type UserHandler struct {
	users  ports.UserRepository
	logger *logger.Logger
}

func NewUserHandler(users ports.UserRepository, logger *logger.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// CreateUser provisions an account and mints its API token. The token is
// returned once in the creation response and stored only as the lookup
// key; there is no endpoint to read it back.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("user_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("user_create_validation_failed", "details", errors)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: errors,
		})
	}

	token, err := keygen.GenerateAPIToken()
	if err != nil {
		h.logger.Errorw("user_create_token_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to generate api token",
		})
	}

	user := &domain.User{
		Username:     req.Username,
		APIToken:     token,
		RegionCode:   strings.ToUpper(req.RegionCode),
		RegionName:   req.RegionName,
		RegisteredAt: time.Now(),
	}

	if err := h.users.Create(c.Context(), user); err != nil {
		h.logger.Errorw("user_create_failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}

	h.logger.Infow("user_create_success", "id", user.ID, "username", user.Username)
	resp := dto.UserToResponse(user)
	resp.APIToken = token
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user := middleware.AuthenticatedUser(c)
	return c.JSON(dto.UserToResponse(user))
}
