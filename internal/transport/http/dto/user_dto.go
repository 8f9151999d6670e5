package dto

import (
	"time"

	"github.com/earnly/backend/internal/domain"
)

type CreateUserRequest struct {
	Username   string `json:"username" validate:"required"`
	RegionCode string `json:"region_code"`
	RegionName string `json:"region_name"`
}

func (r *CreateUserRequest) Validate() []string {
	var errors []string
	if r.Username == "" {
		errors = append(errors, "username is required")
	}
	if len(r.RegionCode) > 8 {
		errors = append(errors, "region_code must be at most 8 characters")
	}
	return errors
}

type UserResponse struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	RegionCode    string    `json:"region_code,omitempty"`
	RegionName    string    `json:"region_name,omitempty"`
	ReferralCount int       `json:"referral_count"`
	RegisteredAt  time.Time `json:"registered_at"`

	// Only set on creation; the token is never readable again.
	APIToken string `json:"api_token,omitempty"`
}

func UserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		RegionCode:    user.RegionCode,
		RegionName:    user.RegionName,
		ReferralCount: user.ReferralCount,
		RegisteredAt:  user.RegisteredAt,
	}
}
