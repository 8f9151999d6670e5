package services

import (
	"context"
	"strings"
	"time"

	"github.com/earnly/backend/internal/config"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

// EligibilityService decides whether a user may start any task at all. It
// never determines region or account status itself; both are supplied by
// external collaborators and read off the user record.
type EligibilityService struct {
	attemptRepo ports.AttemptRepository
	settings    *SystemSettingService
	logger      *logger.Logger
	cfg         config.EngagementConfig

	now func() time.Time
}

type EligibilityServiceConfig struct {
	AttemptRepo ports.AttemptRepository
	Settings    *SystemSettingService
	Logger      *logger.Logger
	Config      config.EngagementConfig
}

func NewEligibilityService(cfg EligibilityServiceConfig) *EligibilityService {
	return &EligibilityService{
		attemptRepo: cfg.AttemptRepo,
		settings:    cfg.Settings,
		logger:      cfg.Logger,
		cfg:         cfg.Config,
		now:         time.Now,
	}
}

// blockedRegions merges the config default list with the runtime setting
// override. Codes are compared case-insensitively.
func (s *EligibilityService) blockedRegions(ctx context.Context) map[string]bool {
	blocked := make(map[string]bool, len(s.cfg.BlockedRegions))
	for _, code := range s.cfg.BlockedRegions {
		blocked[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	if s.settings != nil {
		if raw, ok := s.settings.Get(ctx, SettingBlockedRegions); ok {
			for _, code := range strings.Split(raw, ",") {
				code = strings.ToUpper(strings.TrimSpace(code))
				if code != "" {
					blocked[code] = true
				}
			}
		}
	}
	return blocked
}

func (s *EligibilityService) dailyQuota(ctx context.Context) int {
	if s.settings != nil {
		if quota, ok := s.settings.GetInt(ctx, SettingDailyQuota); ok {
			return quota
		}
	}
	return s.cfg.DailyQuota
}

// Snapshot recomputes the user's eligibility from account, region and
// referral data. Derived on every task-list fetch, never persisted.
func (s *EligibilityService) Snapshot(ctx context.Context, user *domain.User) (domain.EligibilitySnapshot, error) {
	snap := domain.EligibilitySnapshot{
		RegionCode: user.RegionCode,
		RegionName: user.RegionName,
		DailyQuota: s.dailyQuota(ctx),
	}

	snap.RegionBlocked = s.blockedRegions(ctx)[strings.ToUpper(user.RegionCode)]

	// After the trial window a user with no qualifying referral is hard
	// gated until one is added.
	if s.cfg.TrialWindowDays > 0 {
		trialEnd := user.RegisteredAt.AddDate(0, 0, s.cfg.TrialWindowDays)
		snap.ReferralRequired = s.now().After(trialEnd) && user.ReferralCount == 0
	}

	// Daily quota is a rolling 24h window over accepted attempts.
	used, err := s.attemptRepo.CountAcceptedSince(ctx, user.ID, s.now().Add(-24*time.Hour))
	if err != nil {
		s.logger.Errorw("eligibility_quota_count_failed", "user_id", user.ID, "error", err)
		return snap, err
	}
	snap.DailyCompletionsUsed = int(used)

	return snap, nil
}

// CheckStart returns the sentinel for the first gate denying the user, or
// nil when starting is allowed. Access-disabled is checked first: it is
// account-level and fatal, not remediable by eligibility changes.
func (s *EligibilityService) CheckStart(ctx context.Context, user *domain.User) error {
	if user.AccessDisabled {
		return ErrAccessDisabled
	}

	snap, err := s.Snapshot(ctx, user)
	if err != nil {
		return err
	}
	if snap.RegionBlocked {
		return ErrRegionBlocked
	}
	if snap.ReferralRequired {
		return ErrReferralRequired
	}
	if snap.QuotaReached() {
		return ErrQuotaExceeded
	}
	return nil
}
