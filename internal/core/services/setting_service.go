package services

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

// Setting keys read by the eligibility gate. Values here override the
// config-file defaults at runtime.
const (
	SettingBlockedRegions = "engagement_blocked_regions"
	SettingDailyQuota     = "engagement_daily_quota"
)

type SystemSettingService struct {
	repo        ports.SystemSettingRepository
	logger      *logger.Logger
	mu          sync.Mutex
	locks       map[string]*sync.Mutex
	enableLocks bool
}

func NewSystemSettingService(repo ports.SystemSettingRepository, logger *logger.Logger, enableLocks bool) *SystemSettingService {
	return &SystemSettingService{
		repo:        repo,
		logger:      logger,
		locks:       make(map[string]*sync.Mutex),
		enableLocks: enableLocks,
	}
}

func (s *SystemSettingService) lockKeys(keys ...string) func() {
	if !s.enableLocks {
		return func() {}
	}
	if len(keys) == 0 {
		return func() {}
	}
	sort.Strings(keys)
	s.mu.Lock()
	acquired := make([]*sync.Mutex, 0, len(keys))
	for _, k := range keys {
		m := s.locks[k]
		if m == nil {
			m = &sync.Mutex{}
			s.locks[k] = m
		}
		acquired = append(acquired, m)
	}
	s.mu.Unlock()
	for _, m := range acquired {
		m.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

// Get returns a setting value, reporting false when the key is unset.
func (s *SystemSettingService) Get(ctx context.Context, key string) (string, bool) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil || setting == nil {
		return "", false
	}
	return setting.Value, true
}

func (s *SystemSettingService) GetInt(ctx context.Context, key string) (int, bool) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warnw("setting_parse_int_failed", "key", key, "value", raw)
		return 0, false
	}
	return n, true
}

func (s *SystemSettingService) Set(ctx context.Context, key, value, settingType, category string) error {
	unlock := s.lockKeys("setting:" + key)
	defer unlock()

	setting := &domain.SystemSetting{
		Key:      key,
		Value:    value,
		Type:     settingType,
		Category: category,
	}
	if err := s.repo.Set(ctx, setting); err != nil {
		s.logger.Errorw("setting_set_failed", "key", key, "error", err)
		return err
	}
	s.logger.Infow("setting_set_ok", "key", key, "category", category)
	return nil
}

func (s *SystemSettingService) GetByCategory(ctx context.Context, category string) ([]domain.SystemSetting, error) {
	return s.repo.GetByCategory(ctx, category)
}

func (s *SystemSettingService) Delete(ctx context.Context, key string) error {
	unlock := s.lockKeys("setting:" + key)
	defer unlock()
	return s.repo.Delete(ctx, key)
}
