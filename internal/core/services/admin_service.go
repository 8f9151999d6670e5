package services

import (
	"context"
	"time"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

// AdminTaskService is the write path for task definitions. Publishing and
// editing broadcast live events so every connected client refreshes its
// task list.
type AdminTaskService struct {
	taskRepo     ports.TaskRepository
	timelineRepo ports.TimelineRepository
	hub          ports.EventPublisher
	logger       *logger.Logger
}

func NewAdminTaskService(taskRepo ports.TaskRepository, timelineRepo ports.TimelineRepository, hub ports.EventPublisher, logger *logger.Logger) *AdminTaskService {
	return &AdminTaskService{
		taskRepo:     taskRepo,
		timelineRepo: timelineRepo,
		hub:          hub,
		logger:       logger,
	}
}

func validatePublishInput(input ports.PublishTaskInput) error {
	if input.Title == "" {
		return ErrTaskInvalidInput
	}
	if input.Reward.IsNegative() {
		return ErrTaskInvalidInput
	}
	if input.MinDurationSeconds < 0 || input.MinScrollPercentage < 0 ||
		input.MinScrollPercentage > 100 || input.MinAdClicks < 0 {
		return ErrTaskInvalidInput
	}
	if input.RequireScrolling && input.ContentURL == "" {
		return ErrTaskInvalidInput
	}
	return nil
}

func applyPublishInput(task *domain.TaskDefinition, input ports.PublishTaskInput) {
	task.Title = input.Title
	task.Reward = input.Reward
	task.Difficulty = input.Difficulty
	task.Category = input.Category
	task.ContentURL = input.ContentURL
	task.MinDurationSeconds = input.MinDurationSeconds
	task.RequireScrolling = input.RequireScrolling
	task.MinScrollPercentage = input.MinScrollPercentage
	task.RequireInteraction = input.RequireInteraction
	task.MinAdClicks = input.MinAdClicks
	task.MaxAttempts = input.MaxAttempts
	task.TimeLimitMinutes = input.TimeLimitMinutes
	task.ManualReview = input.ManualReview
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = 1
	}
	if task.Difficulty == "" {
		task.Difficulty = domain.TaskDifficultyEasy
	}
	if task.Category == "" {
		task.Category = domain.TaskCategoryOther
	}
}

func (s *AdminTaskService) PublishTask(ctx context.Context, input ports.PublishTaskInput) (*domain.TaskDefinition, error) {
	if err := validatePublishInput(input); err != nil {
		return nil, err
	}

	task := &domain.TaskDefinition{IsActive: true}
	applyPublishInput(task, input)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Errorw("task_publish_failed", "title", input.Title, "error", err)
		return nil, err
	}

	s.recordTimeline(ctx, domain.EventTypeTaskPublished, task)
	s.hub.Broadcast(domain.LiveEvent{
		Type:      domain.LiveEventTaskCreated,
		TaskID:    task.ID,
		Timestamp: time.Now(),
	})

	s.logger.Infow("task_published", "id", task.ID, "title", task.Title, "reward", task.Reward)
	return task, nil
}

func (s *AdminTaskService) UpdateTask(ctx context.Context, id uint, input ports.PublishTaskInput) (*domain.TaskDefinition, error) {
	if err := validatePublishInput(input); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	applyPublishInput(task, input)
	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Errorw("task_update_failed", "id", id, "error", err)
		return nil, err
	}

	s.recordTimeline(ctx, domain.EventTypeTaskUpdated, task)
	s.hub.Broadcast(domain.LiveEvent{
		Type:      domain.LiveEventTaskUpdated,
		TaskID:    task.ID,
		Timestamp: time.Now(),
	})

	s.logger.Infow("task_updated", "id", task.ID)
	return task, nil
}

func (s *AdminTaskService) DeactivateTask(ctx context.Context, id uint) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return ErrTaskNotFound
	}

	if err := s.taskRepo.Deactivate(ctx, task.ID); err != nil {
		s.logger.Errorw("task_deactivate_failed", "id", id, "error", err)
		return err
	}

	s.recordTimeline(ctx, domain.EventTypeTaskUpdated, task)
	s.hub.Broadcast(domain.LiveEvent{
		Type:      domain.LiveEventTaskUpdated,
		TaskID:    task.ID,
		Timestamp: time.Now(),
	})

	s.logger.Infow("task_deactivated", "id", id)
	return nil
}

func (s *AdminTaskService) recordTimeline(ctx context.Context, eventType string, task *domain.TaskDefinition) {
	taskID := task.ID
	event := &domain.TimelineEvent{
		Type:   eventType,
		Status: domain.EventStatusSuccess,
		Meta: domain.JSONB{
			"title": task.Title,
		},
		ResourceID:   &taskID,
		ResourceType: "task",
	}
	if err := s.timelineRepo.Create(ctx, event); err != nil {
		s.logger.Warnw("admin_timeline_write_failed", "task_id", task.ID, "error", err)
	}
}
