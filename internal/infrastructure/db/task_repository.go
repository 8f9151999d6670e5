package db

import (
	"context"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.TaskDefinition) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "title", task.Title, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID, "title", task.Title)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*domain.TaskDefinition, error) {
	var task domain.TaskDefinition
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetActive(ctx context.Context) ([]domain.TaskDefinition, error) {
	var tasks []domain.TaskDefinition
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at desc").Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_active_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) GetAll(ctx context.Context) ([]domain.TaskDefinition, error) {
	var tasks []domain.TaskDefinition
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_failed", "error", err)
		return nil, err
	}
	r.log.Infow("task_repo_list_ok", "count", len(tasks))
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.TaskDefinition) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		r.log.Errorw("task_repo_update_failed", "id", task.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_update_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) Deactivate(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&domain.TaskDefinition{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		r.log.Errorw("task_repo_deactivate_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("task_repo_deactivate_ok", "id", id)
	return nil
}
