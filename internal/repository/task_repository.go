package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskhub/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

// GetByIDAndOwnerID returns nil when the task does not exist or belongs to
// someone else; callers cannot tell the two apart.
func (r *TaskRepository) GetByIDAndOwnerID(ctx context.Context, taskID, ownerID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", taskID, ownerID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListByOwnerID(ctx context.Context, ownerID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

// ApplyUpdate writes only the fields present in update and refreshes task
// from the stored row.
func (r *TaskRepository) ApplyUpdate(ctx context.Context, task *model.Task, update model.TaskUpdate) error {
	columns := make(map[string]interface{}, 3)
	if update.Name.Present && update.Name.Value != nil {
		columns["name"] = *update.Name.Value
	}
	if update.AudioLink.Present {
		if update.AudioLink.Value != nil {
			columns["audio_link"] = *update.AudioLink.Value
		} else {
			columns["audio_link"] = nil
		}
	}
	if update.Prompts.Present {
		var prompts model.PromptList
		if update.Prompts.Value != nil {
			prompts = model.PromptList(*update.Prompts.Value)
			if prompts == nil {
				prompts = model.PromptList{}
			}
		}
		columns["prompts"] = prompts
	}

	db := r.db.WithContext(ctx)
	if len(columns) > 0 {
		err := db.Model(&model.Task{}).
			Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).
			Updates(columns).Error
		if err != nil {
			return fmt.Errorf("update task failed: %w", err)
		}
	}

	var refreshed model.Task
	if err := db.Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).First(&refreshed).Error; err != nil {
		return fmt.Errorf("reload task failed: %w", err)
	}
	*task = refreshed
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task failed: %w", err)
	}
	return nil
}
