package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskCache interface {
	Get(ctx context.Context, ownerID, taskID uint) (*model.Task, bool, error)
	Version(ctx context.Context, ownerID, taskID uint) (string, error)
	Fill(ctx context.Context, task *model.Task, version string) (bool, error)
	Delete(ctx context.Context, ownerID, taskID uint) error
}

type TaskEventPublisher interface {
	Publish(ctx context.Context, event model.TaskEvent) error
}

type TaskService struct {
	taskRepo  *repository.TaskRepository
	cache     TaskCache
	publisher TaskEventPublisher
}

type CreateTaskInput struct {
	Name      string
	AudioLink *string
	Prompts   []string
}

// NewTaskService builds the service. cache and publisher may be nil.
func NewTaskService(taskRepo *repository.TaskRepository, cache TaskCache, publisher TaskEventPublisher) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	if ownerID == 0 || taskID == 0 {
		return nil, ErrTaskNotFound
	}

	var version string
	fillable := false
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, ownerID, taskID); err == nil && hit && cached.OwnerID == ownerID {
			return cached, nil
		}
		// The version must be read before the row so a write that lands in
		// between invalidates this fill.
		if v, err := s.cache.Version(ctx, ownerID, taskID); err == nil {
			version, fillable = v, true
		}
	}

	task, err := s.lookup(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if fillable {
		if _, err := s.cache.Fill(ctx, task, version); err != nil {
			log.Printf("fill task %d into cache failed: %v", task.ID, err)
		}
	}
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID uint, input CreateTaskInput) (*model.Task, error) {
	name := strings.TrimSpace(input.Name)
	if ownerID == 0 || name == "" {
		return nil, ErrInvalidInput
	}

	task := &model.Task{
		Name:      name,
		AudioLink: input.AudioLink,
		Prompts:   model.PromptList(input.Prompts),
		OwnerID:   ownerID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, model.TaskEventCreated, task)
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID uint, update model.TaskUpdate) (*model.Task, error) {
	if update.Name.Present {
		if update.Name.Value == nil || strings.TrimSpace(*update.Name.Value) == "" {
			return nil, ErrInvalidInput
		}
		name := strings.TrimSpace(*update.Name.Value)
		update.Name = model.Set(name)
	}

	task, err := s.lookup(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, task)
	if err := s.taskRepo.ApplyUpdate(ctx, task, update); err != nil {
		return nil, err
	}
	s.evict(ctx, task)

	s.publish(ctx, model.TaskEventUpdated, task)
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID uint) error {
	task, err := s.lookup(ctx, ownerID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task); err != nil {
		return err
	}
	s.evict(ctx, task)

	s.publish(ctx, model.TaskEventDeleted, task)
	return nil
}

func (s *TaskService) lookup(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	if ownerID == 0 || taskID == 0 {
		return nil, ErrTaskNotFound
	}
	task, err := s.taskRepo.GetByIDAndOwnerID(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) evict(ctx context.Context, task *model.Task) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, task.OwnerID, task.ID); err != nil {
		log.Printf("evict task %d from cache failed: %v", task.ID, err)
	}
}

// publish is best effort; the write has already been committed.
func (s *TaskService) publish(ctx context.Context, eventType string, task *model.Task) {
	if s.publisher == nil {
		return
	}
	event := model.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		OwnerID:    task.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != model.TaskEventDeleted {
		snapshot := *task
		event.Task = &snapshot
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish %s for task %d failed: %v", eventType, task.ID, err)
	}
}
