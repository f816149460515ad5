package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskhub/internal/app"
	"taskhub/internal/model"
	"taskhub/internal/transport/http/middleware"
	"taskhub/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
}

type CreateTaskRequest struct {
	Name      string   `json:"name" binding:"required,max=255"`
	AudioLink *string  `json:"audio_link" binding:"omitempty,max=1024"`
	Prompts   []string `json:"prompts"`
}

func NewTaskHandler(taskService *app.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Get(c *gin.Context) {
	user, taskID, ok := taskRequestContext(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(c, err, "get task failed")
		return
	}
	response.OK(c, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user.ID, app.CreateTaskInput{
		Name:      req.Name,
		AudioLink: req.AudioLink,
		Prompts:   req.Prompts,
	})
	if err != nil {
		writeTaskError(c, err, "create task failed")
		return
	}
	response.OK(c, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	user, taskID, ok := taskRequestContext(c)
	if !ok {
		return
	}

	var update model.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if update.Name.Value != nil && len(*update.Name.Value) > 255 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "name is too long")
		return
	}
	if update.AudioLink.Value != nil && len(*update.AudioLink.Value) > 1024 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "audio_link is too long")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), user.ID, taskID, update)
	if err != nil {
		writeTaskError(c, err, "update task failed")
		return
	}
	response.OK(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user, taskID, ok := taskRequestContext(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), user.ID, taskID); err != nil {
		writeTaskError(c, err, "delete task failed")
		return
	}
	response.OK(c, gin.H{"msg": "task deleted", "deleted_task_id": taskID})
}

func taskRequestContext(c *gin.Context) (*model.User, uint, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
		return nil, 0, false
	}

	taskID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || taskID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid task id")
		return nil, 0, false
	}
	return user, uint(taskID64), true
}

func writeTaskError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTaskNotFound, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
