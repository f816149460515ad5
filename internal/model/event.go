package model

import "time"

const (
	TaskEventCreated = "task.created"
	TaskEventUpdated = "task.updated"
	TaskEventDeleted = "task.deleted"
)

type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     uint      `json:"task_id"`
	OwnerID    uint      `json:"owner_id"`
	Task       *Task     `json:"task,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
