package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"taskhub/internal/model"
)

// fillTaskScript writes KEYS[1] only while the version counter at KEYS[2]
// still equals ARGV[1]. A missing counter reads as "0".
var fillTaskScript = redisv9.NewScript(`
local current = redis.call("GET", KEYS[2])
if not current then
	current = "0"
end
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// TaskCache keeps recently read tasks in redis. Keys carry the owner id so an
// entry can only ever be served to the task's owner.
//
// Every task also has a version counter. Delete bumps it, and Fill refuses to
// write an entry loaded under an older version, so a slow reader cannot put
// back a row that was updated or deleted after it was read.
type TaskCache struct {
	client     *redisv9.Client
	ttl        time.Duration
	versionTTL time.Duration
}

func NewTaskCache(client *redisv9.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &TaskCache{
		client:     client,
		ttl:        ttl,
		versionTTL: 2 * ttl,
	}
}

func (c *TaskCache) Get(ctx context.Context, ownerID, taskID uint) (*model.Task, bool, error) {
	raw, err := c.client.Get(ctx, c.taskKey(ownerID, taskID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get task failed: %w", err)
	}

	var task model.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached task failed: %w", err)
	}
	return &task, true, nil
}

// Version returns the current version token of a task. Read it before loading
// the row and hand it to Fill.
func (c *TaskCache) Version(ctx context.Context, ownerID, taskID uint) (string, error) {
	version, err := c.client.Get(ctx, c.versionKey(ownerID, taskID)).Result()
	if err == redisv9.Nil {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get task version failed: %w", err)
	}
	return version, nil
}

// Fill stores task if its version is still the one observed before the load.
// It reports whether the entry was written.
func (c *TaskCache) Fill(ctx context.Context, task *model.Task, version string) (bool, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return false, fmt.Errorf("marshal task cache failed: %w", err)
	}
	keys := []string{c.taskKey(task.OwnerID, task.ID), c.versionKey(task.OwnerID, task.ID)}
	written, err := fillTaskScript.Run(ctx, c.client, keys, version, payload, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis fill task failed: %w", err)
	}
	return written == 1, nil
}

// Delete drops the entry and bumps the version so in-flight fills are refused.
func (c *TaskCache) Delete(ctx context.Context, ownerID, taskID uint) error {
	versionKey := c.versionKey(ownerID, taskID)
	_, err := c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.PExpire(ctx, versionKey, c.versionTTL)
		pipe.Del(ctx, c.taskKey(ownerID, taskID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete task failed: %w", err)
	}
	return nil
}

func (c *TaskCache) taskKey(ownerID, taskID uint) string {
	return fmt.Sprintf("task:%d:%d", ownerID, taskID)
}

func (c *TaskCache) versionKey(ownerID, taskID uint) string {
	return fmt.Sprintf("task:%d:%d:version", ownerID, taskID)
}
