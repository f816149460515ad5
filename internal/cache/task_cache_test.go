package cache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/testutil"
)

func mustFill(t *testing.T, c *TaskCache, task *model.Task) {
	t.Helper()
	ctx := context.Background()
	version, err := c.Version(ctx, task.OwnerID, task.ID)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	written, err := c.Fill(ctx, task, version)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if !written {
		t.Fatal("expected Fill to write the entry")
	}
}

func TestTaskCache_FillGetDelete(t *testing.T) {
	_, client := testutil.NewRedis(t)
	c := NewTaskCache(client, time.Minute)
	ctx := context.Background()

	link := "http://x"
	task := &model.Task{ID: 7, Name: "t1", AudioLink: &link, Prompts: model.PromptList{"a", "b"}, OwnerID: 3}
	mustFill(t, c, task)

	got, hit, err := c.Get(ctx, 3, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Name != "t1" || got.AudioLink == nil || *got.AudioLink != link || got.OwnerID != 3 {
		t.Errorf("unexpected cached task: %+v", got)
	}
	if !reflect.DeepEqual([]string(got.Prompts), []string{"a", "b"}) {
		t.Errorf("prompts = %q", got.Prompts)
	}

	if err := c.Delete(ctx, 3, 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, hit, err := c.Get(ctx, 3, 7); err != nil || hit {
		t.Errorf("expected miss after delete, hit=%v err=%v", hit, err)
	}
}

func TestTaskCache_KeyedByOwner(t *testing.T) {
	_, client := testutil.NewRedis(t)
	c := NewTaskCache(client, time.Minute)
	ctx := context.Background()

	mustFill(t, c, &model.Task{ID: 1, Name: "mine", OwnerID: 1})
	if _, hit, err := c.Get(ctx, 2, 1); err != nil || hit {
		t.Errorf("other owner must miss, hit=%v err=%v", hit, err)
	}
}

func TestTaskCache_Expires(t *testing.T) {
	server, client := testutil.NewRedis(t)
	c := NewTaskCache(client, 5*time.Second)
	ctx := context.Background()

	mustFill(t, c, &model.Task{ID: 1, Name: "t", OwnerID: 1})
	server.FastForward(6 * time.Second)
	if _, hit, err := c.Get(ctx, 1, 1); err != nil || hit {
		t.Errorf("expected miss after ttl, hit=%v err=%v", hit, err)
	}
}

func TestTaskCache_CorruptEntry(t *testing.T) {
	server, client := testutil.NewRedis(t)
	c := NewTaskCache(client, time.Minute)

	if err := server.Set("task:1:1", "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, _, err := c.Get(context.Background(), 1, 1); err == nil {
		t.Error("expected decode error for corrupt entry")
	}
}

func TestTaskCache_FillRefusedAfterDelete(t *testing.T) {
	_, client := testutil.NewRedis(t)
	c := NewTaskCache(client, time.Minute)
	ctx := context.Background()

	version, err := c.Version(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if err := c.Delete(ctx, 1, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	written, err := c.Fill(ctx, &model.Task{ID: 1, Name: "stale", OwnerID: 1}, version)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if written {
		t.Error("Fill with a version older than the last delete must not write")
	}
	if _, hit, err := c.Get(ctx, 1, 1); err != nil || hit {
		t.Errorf("expected miss, hit=%v err=%v", hit, err)
	}

	mustFill(t, c, &model.Task{ID: 1, Name: "fresh", OwnerID: 1})
	got, hit, err := c.Get(ctx, 1, 1)
	if err != nil || !hit || got.Name != "fresh" {
		t.Errorf("Get = %+v, %v, %v; want fresh entry", got, hit, err)
	}
}

func TestTaskCache_VersionExpires(t *testing.T) {
	server, client := testutil.NewRedis(t)
	c := NewTaskCache(client, 5*time.Second)
	ctx := context.Background()

	if err := c.Delete(ctx, 1, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !server.Exists("task:1:1:version") {
		t.Fatal("expected version key after delete")
	}
	server.FastForward(11 * time.Second)
	if server.Exists("task:1:1:version") {
		t.Error("version key should expire")
	}
}
