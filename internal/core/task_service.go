package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shop-agent/internal/store"
)

// TaskService is a minimal shop to-do list.
type TaskService interface {
	// Add appends a task with status "pending".
	Add(ctx context.Context, name, assignedTo string) (*TaskEntry, error)
	// List returns every task in insertion order.
	List(ctx context.Context) ([]TaskEntry, error)
	// PendingCount returns how many tasks are not done yet.
	PendingCount(ctx context.Context) (int, error)
}

type taskService struct {
	store store.Store
	now   func() time.Time
}

// NewTaskService constructs a TaskService over the tabular store.
func NewTaskService(st store.Store) TaskService {
	return &taskService{store: st, now: time.Now}
}

func (s *taskService) Add(ctx context.Context, name, assignedTo string) (*TaskEntry, error) {
	task := &TaskEntry{
		Name:       name,
		AssignedTo: assignedTo,
		Status:     "pending",
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	row := []string{task.Name, task.AssignedTo, task.Status, task.CreatedAt}
	if err := s.store.AppendRow(ctx, store.Task, row); err != nil {
		return nil, fmt.Errorf("append task: %w", err)
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context) ([]TaskEntry, error) {
	records, err := s.store.ReadAll(ctx, store.Task)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	tasks := make([]TaskEntry, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, TaskEntry{
			Name:       rec.Get("TaskName"),
			AssignedTo: rec.Get("AssignedTo"),
			Status:     rec.Get(store.ColStatus),
			CreatedAt:  rec.Get("CreatedAt"),
		})
	}
	return tasks, nil
}

func (s *taskService) PendingCount(ctx context.Context) (int, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		switch strings.ToLower(strings.TrimSpace(t.Status)) {
		case "done", "completed", "complete":
		default:
			n++
		}
	}
	return n, nil
}
