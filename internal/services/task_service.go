package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/query"
	"productivity/internal/summary"
)

// TaskInput is the JSON body of task create and update requests. An empty
// dueDate string clears the due date.
type TaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	DueDate     *string `json:"dueDate"`
}

func (in TaskInput) apply(t *core.Task) error {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		t.Status = core.TaskStatus(strings.TrimSpace(*in.Status))
	}
	if in.Priority != nil {
		t.Priority = core.TaskPriority(strings.TrimSpace(*in.Priority))
	}
	if in.Category != nil {
		t.Category = strings.TrimSpace(*in.Category)
	}
	if in.DueDate != nil {
		if strings.TrimSpace(*in.DueDate) == "" {
			t.DueDate = nil
		} else {
			d, err := core.ParseTime(*in.DueDate)
			if err != nil {
				return core.NewValidationError("dueDate", "dueDate must be a valid date")
			}
			t.DueDate = &d
		}
	}
	return nil
}

// TaskService implements the owner-scoped task operations.
type TaskService struct {
	store TaskStore
	opts  Options
}

func NewTaskService(store TaskStore, opts Options) *TaskService {
	return &TaskService{store: store, opts: opts.withDefaults(log.ComponentTask)}
}

// Create stores a new task owned by the caller; status defaults to pending
// and priority to medium.
func (s *TaskService) Create(ctx context.Context, id core.Identity, in TaskInput) (core.Task, error) {
	if err := requireIdentity(id); err != nil {
		return core.Task{}, err
	}

	now := s.opts.now()
	t := core.Task{
		ID:        uuid.NewString(),
		Status:    core.StatusPending,
		Priority:  core.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := in.apply(&t); err != nil {
		return core.Task{}, err
	}
	t.UserID = id.UserID
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceTask, ActionCreated, t.ID, t.UserID)
	return t, nil
}

func (s *TaskService) List(ctx context.Context, id core.Identity, params url.Values) (query.Result[core.Task], error) {
	if err := requireIdentity(id); err != nil {
		return query.Result[core.Task]{}, err
	}
	f, err := query.TaskFilter(query.OwnerScope(id), params)
	if err != nil {
		return query.Result[core.Task]{}, err
	}
	page, err := s.opts.listing(query.TaskListing).Resolve(params)
	if err != nil {
		return query.Result[core.Task]{}, err
	}
	return listPage(ctx, "tasks", s.store.FindTasks, s.store.CountTasks, f, page)
}

func (s *TaskService) Get(ctx context.Context, id core.Identity, taskID string) (core.Task, error) {
	if err := requireIdentity(id); err != nil {
		return core.Task{}, err
	}
	t, err := s.store.GetTask(ctx, query.OwnerScope(id), taskID)
	if err != nil {
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, id core.Identity, taskID string, in TaskInput) (core.Task, error) {
	if err := requireIdentity(id); err != nil {
		return core.Task{}, err
	}
	t, err := s.store.UpdateTask(ctx, query.OwnerScope(id), taskID, func(t *core.Task) error {
		if err := in.apply(t); err != nil {
			return err
		}
		t.UpdatedAt = s.opts.now()
		return t.Validate()
	})
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceTask, ActionUpdated, t.ID, t.UserID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id core.Identity, taskID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, query.OwnerScope(id), taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceTask, ActionDeleted, taskID, id.UserID)
	return nil
}

// Summary counts the caller's tasks by status, optionally within a dueDate range.
func (s *TaskService) Summary(ctx context.Context, id core.Identity, params url.Values) (summary.TaskSummary, error) {
	if err := requireIdentity(id); err != nil {
		return summary.TaskSummary{}, err
	}
	f, err := query.DateRangeFilter(query.OwnerScope(id), params, query.FieldDueDate)
	if err != nil {
		return summary.TaskSummary{}, err
	}
	return taskSummary(ctx, s.store, f)
}

func taskSummary(ctx context.Context, store TaskStore, f query.Filter) (summary.TaskSummary, error) {
	byStatus, err := store.CountTasksBy(ctx, f, query.FieldStatus)
	if err != nil {
		return summary.TaskSummary{}, fmt.Errorf("task summary: %w", err)
	}
	return summary.NewTaskSummary(byStatus), nil
}
