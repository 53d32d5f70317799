package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"envelopes/internal/core"
)

// TaskService manages the scheduled tasks of a phase. Every mutation reloads
// the scheduler so the armed trigger set never drifts from storage.
type TaskService struct {
	store     TaskStore
	scheduler Reloader
}

func NewTaskService(store TaskStore, scheduler Reloader) *TaskService {
	return &TaskService{store: store, scheduler: scheduler}
}

// CreateTask stores a new task. When phaseID is zero the task is attached to
// the currently active phase.
func (s *TaskService) CreateTask(ctx context.Context, t *core.ScheduledTask) (*core.ScheduledTask, error) {
	if t.PhaseID == 0 {
		phaseID, err := s.currentPhaseID(ctx)
		if err != nil {
			return nil, err
		}
		if phaseID == 0 {
			return nil, fmt.Errorf("no active phase to attach the task to")
		}
		t.PhaseID = phaseID
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Scheduled task created",
		"task_id", t.ID, "type", t.Type, "day", t.Day, "hour", t.Hour)
	return t, s.scheduler.Reload(ctx)
}

// ReplaceTask swaps the stored definition of a task in place, keeping its id.
func (s *TaskService) ReplaceTask(ctx context.Context, id int64, t *core.ScheduledTask) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.ReplaceTask(ctx, id, t); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Scheduled task replaced", "task_id", id)
	return s.scheduler.Reload(ctx)
}

func (s *TaskService) SetTaskActive(ctx context.Context, id int64, active bool) error {
	if _, err := s.store.Task(ctx, id); err != nil {
		return fmt.Errorf("resolve task: %w", err)
	}
	if err := s.store.SetTaskActive(ctx, id, active); err != nil {
		return err
	}
	return s.scheduler.Reload(ctx)
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Scheduled task deleted", "task_id", id)
	return s.scheduler.Reload(ctx)
}

// ActiveTasks lists the tasks of the currently active phase.
func (s *TaskService) ActiveTasks(ctx context.Context) ([]core.ScheduledTask, error) {
	phaseID, err := s.currentPhaseID(ctx)
	if err != nil {
		return nil, err
	}
	if phaseID == 0 {
		return nil, nil
	}
	return s.store.TasksForPhase(ctx, phaseID)
}

func (s *TaskService) currentPhaseID(ctx context.Context) (int64, error) {
	state, err := s.store.SystemState(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load system state: %w", err)
	}
	return state.CurrentPhaseID, nil
}
