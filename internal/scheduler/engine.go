// Package scheduler arms monthly triggers for the active phase's tasks and
// dispatches them: reminder broadcasts and automatic envelope transfers.
// Trigger days get a business-day correction driven by a holiday calendar.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"envelopes/internal/core"
	"envelopes/internal/notify"
	"envelopes/internal/workcal"
)

// Store is the slice of storage the engine reads. It never writes.
type Store interface {
	SystemState(ctx context.Context) (*core.SystemState, error)
	TasksForPhase(ctx context.Context, phaseID int64) ([]core.ScheduledTask, error)
	Users(ctx context.Context) ([]core.User, error)
	Envelope(ctx context.Context, id int64) (*core.Envelope, error)
}

// Transferer executes the funds movement of auto-transfer tasks.
type Transferer interface {
	ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*core.Transfer, error)
}

type trigger struct {
	task  core.ScheduledTask
	timer *time.Timer
	next  time.Time
}

// Engine owns the armed trigger set. Reload rebuilds it from scratch; each
// rebuild bumps a generation counter so firings armed by an older reload
// become no-ops instead of dispatching stale task definitions.
type Engine struct {
	store     Store
	transfers Transferer
	notifier  notify.Notifier
	cal       workcal.Calendar

	mu       sync.Mutex
	gen      uint64
	triggers map[int64]*trigger
	stopped  bool

	now func() time.Time
}

func NewEngine(store Store, transfers Transferer, notifier notify.Notifier, cal workcal.Calendar) *Engine {
	return &Engine{
		store:     store,
		transfers: transfers,
		notifier:  notifier,
		cal:       cal,
		triggers:  map[int64]*trigger{},
		now:       time.Now,
	}
}

// Reload discards every armed trigger and rebuilds the set from the active
// phase's tasks. With no active phase the set ends up empty. Concurrent
// reloads are safe; the last one wins.
func (e *Engine) Reload(ctx context.Context) error {
	loc, err := e.location(ctx)
	if err != nil {
		return err
	}

	state, err := e.store.SystemState(ctx)
	if errors.Is(err, core.ErrNotFound) || (err == nil && state.CurrentPhaseID == 0) {
		slog.WarnContext(ctx, "No active phase, scheduler runs with an empty trigger set")
		e.rebuild(nil, loc)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load system state: %w", err)
	}

	tasks, err := e.store.TasksForPhase(ctx, state.CurrentPhaseID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	e.rebuild(tasks, loc)
	return nil
}

func (e *Engine) rebuild(tasks []core.ScheduledTask, loc *time.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.triggers {
		t.timer.Stop()
	}
	e.triggers = map[int64]*trigger{}
	e.gen++

	if e.stopped {
		return
	}

	now := e.now().In(loc)
	for _, task := range tasks {
		if !task.IsActive {
			continue
		}
		e.armLocked(task, now)
	}
	slog.Info("Scheduler reloaded", "generation", e.gen, "triggers", len(e.triggers))
}

// armLocked schedules the next firing of task. Caller holds e.mu.
func (e *Engine) armLocked(task core.ScheduledTask, now time.Time) {
	fire := nextOccurrence(now, task.Day, task.Hour, e.cal)
	gen := e.gen

	tr := &trigger{task: task, next: fire}
	tr.timer = time.AfterFunc(fire.Sub(now), func() {
		e.fire(gen, task, fire.Location())
	})
	e.triggers[task.ID] = tr

	slog.Info("Trigger armed",
		"task_id", task.ID,
		"type", task.Type,
		"fires_at", fire.Format(time.RFC3339))
}

// fire dispatches one trigger and re-arms it for the following month. A
// firing whose generation is stale does nothing.
func (e *Engine) fire(gen uint64, task core.ScheduledTask, loc *time.Location) {
	e.mu.Lock()
	if gen != e.gen || e.stopped {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	ctx := context.Background()
	e.dispatch(ctx, task)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.stopped {
		return
	}
	e.armLocked(task, e.now().In(loc))
}

// dispatch executes one task occurrence. Errors are logged, never
// propagated: a failed occurrence must not take the engine down.
func (e *Engine) dispatch(ctx context.Context, task core.ScheduledTask) {
	dispatchID := uuid.NewString()
	logger := slog.With("dispatch_id", dispatchID, "task_id", task.ID, "type", task.Type)
	logger.InfoContext(ctx, "Dispatching task")

	switch task.Type {
	case core.TaskReminder:
		e.broadcast(ctx, logger, task.ReminderText)
	case core.TaskAutoTransfer:
		e.autoTransfer(ctx, logger, task)
	default:
		logger.ErrorContext(ctx, "Unknown task type, skipping")
	}
}

func (e *Engine) autoTransfer(ctx context.Context, logger *slog.Logger, task core.ScheduledTask) {
	from, err := e.store.Envelope(ctx, task.FromEnvelopeID)
	if err != nil {
		logger.ErrorContext(ctx, "Auto-transfer source lookup failed", "error", err)
		return
	}
	to, err := e.store.Envelope(ctx, task.ToEnvelopeID)
	if err != nil {
		logger.ErrorContext(ctx, "Auto-transfer destination lookup failed", "error", err)
		return
	}

	_, err = e.transfers.ApplyTransfer(ctx, from.ID, to.ID, task.Amount)
	switch {
	case errors.Is(err, core.ErrInsufficientFunds):
		logger.WarnContext(ctx, "Auto-transfer skipped, insufficient funds", "from", from.Name)
		e.broadcast(ctx, logger, fmt.Sprintf(
			"Automatic transfer of %s from %q to %q skipped: insufficient funds.",
			core.FormatAmount(task.Amount), from.Name, to.Name))
	case err != nil:
		logger.ErrorContext(ctx, "Auto-transfer failed", "error", err)
	default:
		e.broadcast(ctx, logger, fmt.Sprintf(
			"Automatic transfer completed: %s from %q to %q.",
			core.FormatAmount(task.Amount), from.Name, to.Name))
	}
}

// broadcast sends text to every user. A failed recipient is logged and
// skipped so one unreachable chat never blocks the rest.
func (e *Engine) broadcast(ctx context.Context, logger *slog.Logger, text string) {
	users, err := e.store.Users(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Recipient list unavailable", "error", err)
		return
	}
	for _, u := range users {
		if err := e.notifier.Notify(ctx, u.ChatID, text); err != nil {
			logger.ErrorContext(ctx, "Notification failed",
				"chat_id", u.ChatID, "error", err)
		}
	}
}

// location picks the zone trigger times are computed in: the first user
// with a parseable timezone, UTC otherwise.
func (e *Engine) location(ctx context.Context) (*time.Location, error) {
	users, err := e.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.Timezone == "" {
			continue
		}
		loc, err := time.LoadLocation(u.Timezone)
		if err == nil {
			return loc, nil
		}
		slog.WarnContext(ctx, "Ignoring unparseable user timezone",
			"user_id", u.ID, "timezone", u.Timezone)
	}
	return time.UTC, nil
}

// Stop cancels every armed trigger. The engine does not rearm after Stop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	for _, t := range e.triggers {
		t.timer.Stop()
	}
	e.triggers = map[int64]*trigger{}
}

// ArmedTaskIDs reports which tasks currently hold a live trigger, with the
// planned fire time of each.
func (e *Engine) ArmedTaskIDs() map[int64]time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int64]time.Time, len(e.triggers))
	for id, t := range e.triggers {
		out[id] = t.next
	}
	return out
}
