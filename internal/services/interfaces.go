package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

// Store interfaces consumed by the services. internal/storage.SQLiteRepository
// satisfies all of them; tests substitute hand-written fakes.

type (
	// BalanceStore is what the Balance Engine needs: fresh entity reads and
	// the two atomic record-plus-balance write units.
	BalanceStore interface {
		Envelope(ctx context.Context, id int64) (*core.Envelope, error)
		Category(ctx context.Context, id int64) (*core.Category, error)
		RecordTransaction(ctx context.Context, t *core.Transaction, newBalance decimal.Decimal) error
		RecordTransfer(ctx context.Context, t *core.Transfer, newFrom, newTo decimal.Decimal) error
		SetEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	}

	// PhaseStore backs the Goal/Phase Lifecycle Manager.
	PhaseStore interface {
		Phase(ctx context.Context, id int64) (*core.Phase, error)
		ActivePhases(ctx context.Context) ([]core.Phase, error)
		CreatePhase(ctx context.Context, p *core.Phase) error
		RenamePhase(ctx context.Context, id int64, name string) error
		SetPhaseMonthlyTarget(ctx context.Context, id int64, target decimal.Decimal) error
		SetPhaseActive(ctx context.Context, id int64, active bool) error

		SystemState(ctx context.Context) (*core.SystemState, error)
		SetCurrentPhase(ctx context.Context, phaseID int64) error

		Goal(ctx context.Context, id int64) (*core.Goal, error)
		CreateGoal(ctx context.Context, g *core.Goal) error
		RenameGoal(ctx context.Context, id int64, name string) error
		ArchiveGoal(ctx context.Context, id int64) error
		ActiveGoalForPhase(ctx context.Context, phaseID int64) (*core.Goal, error)

		Envelope(ctx context.Context, id int64) (*core.Envelope, error)
		EnvelopeByName(ctx context.Context, name string) (*core.Envelope, error)
		CreateEnvelope(ctx context.Context, e *core.Envelope) error
	}

	// TaskStore backs scheduled-task management.
	TaskStore interface {
		Task(ctx context.Context, id int64) (*core.ScheduledTask, error)
		TasksForPhase(ctx context.Context, phaseID int64) ([]core.ScheduledTask, error)
		CreateTask(ctx context.Context, t *core.ScheduledTask) error
		SetTaskActive(ctx context.Context, id int64, active bool) error
		ReplaceTask(ctx context.Context, id int64, t *core.ScheduledTask) error
		DeleteTask(ctx context.Context, id int64) error
		SystemState(ctx context.Context) (*core.SystemState, error)
	}

	// ManageStore backs envelope, category, and user management.
	ManageStore interface {
		Envelope(ctx context.Context, id int64) (*core.Envelope, error)
		ActiveEnvelopes(ctx context.Context) ([]core.Envelope, error)
		CreateEnvelope(ctx context.Context, e *core.Envelope) error
		RenameEnvelope(ctx context.Context, id int64, name string) error
		SetEnvelopeActive(ctx context.Context, id int64, active bool) error
		SetEnvelopeSavings(ctx context.Context, id int64, savings bool) error

		Category(ctx context.Context, id int64) (*core.Category, error)
		ActiveCategories(ctx context.Context, ctype core.CategoryType) ([]core.Category, error)
		CreateCategory(ctx context.Context, c *core.Category) error
		SetCategoryActive(ctx context.Context, id int64, active bool) error

		UserByChatID(ctx context.Context, chatID int64) (*core.User, error)
		CreateUser(ctx context.Context, u *core.User) error
		SetUserTimezone(ctx context.Context, id int64, tz string) error
	}

	// ReportStore provides the aggregate queries behind reports.
	ReportStore interface {
		Users(ctx context.Context) ([]core.User, error)
		SystemState(ctx context.Context) (*core.SystemState, error)
		Phase(ctx context.Context, id int64) (*core.Phase, error)
		ActiveGoalForPhase(ctx context.Context, phaseID int64) (*core.Goal, error)
		SumTransfersInto(ctx context.Context, envelopeID int64) (decimal.Decimal, error)
		SumTransactionsForPeriod(ctx context.Context, ctype core.CategoryType, from, to time.Time) (decimal.Decimal, error)
		SumUserExpensesForPeriod(ctx context.Context, userID int64, from, to time.Time) (decimal.Decimal, error)
		SumSavingsTransfersForPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	}

	// Reloader is the scheduler's synchronization entry point. Phase switches
	// and task mutations call it so the armed trigger set tracks current data.
	Reloader interface {
		Reload(ctx context.Context) error
	}
)
