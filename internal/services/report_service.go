package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"envelopes/internal/core"
)

// MonthlyReport is the aggregate view over one calendar month.
type MonthlyReport struct {
	From        time.Time
	To          time.Time
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Savings     decimal.Decimal
	SavingsRate decimal.Decimal
	PerUser     []UserExpenses
}

type UserExpenses struct {
	User     core.User
	Expenses decimal.Decimal
}

// GoalProgress reports how far the active goal has come.
type GoalProgress struct {
	Goal        core.Goal
	Accumulated decimal.Decimal
	Percent     decimal.Decimal
}

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

var oneHundred = decimal.NewFromInt(100)

// BuildMonthlyReport aggregates the month containing now. The independent
// sums run concurrently.
func (s *ReportService) BuildMonthlyReport(ctx context.Context, now time.Time) (*MonthlyReport, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	report := &MonthlyReport{From: from, To: to}

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	report.PerUser = make([]UserExpenses, len(users))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Income, err = s.store.SumTransactionsForPeriod(ctx, core.Income, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		report.Expenses, err = s.store.SumTransactionsForPeriod(ctx, core.Expense, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		report.Savings, err = s.store.SumSavingsTransfersForPeriod(ctx, from, to)
		return err
	})
	for i, u := range users {
		g.Go(func() error {
			sum, err := s.store.SumUserExpensesForPeriod(ctx, u.ID, from, to)
			if err != nil {
				return err
			}
			report.PerUser[i] = UserExpenses{User: u, Expenses: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate month: %w", err)
	}

	if report.Income.IsPositive() {
		report.SavingsRate = report.Savings.Mul(oneHundred).Div(report.Income).Round(2)
	}
	return report, nil
}

// ActiveGoalProgress reports the current phase's goal. Without an active
// phase or goal it returns core.ErrNotFound.
func (s *ReportService) ActiveGoalProgress(ctx context.Context) (*GoalProgress, error) {
	state, err := s.store.SystemState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load system state: %w", err)
	}
	if state.CurrentPhaseID == 0 {
		return nil, core.ErrNotFound
	}

	goal, err := s.store.ActiveGoalForPhase(ctx, state.CurrentPhaseID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("load active goal: %w", err)
	}

	accumulated, err := s.store.SumTransfersInto(ctx, goal.LinkedEnvelopeID)
	if err != nil {
		return nil, fmt.Errorf("sum transfers: %w", err)
	}

	progress := &GoalProgress{Goal: *goal, Accumulated: accumulated}
	// Percent is left at zero for a non-positive target and is allowed past
	// 100 once the goal is overfunded.
	if goal.TargetAmount.IsPositive() {
		progress.Percent = accumulated.Mul(oneHundred).Div(goal.TargetAmount).Round(2)
	}
	return progress, nil
}
