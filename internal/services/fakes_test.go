package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

// fakeStore is an in-memory implementation of every store interface in this
// package. It is deliberately simple: no locking, tests drive it from one
// goroutine.
type fakeStore struct {
	users      map[int64]*core.User
	envelopes  map[int64]*core.Envelope
	categories map[int64]*core.Category
	phases     map[int64]*core.Phase
	goals      map[int64]*core.Goal
	tasks      map[int64]*core.ScheduledTask
	state      *core.SystemState

	transactions []core.Transaction
	transfers    []core.Transfer

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[int64]*core.User{},
		envelopes:  map[int64]*core.Envelope{},
		categories: map[int64]*core.Category{},
		phases:     map[int64]*core.Phase{},
		goals:      map[int64]*core.Goal{},
		tasks:      map[int64]*core.ScheduledTask{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Users(ctx context.Context) ([]core.User, error) {
	var out []core.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) UserByChatID(ctx context.Context, chatID int64) (*core.User, error) {
	for _, u := range f.users {
		if u.ChatID == chatID {
			c := *u
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) CreateUser(ctx context.Context, u *core.User) error {
	u.ID = f.id()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) SetUserTimezone(ctx context.Context, id int64, tz string) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Timezone = tz
	return nil
}

func (f *fakeStore) Envelope(ctx context.Context, id int64) (*core.Envelope, error) {
	e, ok := f.envelopes[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeStore) EnvelopeByName(ctx context.Context, name string) (*core.Envelope, error) {
	for _, e := range f.envelopes {
		if e.Name == name {
			c := *e
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) ActiveEnvelopes(ctx context.Context) ([]core.Envelope, error) {
	var out []core.Envelope
	for _, e := range f.envelopes {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateEnvelope(ctx context.Context, e *core.Envelope) error {
	e.ID = f.id()
	c := *e
	f.envelopes[e.ID] = &c
	return nil
}

func (f *fakeStore) RenameEnvelope(ctx context.Context, id int64, name string) error {
	e, ok := f.envelopes[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Name = name
	return nil
}

func (f *fakeStore) SetEnvelopeActive(ctx context.Context, id int64, active bool) error {
	e, ok := f.envelopes[id]
	if !ok {
		return core.ErrNotFound
	}
	e.IsActive = active
	return nil
}

func (f *fakeStore) SetEnvelopeSavings(ctx context.Context, id int64, savings bool) error {
	e, ok := f.envelopes[id]
	if !ok {
		return core.ErrNotFound
	}
	e.IsSavings = savings
	return nil
}

func (f *fakeStore) SetEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	e, ok := f.envelopes[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Balance = balance
	return nil
}

func (f *fakeStore) RecordTransaction(ctx context.Context, t *core.Transaction, newBalance decimal.Decimal) error {
	e, ok := f.envelopes[t.EnvelopeID]
	if !ok {
		return core.ErrNotFound
	}
	t.ID = f.id()
	f.transactions = append(f.transactions, *t)
	e.Balance = newBalance
	return nil
}

func (f *fakeStore) RecordTransfer(ctx context.Context, t *core.Transfer, newFrom, newTo decimal.Decimal) error {
	from, ok := f.envelopes[t.FromEnvelopeID]
	if !ok {
		return core.ErrNotFound
	}
	to, ok := f.envelopes[t.ToEnvelopeID]
	if !ok {
		return core.ErrNotFound
	}
	t.ID = f.id()
	f.transfers = append(f.transfers, *t)
	from.Balance = newFrom
	to.Balance = newTo
	return nil
}

func (f *fakeStore) Category(ctx context.Context, id int64) (*core.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ActiveCategories(ctx context.Context, ctype core.CategoryType) ([]core.Category, error) {
	var out []core.Category
	for _, c := range f.categories {
		if c.IsActive && c.Type == ctype {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, c *core.Category) error {
	c.ID = f.id()
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeStore) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	c, ok := f.categories[id]
	if !ok {
		return core.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (f *fakeStore) Phase(ctx context.Context, id int64) (*core.Phase, error) {
	p, ok := f.phases[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeStore) ActivePhases(ctx context.Context) ([]core.Phase, error) {
	var out []core.Phase
	for _, p := range f.phases {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePhase(ctx context.Context, p *core.Phase) error {
	p.ID = f.id()
	c := *p
	f.phases[p.ID] = &c
	return nil
}

func (f *fakeStore) RenamePhase(ctx context.Context, id int64, name string) error {
	p, ok := f.phases[id]
	if !ok {
		return core.ErrNotFound
	}
	p.Name = name
	return nil
}

func (f *fakeStore) SetPhaseMonthlyTarget(ctx context.Context, id int64, target decimal.Decimal) error {
	p, ok := f.phases[id]
	if !ok {
		return core.ErrNotFound
	}
	p.MonthlyTarget = target
	return nil
}

func (f *fakeStore) SetPhaseActive(ctx context.Context, id int64, active bool) error {
	p, ok := f.phases[id]
	if !ok {
		return core.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (f *fakeStore) SystemState(ctx context.Context) (*core.SystemState, error) {
	if f.state == nil {
		return nil, core.ErrNotFound
	}
	c := *f.state
	return &c, nil
}

func (f *fakeStore) SetCurrentPhase(ctx context.Context, phaseID int64) error {
	f.state = &core.SystemState{ID: core.SystemStateID, CurrentPhaseID: phaseID}
	return nil
}

func (f *fakeStore) Goal(ctx context.Context, id int64) (*core.Goal, error) {
	g, ok := f.goals[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *g
	return &c, nil
}

func (f *fakeStore) CreateGoal(ctx context.Context, g *core.Goal) error {
	g.ID = f.id()
	c := *g
	f.goals[g.ID] = &c
	return nil
}

func (f *fakeStore) RenameGoal(ctx context.Context, id int64, name string) error {
	g, ok := f.goals[id]
	if !ok {
		return core.ErrNotFound
	}
	g.Name = name
	return nil
}

func (f *fakeStore) ArchiveGoal(ctx context.Context, id int64) error {
	g, ok := f.goals[id]
	if !ok {
		return core.ErrNotFound
	}
	g.Status = core.GoalArchived
	return nil
}

func (f *fakeStore) ActiveGoalForPhase(ctx context.Context, phaseID int64) (*core.Goal, error) {
	for _, g := range f.goals {
		if g.PhaseID == phaseID && g.Status == core.GoalActive {
			c := *g
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) Task(ctx context.Context, id int64) (*core.ScheduledTask, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeStore) TasksForPhase(ctx context.Context, phaseID int64) ([]core.ScheduledTask, error) {
	var out []core.ScheduledTask
	for _, t := range f.tasks {
		if t.PhaseID == phaseID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTask(ctx context.Context, t *core.ScheduledTask) error {
	t.ID = f.id()
	c := *t
	f.tasks[t.ID] = &c
	return nil
}

func (f *fakeStore) SetTaskActive(ctx context.Context, id int64, active bool) error {
	t, ok := f.tasks[id]
	if !ok {
		return core.ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (f *fakeStore) ReplaceTask(ctx context.Context, id int64, t *core.ScheduledTask) error {
	if _, ok := f.tasks[id]; !ok {
		return core.ErrNotFound
	}
	t.ID = id
	c := *t
	f.tasks[id] = &c
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) SumTransfersInto(ctx context.Context, envelopeID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.transfers {
		if t.ToEnvelopeID == envelopeID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (f *fakeStore) SumTransactionsForPeriod(ctx context.Context, ctype core.CategoryType, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.transactions {
		c, ok := f.categories[t.CategoryID]
		if !ok || c.Type != ctype {
			continue
		}
		if !t.Date.Before(from) && !t.Date.After(to) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (f *fakeStore) SumUserExpensesForPeriod(ctx context.Context, userID int64, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.transactions {
		c, ok := f.categories[t.CategoryID]
		if !ok || c.Type != core.Expense || t.UserID != userID {
			continue
		}
		if !t.Date.Before(from) && !t.Date.After(to) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (f *fakeStore) SumSavingsTransfersForPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.transfers {
		e, ok := f.envelopes[t.ToEnvelopeID]
		if !ok || !e.IsSavings {
			continue
		}
		if !t.TransferredAt.Before(from) && !t.TransferredAt.After(to) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

// fakeReloader counts scheduler reload requests.
type fakeReloader struct {
	calls int
}

func (r *fakeReloader) Reload(ctx context.Context) error {
	r.calls++
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
