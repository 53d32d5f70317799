package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

func newPhaseService(store *fakeStore) (*PhaseService, *fakeReloader) {
	reloader := &fakeReloader{}
	balances := NewBalanceService(store)
	return NewPhaseService(store, balances, reloader), reloader
}

func TestSetActivePhaseBootstrap(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, reloader := newPhaseService(store)

	phase := &core.Phase{Name: "Debt payoff", MonthlyTarget: dec("300.00"), IsActive: true}
	store.CreatePhase(ctx, phase)

	if err := svc.SetActivePhase(ctx, phase.ID); err != nil {
		t.Fatalf("SetActivePhase() error = %v", err)
	}
	state, err := store.SystemState(ctx)
	if err != nil {
		t.Fatalf("SystemState() error = %v", err)
	}
	if state.CurrentPhaseID != phase.ID {
		t.Errorf("current phase = %d, want %d", state.CurrentPhaseID, phase.ID)
	}
	if reloader.calls != 1 {
		t.Errorf("scheduler reloads = %d, want 1", reloader.calls)
	}
}

func TestSetActivePhaseUnknownPhase(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newPhaseService(store)

	if err := svc.SetActivePhase(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SetActivePhase(42) error = %v, want ErrNotFound", err)
	}
}

func TestSetActivePhaseIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, reloader := newPhaseService(store)

	phase := &core.Phase{Name: "Savings", MonthlyTarget: dec("500.00"), IsActive: true}
	store.CreatePhase(ctx, phase)
	store.SetCurrentPhase(ctx, phase.ID)

	if err := svc.SetActivePhase(ctx, phase.ID); err != nil {
		t.Fatalf("SetActivePhase() error = %v", err)
	}
	if reloader.calls != 0 {
		t.Errorf("re-setting the active phase reloaded the scheduler %d times", reloader.calls)
	}
}

// Both phases aim their goals at the same savings envelope: switching must
// archive the outgoing goal and move the balance above its target into the
// new goal's accounting via the System envelope.
func TestSetActivePhaseSharedEnvelopeCarryOver(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, reloader := newPhaseService(store)

	savings := &core.Envelope{Name: "Nest egg", Balance: dec("500.00"), IsActive: true, IsSavings: true}
	store.CreateEnvelope(ctx, savings)

	oldPhase := &core.Phase{Name: "Phase one", MonthlyTarget: dec("100.00"), IsActive: true}
	newPhase := &core.Phase{Name: "Phase two", MonthlyTarget: dec("150.00"), IsActive: true}
	store.CreatePhase(ctx, oldPhase)
	store.CreatePhase(ctx, newPhase)

	oldGoal := &core.Goal{Name: "First milestone", TargetAmount: dec("400.00"), LinkedEnvelopeID: savings.ID, Status: core.GoalActive, PhaseID: oldPhase.ID}
	newGoal := &core.Goal{Name: "Second milestone", TargetAmount: dec("800.00"), LinkedEnvelopeID: savings.ID, Status: core.GoalActive, PhaseID: newPhase.ID}
	store.CreateGoal(ctx, oldGoal)
	store.CreateGoal(ctx, newGoal)
	store.SetCurrentPhase(ctx, oldPhase.ID)

	if err := svc.SetActivePhase(ctx, newPhase.ID); err != nil {
		t.Fatalf("SetActivePhase() error = %v", err)
	}

	archived, _ := store.Goal(ctx, oldGoal.ID)
	if archived.Status != core.GoalArchived {
		t.Errorf("outgoing goal status = %s, want archived", archived.Status)
	}

	system, err := store.EnvelopeByName(ctx, core.SystemEnvelopeName)
	if err != nil {
		t.Fatalf("system envelope was not created: %v", err)
	}
	if system.IsActive {
		t.Error("system envelope must stay inactive")
	}
	if !system.Balance.Equal(dec("-100.00")) {
		t.Errorf("system balance = %s, want -100.00", system.Balance)
	}

	env, _ := store.Envelope(ctx, savings.ID)
	if !env.Balance.Equal(dec("600.00")) {
		t.Errorf("savings balance = %s, want 600.00 after 100.00 surplus carry-over", env.Balance)
	}

	if len(store.transfers) != 1 || !store.transfers[0].Amount.Equal(dec("100.00")) {
		t.Errorf("transfers = %+v, want one transfer of 100.00", store.transfers)
	}

	state, _ := store.SystemState(ctx)
	if state.CurrentPhaseID != newPhase.ID {
		t.Errorf("current phase = %d, want %d", state.CurrentPhaseID, newPhase.ID)
	}
	if reloader.calls != 1 {
		t.Errorf("scheduler reloads = %d, want 1", reloader.calls)
	}
}

func TestSetActivePhaseNoSurplusWhenBelowTarget(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newPhaseService(store)

	savings := &core.Envelope{Name: "Nest egg", Balance: dec("250.00"), IsActive: true, IsSavings: true}
	store.CreateEnvelope(ctx, savings)

	oldPhase := &core.Phase{Name: "Phase one", MonthlyTarget: dec("100.00"), IsActive: true}
	newPhase := &core.Phase{Name: "Phase two", MonthlyTarget: dec("150.00"), IsActive: true}
	store.CreatePhase(ctx, oldPhase)
	store.CreatePhase(ctx, newPhase)

	store.CreateGoal(ctx, &core.Goal{Name: "A", TargetAmount: dec("400.00"), LinkedEnvelopeID: savings.ID, Status: core.GoalActive, PhaseID: oldPhase.ID})
	store.CreateGoal(ctx, &core.Goal{Name: "B", TargetAmount: dec("800.00"), LinkedEnvelopeID: savings.ID, Status: core.GoalActive, PhaseID: newPhase.ID})
	store.SetCurrentPhase(ctx, oldPhase.ID)

	if err := svc.SetActivePhase(ctx, newPhase.ID); err != nil {
		t.Fatalf("SetActivePhase() error = %v", err)
	}
	if len(store.transfers) != 0 {
		t.Errorf("a deficit produced %d transfers", len(store.transfers))
	}
	env, _ := store.Envelope(ctx, savings.ID)
	if !env.Balance.Equal(dec("250.00")) {
		t.Errorf("savings balance = %s, want unchanged 250.00", env.Balance)
	}
}

func TestSetActivePhaseUnrelatedGoals(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newPhaseService(store)

	envA := &core.Envelope{Name: "Car", Balance: dec("900.00"), IsActive: true, IsSavings: true}
	envB := &core.Envelope{Name: "House", Balance: dec("100.00"), IsActive: true, IsSavings: true}
	store.CreateEnvelope(ctx, envA)
	store.CreateEnvelope(ctx, envB)

	oldPhase := &core.Phase{Name: "Phase one", MonthlyTarget: dec("100.00"), IsActive: true}
	newPhase := &core.Phase{Name: "Phase two", MonthlyTarget: dec("150.00"), IsActive: true}
	store.CreatePhase(ctx, oldPhase)
	store.CreatePhase(ctx, newPhase)

	oldGoal := &core.Goal{Name: "Car fund", TargetAmount: dec("500.00"), LinkedEnvelopeID: envA.ID, Status: core.GoalActive, PhaseID: oldPhase.ID}
	store.CreateGoal(ctx, oldGoal)
	store.CreateGoal(ctx, &core.Goal{Name: "House fund", TargetAmount: dec("9000.00"), LinkedEnvelopeID: envB.ID, Status: core.GoalActive, PhaseID: newPhase.ID})
	store.SetCurrentPhase(ctx, oldPhase.ID)

	if err := svc.SetActivePhase(ctx, newPhase.ID); err != nil {
		t.Fatalf("SetActivePhase() error = %v", err)
	}

	kept, _ := store.Goal(ctx, oldGoal.ID)
	if kept.Status != core.GoalActive {
		t.Errorf("unrelated outgoing goal was archived")
	}
	if len(store.transfers) != 0 {
		t.Errorf("unrelated goals produced %d transfers", len(store.transfers))
	}
	if _, err := store.EnvelopeByName(ctx, core.SystemEnvelopeName); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("system envelope created without carry-over, err = %v", err)
	}
}

func TestArchivePhaseRefusesActive(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newPhaseService(store)

	phase := &core.Phase{Name: "Current", MonthlyTarget: dec("100.00"), IsActive: true}
	store.CreatePhase(ctx, phase)
	store.SetCurrentPhase(ctx, phase.ID)

	if err := svc.ArchivePhase(ctx, phase.ID); err == nil {
		t.Error("archiving the active phase did not fail")
	}

	other := &core.Phase{Name: "Other", MonthlyTarget: dec("100.00"), IsActive: true}
	store.CreatePhase(ctx, other)
	if err := svc.ArchivePhase(ctx, other.ID); err != nil {
		t.Errorf("ArchivePhase() error = %v", err)
	}
	got, _ := store.Phase(ctx, other.ID)
	if got.IsActive {
		t.Error("phase still active after archive")
	}
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc, _ := newPhaseService(store)

	savings := &core.Envelope{Name: "Nest egg", Balance: decimal.Zero, IsActive: true, IsSavings: true}
	regular := &core.Envelope{Name: "Groceries", Balance: decimal.Zero, IsActive: true}
	store.CreateEnvelope(ctx, savings)
	store.CreateEnvelope(ctx, regular)

	phase := &core.Phase{Name: "Savings", MonthlyTarget: dec("100.00"), IsActive: true}
	store.CreatePhase(ctx, phase)

	if _, err := svc.CreateGoal(ctx, "Milestone", dec("1000.00"), regular.ID, phase.ID); err == nil {
		t.Error("goal on a non-savings envelope did not fail")
	}

	goal, err := svc.CreateGoal(ctx, "Milestone", dec("1000.00"), savings.ID, phase.ID)
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if goal.Status != core.GoalActive {
		t.Errorf("goal status = %s, want active", goal.Status)
	}

	if _, err := svc.CreateGoal(ctx, "Second", dec("2000.00"), savings.ID, phase.ID); err == nil {
		t.Error("second active goal for the phase did not fail")
	}
}
