package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

// PhaseService owns the goal/phase lifecycle: which phase is active, the
// switch protocol with surplus carry-over, and goal management. Phase
// switches are serialized; the protocol is not designed to run concurrently
// with itself.
type PhaseService struct {
	store     PhaseStore
	balances  *BalanceService
	scheduler Reloader

	switchMu sync.Mutex
}

func NewPhaseService(store PhaseStore, balances *BalanceService, scheduler Reloader) *PhaseService {
	return &PhaseService{
		store:     store,
		balances:  balances,
		scheduler: scheduler,
	}
}

// SetActivePhase makes phaseID the live phase.
//
// Bootstrap (no phase set yet) just records the phase. Setting the already
// active phase is a no-op. Otherwise, when the outgoing and incoming phases
// both have an active goal linked to the same envelope, the outgoing goal is
// archived and any balance above its target is carried into the new goal's
// accounting as a transfer from the System envelope. Unrelated goals switch
// without any carry-over. Every path that changes the phase reloads the
// scheduler.
func (s *PhaseService) SetActivePhase(ctx context.Context, phaseID int64) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	if _, err := s.store.Phase(ctx, phaseID); err != nil {
		return fmt.Errorf("resolve phase: %w", err)
	}

	current, err := s.currentPhaseID(ctx)
	if err != nil {
		return err
	}

	if current == phaseID {
		return nil
	}

	if current == 0 {
		if err := s.store.SetCurrentPhase(ctx, phaseID); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Initial phase set", "phase_id", phaseID)
		return s.scheduler.Reload(ctx)
	}

	if err := s.carryOverSurplus(ctx, current, phaseID); err != nil {
		return err
	}

	if err := s.store.SetCurrentPhase(ctx, phaseID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Active phase switched", "from", current, "to", phaseID)

	return s.scheduler.Reload(ctx)
}

// carryOverSurplus archives the outgoing phase's goal and moves its surplus
// into the incoming goal's envelope, but only when both goals exist and
// share the same linked envelope. Phases with unrelated goals are
// independent.
func (s *PhaseService) carryOverSurplus(ctx context.Context, oldPhaseID, newPhaseID int64) error {
	oldGoal, err := s.activeGoal(ctx, oldPhaseID)
	if err != nil {
		return err
	}
	newGoal, err := s.activeGoal(ctx, newPhaseID)
	if err != nil {
		return err
	}
	if oldGoal == nil || newGoal == nil || oldGoal.LinkedEnvelopeID != newGoal.LinkedEnvelopeID {
		return nil
	}

	envelope, err := s.store.Envelope(ctx, oldGoal.LinkedEnvelopeID)
	if err != nil {
		return fmt.Errorf("resolve goal envelope: %w", err)
	}

	// Never carry a deficit forward.
	surplus := envelope.Balance.Sub(oldGoal.TargetAmount)
	if surplus.IsNegative() {
		surplus = decimal.Zero
	}

	if err := s.store.ArchiveGoal(ctx, oldGoal.ID); err != nil {
		return fmt.Errorf("archive goal: %w", err)
	}

	if surplus.IsPositive() {
		system, err := s.systemEnvelope(ctx)
		if err != nil {
			return err
		}
		if _, err := s.balances.ApplySystemTransfer(ctx, system.ID, newGoal.LinkedEnvelopeID, surplus); err != nil {
			return fmt.Errorf("carry over surplus: %w", err)
		}
	}

	slog.InfoContext(ctx, "Goal archived on phase switch",
		"goal", oldGoal.Name,
		"surplus", core.FormatAmount(surplus))

	return nil
}

func (s *PhaseService) currentPhaseID(ctx context.Context) (int64, error) {
	state, err := s.store.SystemState(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load system state: %w", err)
	}
	return state.CurrentPhaseID, nil
}

func (s *PhaseService) activeGoal(ctx context.Context, phaseID int64) (*core.Goal, error) {
	goal, err := s.store.ActiveGoalForPhase(ctx, phaseID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active goal: %w", err)
	}
	return goal, nil
}

// systemEnvelope returns the synthetic surplus-source envelope, creating it
// on first use. It is inactive and never listed, so it stays out of every
// interactive flow.
func (s *PhaseService) systemEnvelope(ctx context.Context) (*core.Envelope, error) {
	envelope, err := s.store.EnvelopeByName(ctx, core.SystemEnvelopeName)
	if err == nil {
		return envelope, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("load system envelope: %w", err)
	}

	envelope = &core.Envelope{
		Name:     core.SystemEnvelopeName,
		Balance:  decimal.Zero,
		IsActive: false,
	}
	if err := s.store.CreateEnvelope(ctx, envelope); err != nil {
		return nil, fmt.Errorf("create system envelope: %w", err)
	}
	slog.InfoContext(ctx, "System envelope created", "envelope_id", envelope.ID)
	return envelope, nil
}

// CreatePhase registers a new phase. Names are unique; uniqueness is
// enforced by the store schema.
func (s *PhaseService) CreatePhase(ctx context.Context, name string, monthlyTarget decimal.Decimal) (*core.Phase, error) {
	p := &core.Phase{
		Name:          name,
		MonthlyTarget: monthlyTarget,
		IsActive:      true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreatePhase(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PhaseService) Phases(ctx context.Context) ([]core.Phase, error) {
	return s.store.ActivePhases(ctx)
}

func (s *PhaseService) RenamePhase(ctx context.Context, phaseID int64, name string) error {
	if name == "" {
		return core.ErrEmptyName
	}
	return s.store.RenamePhase(ctx, phaseID, name)
}

func (s *PhaseService) SetMonthlyTarget(ctx context.Context, phaseID int64, target decimal.Decimal) error {
	if err := core.ValidateAmount(target); err != nil {
		return err
	}
	return s.store.SetPhaseMonthlyTarget(ctx, phaseID, target)
}

// ArchivePhase soft-deletes a phase. The currently active phase cannot be
// archived.
func (s *PhaseService) ArchivePhase(ctx context.Context, phaseID int64) error {
	current, err := s.currentPhaseID(ctx)
	if err != nil {
		return err
	}
	if current == phaseID {
		return fmt.Errorf("cannot archive the active phase")
	}
	return s.store.SetPhaseActive(ctx, phaseID, false)
}

// CreateGoal registers a savings goal for a phase. A phase holds at most one
// active goal, and the goal must link a savings envelope.
func (s *PhaseService) CreateGoal(ctx context.Context, name string, target decimal.Decimal, envelopeID, phaseID int64) (*core.Goal, error) {
	envelope, err := s.store.Envelope(ctx, envelopeID)
	if err != nil {
		return nil, fmt.Errorf("resolve envelope: %w", err)
	}
	if !envelope.IsSavings {
		return nil, fmt.Errorf("envelope %q is not a savings envelope", envelope.Name)
	}

	if existing, err := s.activeGoal(ctx, phaseID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("phase already has an active goal %q", existing.Name)
	}

	g := &core.Goal{
		Name:             name,
		TargetAmount:     target,
		LinkedEnvelopeID: envelopeID,
		Status:           core.GoalActive,
		PhaseID:          phaseID,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *PhaseService) RenameGoal(ctx context.Context, goalID int64, name string) error {
	if name == "" {
		return core.ErrEmptyName
	}
	return s.store.RenameGoal(ctx, goalID, name)
}

// ArchiveGoal explicitly archives a goal outside the switch protocol.
func (s *PhaseService) ArchiveGoal(ctx context.Context, goalID int64) error {
	if _, err := s.store.Goal(ctx, goalID); err != nil {
		return fmt.Errorf("resolve goal: %w", err)
	}
	return s.store.ArchiveGoal(ctx, goalID)
}
