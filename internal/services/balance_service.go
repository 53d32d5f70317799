package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

// BalanceService is the balance engine: every envelope balance mutation goes
// through it. Mutations on the same envelope are serialized with a keyed
// lock, and the store commits the ledger entry together with the new balance
// in one unit, so concurrent triggers and interactive operations cannot lose
// updates.
type BalanceService struct {
	store BalanceStore
	locks envelopeLocks
	now   func() time.Time
}

func NewBalanceService(store BalanceStore) *BalanceService {
	return &BalanceService{
		store: store,
		now:   time.Now,
	}
}

// ApplyTransaction records an income or expense against an envelope. The
// sign is implied by the category type; expenses fail with
// core.ErrInsufficientFunds when the envelope cannot cover the amount, and
// nothing is written in that case.
func (s *BalanceService) ApplyTransaction(ctx context.Context, userID, categoryID, envelopeID int64, amount decimal.Decimal, date time.Time, comment string) (*core.Transaction, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}

	category, err := s.store.Category(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	unlock := s.locks.lock(envelopeID)
	defer unlock()

	envelope, err := s.store.Envelope(ctx, envelopeID)
	if err != nil {
		return nil, fmt.Errorf("resolve envelope: %w", err)
	}

	var newBalance decimal.Decimal
	switch category.Type {
	case core.Expense:
		if envelope.Balance.LessThan(amount) {
			return nil, fmt.Errorf("envelope %q: %w", envelope.Name, core.ErrInsufficientFunds)
		}
		newBalance = envelope.Balance.Sub(amount)
	case core.Income:
		newBalance = envelope.Balance.Add(amount)
	default:
		return nil, fmt.Errorf("category %q has unknown type %q", category.Name, category.Type)
	}

	t := &core.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		EnvelopeID: envelopeID,
		Amount:     amount,
		Date:       date,
		Comment:    comment,
	}
	if err := s.store.RecordTransaction(ctx, t, newBalance); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction applied",
		"transaction_id", t.ID,
		"envelope", envelope.Name,
		"category_type", category.Type,
		"amount", core.FormatAmount(amount),
		"new_balance", core.FormatAmount(newBalance))

	return t, nil
}

// ApplyTransfer moves amount between two envelopes. The source must cover
// the amount; on failure neither balance changes and no transfer is written.
func (s *BalanceService) ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*core.Transfer, error) {
	return s.applyTransfer(ctx, fromID, toID, amount, true)
}

// ApplySystemTransfer is the archival surplus path: the source is the
// synthetic System envelope, whose balance represents money already
// accounted for, so the fund-sufficiency check does not apply.
func (s *BalanceService) ApplySystemTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*core.Transfer, error) {
	return s.applyTransfer(ctx, fromID, toID, amount, false)
}

func (s *BalanceService) applyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, checkFunds bool) (*core.Transfer, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, fmt.Errorf("transfer source and destination must differ")
	}

	unlock := s.locks.lockPair(fromID, toID)
	defer unlock()

	from, err := s.store.Envelope(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("resolve source envelope: %w", err)
	}
	to, err := s.store.Envelope(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("resolve destination envelope: %w", err)
	}

	if checkFunds && from.Balance.LessThan(amount) {
		return nil, fmt.Errorf("envelope %q: %w", from.Name, core.ErrInsufficientFunds)
	}

	t := &core.Transfer{
		FromEnvelopeID: fromID,
		ToEnvelopeID:   toID,
		Amount:         amount,
		TransferredAt:  s.now(),
	}
	if err := s.store.RecordTransfer(ctx, t, from.Balance.Sub(amount), to.Balance.Add(amount)); err != nil {
		return nil, fmt.Errorf("record transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer applied",
		"transfer_id", t.ID,
		"from", from.Name,
		"to", to.Name,
		"amount", core.FormatAmount(amount))

	return t, nil
}

// SetAbsoluteBalance overwrites an envelope's balance with no ledger entry.
// It is a checkpoint operation for initializing starting balances; balance
// history before this point is no longer derivable from the ledger.
func (s *BalanceService) SetAbsoluteBalance(ctx context.Context, envelopeID int64, amount decimal.Decimal) error {
	if amount.IsNegative() || amount.Exponent() < -2 {
		return core.ErrInvalidAmount
	}

	unlock := s.locks.lock(envelopeID)
	defer unlock()

	envelope, err := s.store.Envelope(ctx, envelopeID)
	if err != nil {
		return fmt.Errorf("resolve envelope: %w", err)
	}
	if err := s.store.SetEnvelopeBalance(ctx, envelopeID, amount); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	slog.InfoContext(ctx, "Balance checkpoint set",
		"envelope", envelope.Name,
		"old_balance", core.FormatAmount(envelope.Balance),
		"new_balance", core.FormatAmount(amount))

	return nil
}

// envelopeLocks serializes balance mutations per envelope id.
type envelopeLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *envelopeLocks) get(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

func (l *envelopeLocks) lock(id int64) (unlock func()) {
	m := l.get(id)
	m.Lock()
	return m.Unlock
}

// lockPair acquires both envelope locks in id order so two concurrent
// transfers over the same pair cannot deadlock.
func (l *envelopeLocks) lockPair(a, b int64) (unlock func()) {
	first, second := a, b
	if first > second {
		first, second = second, first
	}
	fm, sm := l.get(first), l.get(second)
	fm.Lock()
	sm.Lock()
	return func() {
		sm.Unlock()
		fm.Unlock()
	}
}
