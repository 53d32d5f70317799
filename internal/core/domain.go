package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"

	GoalActive   GoalStatus = "active"
	GoalArchived GoalStatus = "archived"

	// SystemStateID is the fixed id of the singleton system_state row.
	SystemStateID int64 = 1

	// SystemEnvelopeName is the reserved name of the synthetic envelope used
	// as the source of surplus carry-over transfers. The envelope is created
	// lazily, inactive, and never shows up in user-facing envelope lists.
	SystemEnvelopeName = "System"
)

type (
	CategoryType string
	GoalStatus   string

	// User is a permitted notification recipient. ChatID is the external
	// messaging identifier; Timezone is an IANA zone name.
	User struct {
		ID       int64
		ChatID   int64
		Username string
		Timezone string
	}

	// Envelope is a named balance bucket. Balance is a denormalized cache
	// that must equal the net effect of all transactions and transfers
	// touching the envelope, except across SetAbsoluteBalance checkpoints.
	Envelope struct {
		ID        int64
		Name      string
		Balance   decimal.Decimal
		OwnerID   int64 // 0 means shared
		IsActive  bool
		IsSavings bool
	}

	Category struct {
		ID       int64
		Name     string
		Type     CategoryType
		IsActive bool
	}

	// Transaction is a single income or expense event against one envelope.
	// Immutable once recorded; the sign is implied by the category type.
	Transaction struct {
		ID         int64
		UserID     int64
		CategoryID int64
		EnvelopeID int64
		Amount     decimal.Decimal
		Date       time.Time
		Comment    string
	}

	// Transfer is a zero-sum movement of funds between two envelopes.
	Transfer struct {
		ID             int64
		FromEnvelopeID int64
		ToEnvelopeID   int64
		Amount         decimal.Decimal
		TransferredAt  time.Time
	}

	// Goal is a savings target tied to one phase and one envelope. At most
	// one active goal may exist per phase.
	Goal struct {
		ID               int64
		Name             string
		TargetAmount     decimal.Decimal
		LinkedEnvelopeID int64
		Status           GoalStatus
		PhaseID          int64
	}

	// Phase is a named stage of a financial plan. Phases are soft-deleted
	// via IsActive, never removed.
	Phase struct {
		ID            int64
		Name          string
		MonthlyTarget decimal.Decimal
		IsActive      bool
	}

	// SystemState is the singleton row holding the currently active phase.
	// CurrentPhaseID 0 means no phase has been set yet.
	SystemState struct {
		ID             int64
		CurrentPhaseID int64
	}
)

var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotFound               = errors.New("entity not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTimezone        = errors.New("invalid timezone")
	ErrUnknownHolidayCalendar = errors.New("unknown holiday calendar")
	ErrEmptyName              = errors.New("empty name")
)

func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	switch c.Type {
	case Income, Expense:
		return nil
	default:
		return errors.New("invalid category type")
	}
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (t Transfer) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.FromEnvelopeID == t.ToEnvelopeID {
		return errors.New("transfer source and destination must differ")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.LinkedEnvelopeID == 0 {
		return errors.New("goal must link exactly one envelope")
	}
	if g.PhaseID == 0 {
		return errors.New("goal must belong to a phase")
	}
	return nil
}

func (p Phase) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateTimezone checks that name is a loadable IANA timezone.
func ValidateTimezone(name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}
