package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	TaskReminder     TaskType = "reminder"
	TaskAutoTransfer TaskType = "auto_transfer"

	// Scheduled days are restricted to 1..28 so a task means the same thing
	// in every month.
	MinTaskDay = 1
	MaxTaskDay = 28
)

type TaskType string

// ScheduledTask is a recurring monthly job owned by a phase. The payload is
// a tagged variant: reminders carry ReminderText, auto-transfers carry
// Amount/FromEnvelopeID/ToEnvelopeID.
type ScheduledTask struct {
	ID       int64
	PhaseID  int64
	Type     TaskType
	Day      int // day of month, 1..28
	Hour     int // 0..23
	IsActive bool

	ReminderText string

	Amount         decimal.Decimal
	FromEnvelopeID int64
	ToEnvelopeID   int64
}

func (t ScheduledTask) Validate() error {
	if t.PhaseID == 0 {
		return errors.New("task must belong to a phase")
	}
	if t.Day < MinTaskDay || t.Day > MaxTaskDay {
		return fmt.Errorf("day must be between %d and %d", MinTaskDay, MaxTaskDay)
	}
	if t.Hour < 0 || t.Hour > 23 {
		return errors.New("hour must be between 0 and 23")
	}

	switch t.Type {
	case TaskReminder:
		if t.ReminderText == "" {
			return errors.New("reminder task requires text")
		}
	case TaskAutoTransfer:
		if err := ValidateAmount(t.Amount); err != nil {
			return err
		}
		if t.FromEnvelopeID == 0 || t.ToEnvelopeID == 0 {
			return errors.New("auto-transfer task requires both envelopes")
		}
		if t.FromEnvelopeID == t.ToEnvelopeID {
			return errors.New("auto-transfer source and destination must differ")
		}
	default:
		return fmt.Errorf("unknown task type: %s", t.Type)
	}

	return nil
}
