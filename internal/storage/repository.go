package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"envelopes/internal/core"
)

// SQLiteRepository is the ledger store. Balance mutations and their ledger
// entries are committed inside a single SQL transaction so a crash can never
// leave a transaction recorded without its balance update or vice versa.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// notFound maps sql.ErrNoRows onto the domain sentinel.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// ---- users ----

func (r *SQLiteRepository) Users(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, username, timezone FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.ChatID, &u.Username, &u.Timezone); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) UserByChatID(ctx context.Context, chatID int64) (*core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, username, timezone FROM users WHERE chat_id = ?`, chatID).
		Scan(&u.ID, &u.ChatID, &u.Username, &u.Timezone)
	if err != nil {
		return nil, notFound(err, "get user by chat id")
	}
	return &u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, username, timezone) VALUES (?, ?, ?)`,
		u.ChatID, u.Username, u.Timezone)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) SetUserTimezone(ctx context.Context, id int64, tz string) error {
	return r.execOne(ctx, "set user timezone",
		`UPDATE users SET timezone = ? WHERE id = ?`, tz, id)
}

// ---- envelopes ----

const envelopeCols = `id, name, balance_cents, COALESCE(owner_id, 0), is_active, is_savings`

func scanEnvelope(row interface{ Scan(...any) error }) (*core.Envelope, error) {
	var e core.Envelope
	var cents int64
	if err := row.Scan(&e.ID, &e.Name, &cents, &e.OwnerID, &e.IsActive, &e.IsSavings); err != nil {
		return nil, err
	}
	e.Balance = core.FromCents(cents)
	return &e, nil
}

func (r *SQLiteRepository) Envelope(ctx context.Context, id int64) (*core.Envelope, error) {
	e, err := scanEnvelope(r.db.QueryRowContext(ctx,
		`SELECT `+envelopeCols+` FROM envelopes WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get envelope")
	}
	return e, nil
}

func (r *SQLiteRepository) EnvelopeByName(ctx context.Context, name string) (*core.Envelope, error) {
	e, err := scanEnvelope(r.db.QueryRowContext(ctx,
		`SELECT `+envelopeCols+` FROM envelopes WHERE name = ?`, name))
	if err != nil {
		return nil, notFound(err, "get envelope by name")
	}
	return e, nil
}

func (r *SQLiteRepository) ActiveEnvelopes(ctx context.Context) ([]core.Envelope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+envelopeCols+` FROM envelopes WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []core.Envelope
	for rows.Next() {
		e, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		envelopes = append(envelopes, *e)
	}
	return envelopes, rows.Err()
}

func (r *SQLiteRepository) CreateEnvelope(ctx context.Context, e *core.Envelope) error {
	var owner any
	if e.OwnerID != 0 {
		owner = e.OwnerID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO envelopes (name, balance_cents, owner_id, is_active, is_savings)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Name, core.Cents(e.Balance), owner, e.IsActive, e.IsSavings)
	if err != nil {
		return fmt.Errorf("create envelope: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) RenameEnvelope(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, "rename envelope",
		`UPDATE envelopes SET name = ? WHERE id = ?`, name, id)
}

func (r *SQLiteRepository) SetEnvelopeActive(ctx context.Context, id int64, active bool) error {
	return r.execOne(ctx, "set envelope active",
		`UPDATE envelopes SET is_active = ? WHERE id = ?`, active, id)
}

func (r *SQLiteRepository) SetEnvelopeSavings(ctx context.Context, id int64, savings bool) error {
	return r.execOne(ctx, "set envelope savings",
		`UPDATE envelopes SET is_savings = ? WHERE id = ?`, savings, id)
}

// SetEnvelopeBalance overwrites the balance with no ledger entry. This is the
// administrative checkpoint operation; it intentionally resets the baseline
// from which balance-equals-ledger holds.
func (r *SQLiteRepository) SetEnvelopeBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	return r.execOne(ctx, "set envelope balance",
		`UPDATE envelopes SET balance_cents = ? WHERE id = ?`, core.Cents(balance), id)
}

// RecordTransaction inserts the transaction and writes the envelope's new
// balance in one SQL transaction.
func (r *SQLiteRepository) RecordTransaction(ctx context.Context, t *core.Transaction, newBalance decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, envelope_id, amount_cents, transaction_date, comment)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.EnvelopeID, core.Cents(t.Amount),
		t.Date.Format("2006-01-02"), t.Comment)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE envelopes SET balance_cents = ? WHERE id = ?`,
		core.Cents(newBalance), t.EnvelopeID); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return tx.Commit()
}

// RecordTransfer inserts the transfer and writes both envelopes' new
// balances in one SQL transaction.
func (r *SQLiteRepository) RecordTransfer(ctx context.Context, t *core.Transfer, newFrom, newTo decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (from_envelope_id, to_envelope_id, amount_cents, transferred_at)
		 VALUES (?, ?, ?, ?)`,
		t.FromEnvelopeID, t.ToEnvelopeID, core.Cents(t.Amount), t.TransferredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE envelopes SET balance_cents = ? WHERE id = ?`,
		core.Cents(newFrom), t.FromEnvelopeID); err != nil {
		return fmt.Errorf("update source balance: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE envelopes SET balance_cents = ? WHERE id = ?`,
		core.Cents(newTo), t.ToEnvelopeID); err != nil {
		return fmt.Errorf("update destination balance: %w", err)
	}

	return tx.Commit()
}

// ---- categories ----

func (r *SQLiteRepository) Category(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, is_active FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.IsActive)
	if err != nil {
		return nil, notFound(err, "get category")
	}
	return &c, nil
}

func (r *SQLiteRepository) ActiveCategories(ctx context.Context, ctype core.CategoryType) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, is_active FROM categories WHERE is_active = 1 AND type = ? ORDER BY name`, ctype)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, is_active) VALUES (?, ?, ?)`,
		c.Name, c.Type, c.IsActive)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	return r.execOne(ctx, "set category active",
		`UPDATE categories SET is_active = ? WHERE id = ?`, active, id)
}

// ---- phases ----

func (r *SQLiteRepository) Phase(ctx context.Context, id int64) (*core.Phase, error) {
	var p core.Phase
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_target_cents, is_active FROM phases WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &cents, &p.IsActive)
	if err != nil {
		return nil, notFound(err, "get phase")
	}
	p.MonthlyTarget = core.FromCents(cents)
	return &p, nil
}

func (r *SQLiteRepository) ActivePhases(ctx context.Context) ([]core.Phase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, monthly_target_cents, is_active FROM phases WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var phases []core.Phase
	for rows.Next() {
		var p core.Phase
		var cents int64
		if err := rows.Scan(&p.ID, &p.Name, &cents, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		p.MonthlyTarget = core.FromCents(cents)
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (r *SQLiteRepository) CreatePhase(ctx context.Context, p *core.Phase) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO phases (name, monthly_target_cents, is_active) VALUES (?, ?, ?)`,
		p.Name, core.Cents(p.MonthlyTarget), p.IsActive)
	if err != nil {
		return fmt.Errorf("create phase: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) RenamePhase(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, "rename phase",
		`UPDATE phases SET name = ? WHERE id = ?`, name, id)
}

func (r *SQLiteRepository) SetPhaseMonthlyTarget(ctx context.Context, id int64, target decimal.Decimal) error {
	return r.execOne(ctx, "set phase target",
		`UPDATE phases SET monthly_target_cents = ? WHERE id = ?`, core.Cents(target), id)
}

func (r *SQLiteRepository) SetPhaseActive(ctx context.Context, id int64, active bool) error {
	return r.execOne(ctx, "set phase active",
		`UPDATE phases SET is_active = ? WHERE id = ?`, active, id)
}

// ---- goals ----

const goalCols = `id, name, target_cents, linked_envelope_id, status, phase_id`

func scanGoal(row interface{ Scan(...any) error }) (*core.Goal, error) {
	var g core.Goal
	var cents int64
	if err := row.Scan(&g.ID, &g.Name, &cents, &g.LinkedEnvelopeID, &g.Status, &g.PhaseID); err != nil {
		return nil, err
	}
	g.TargetAmount = core.FromCents(cents)
	return &g, nil
}

func (r *SQLiteRepository) Goal(ctx context.Context, id int64) (*core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT `+goalCols+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get goal")
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g *core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (name, target_cents, linked_envelope_id, status, phase_id)
		 VALUES (?, ?, ?, ?, ?)`,
		g.Name, core.Cents(g.TargetAmount), g.LinkedEnvelopeID, g.Status, g.PhaseID)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) RenameGoal(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, "rename goal",
		`UPDATE goals SET name = ? WHERE id = ?`, name, id)
}

func (r *SQLiteRepository) ArchiveGoal(ctx context.Context, id int64) error {
	return r.execOne(ctx, "archive goal",
		`UPDATE goals SET status = ? WHERE id = ?`, core.GoalArchived, id)
}

func (r *SQLiteRepository) ActiveGoalForPhase(ctx context.Context, phaseID int64) (*core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT `+goalCols+` FROM goals WHERE phase_id = ? AND status = ?`,
		phaseID, core.GoalActive))
	if err != nil {
		return nil, notFound(err, "get active goal for phase")
	}
	return g, nil
}

// ---- system state ----

func (r *SQLiteRepository) SystemState(ctx context.Context) (*core.SystemState, error) {
	var s core.SystemState
	var phaseID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, current_phase_id FROM system_state WHERE id = ?`, core.SystemStateID).
		Scan(&s.ID, &phaseID)
	if err != nil {
		return nil, notFound(err, "get system state")
	}
	s.CurrentPhaseID = phaseID.Int64
	return &s, nil
}

// SetCurrentPhase upserts the singleton row.
func (r *SQLiteRepository) SetCurrentPhase(ctx context.Context, phaseID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_state (id, current_phase_id) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET current_phase_id = excluded.current_phase_id`,
		core.SystemStateID, phaseID)
	if err != nil {
		return fmt.Errorf("set current phase: %w", err)
	}
	return nil
}

// ---- scheduled tasks ----

const taskCols = `id, phase_id, task_type, day, hour,
	COALESCE(reminder_text, ''), COALESCE(amount_cents, 0),
	COALESCE(from_envelope_id, 0), COALESCE(to_envelope_id, 0), is_active`

func scanTask(row interface{ Scan(...any) error }) (*core.ScheduledTask, error) {
	var t core.ScheduledTask
	var cents int64
	if err := row.Scan(&t.ID, &t.PhaseID, &t.Type, &t.Day, &t.Hour,
		&t.ReminderText, &cents, &t.FromEnvelopeID, &t.ToEnvelopeID, &t.IsActive); err != nil {
		return nil, err
	}
	t.Amount = core.FromCents(cents)
	return &t, nil
}

func (r *SQLiteRepository) Task(ctx context.Context, id int64) (*core.ScheduledTask, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskCols+` FROM scheduled_tasks WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get task")
	}
	return t, nil
}

func (r *SQLiteRepository) TasksForPhase(ctx context.Context, phaseID int64) ([]core.ScheduledTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM scheduled_tasks WHERE phase_id = ? ORDER BY id`, phaseID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.ScheduledTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t *core.ScheduledTask) error {
	res, err := r.insertTask(ctx, r.db, t)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insertTask(ctx context.Context, db execer, t *core.ScheduledTask) (sql.Result, error) {
	var reminder, amount, from, to any
	switch t.Type {
	case core.TaskReminder:
		reminder = t.ReminderText
	case core.TaskAutoTransfer:
		amount = core.Cents(t.Amount)
		from = t.FromEnvelopeID
		to = t.ToEnvelopeID
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO scheduled_tasks (phase_id, task_type, day, hour, reminder_text, amount_cents, from_envelope_id, to_envelope_id, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PhaseID, t.Type, t.Day, t.Hour, reminder, amount, from, to, t.IsActive)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return res, nil
}

func (r *SQLiteRepository) SetTaskActive(ctx context.Context, id int64, active bool) error {
	return r.execOne(ctx, "set task active",
		`UPDATE scheduled_tasks SET is_active = ? WHERE id = ?`, active, id)
}

// ReplaceTask deletes the old row and inserts the replacement as one unit.
// Task edits are replace-only; there is no partial payload update.
func (r *SQLiteRepository) ReplaceTask(ctx context.Context, id int64, t *core.ScheduledTask) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("replace task: %w", core.ErrNotFound)
	}

	ins, err := r.insertTask(ctx, tx, t)
	if err != nil {
		return err
	}
	if t.ID, err = ins.LastInsertId(); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete task",
		`DELETE FROM scheduled_tasks WHERE id = ?`, id)
}

// ---- aggregates ----

func (r *SQLiteRepository) sumCents(ctx context.Context, what, query string, args ...any) (decimal.Decimal, error) {
	var cents sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", what, err)
	}
	return core.FromCents(cents.Int64), nil
}

func (r *SQLiteRepository) SumTransactions(ctx context.Context, envelopeID int64, ctype core.CategoryType) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum transactions",
		`SELECT SUM(t.amount_cents) FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.envelope_id = ? AND c.type = ?`, envelopeID, ctype)
}

func (r *SQLiteRepository) SumTransfersInto(ctx context.Context, envelopeID int64) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum transfers into",
		`SELECT SUM(amount_cents) FROM transfers WHERE to_envelope_id = ?`, envelopeID)
}

func (r *SQLiteRepository) SumTransfersOutOf(ctx context.Context, envelopeID int64) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum transfers out of",
		`SELECT SUM(amount_cents) FROM transfers WHERE from_envelope_id = ?`, envelopeID)
}

func (r *SQLiteRepository) SumTransactionsForPeriod(ctx context.Context, ctype core.CategoryType, from, to time.Time) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum transactions for period",
		`SELECT SUM(t.amount_cents) FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE c.type = ? AND t.transaction_date BETWEEN ? AND ?`,
		ctype, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (r *SQLiteRepository) SumUserExpensesForPeriod(ctx context.Context, userID int64, from, to time.Time) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum user expenses for period",
		`SELECT SUM(t.amount_cents) FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND c.type = 'expense' AND t.transaction_date BETWEEN ? AND ?`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// SumSavingsTransfersForPeriod totals transfers into savings envelopes.
func (r *SQLiteRepository) SumSavingsTransfersForPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sumCents(ctx, "sum savings transfers for period",
		`SELECT SUM(t.amount_cents) FROM transfers t
		 JOIN envelopes e ON e.id = t.to_envelope_id
		 WHERE e.is_savings = 1 AND t.transferred_at BETWEEN ? AND ?`,
		from.UTC(), to.UTC())
}

// execOne runs an UPDATE/DELETE that must touch exactly one row.
func (r *SQLiteRepository) execOne(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	} else if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}
