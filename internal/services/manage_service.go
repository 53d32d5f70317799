package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"envelopes/internal/core"
)

// ManageService covers the administrative surface: envelopes, categories,
// and user registration.
type ManageService struct {
	store ManageStore
}

func NewManageService(store ManageStore) *ManageService {
	return &ManageService{store: store}
}

func (s *ManageService) CreateEnvelope(ctx context.Context, name string, ownerID int64, savings bool) (*core.Envelope, error) {
	e := &core.Envelope{
		Name:      name,
		Balance:   decimal.Zero,
		OwnerID:   ownerID,
		IsActive:  true,
		IsSavings: savings,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Name == core.SystemEnvelopeName {
		return nil, fmt.Errorf("envelope name %q is reserved", core.SystemEnvelopeName)
	}
	if err := s.store.CreateEnvelope(ctx, e); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Envelope created", "envelope_id", e.ID, "name", e.Name)
	return e, nil
}

func (s *ManageService) Envelopes(ctx context.Context) ([]core.Envelope, error) {
	return s.store.ActiveEnvelopes(ctx)
}

func (s *ManageService) RenameEnvelope(ctx context.Context, id int64, name string) error {
	if name == "" {
		return core.ErrEmptyName
	}
	if name == core.SystemEnvelopeName {
		return fmt.Errorf("envelope name %q is reserved", core.SystemEnvelopeName)
	}
	return s.store.RenameEnvelope(ctx, id, name)
}

func (s *ManageService) DeactivateEnvelope(ctx context.Context, id int64) error {
	envelope, err := s.store.Envelope(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve envelope: %w", err)
	}
	if !envelope.Balance.IsZero() {
		return fmt.Errorf("envelope %q still holds %s", envelope.Name, core.FormatAmount(envelope.Balance))
	}
	return s.store.SetEnvelopeActive(ctx, id, false)
}

func (s *ManageService) SetEnvelopeSavings(ctx context.Context, id int64, savings bool) error {
	if _, err := s.store.Envelope(ctx, id); err != nil {
		return fmt.Errorf("resolve envelope: %w", err)
	}
	return s.store.SetEnvelopeSavings(ctx, id, savings)
}

func (s *ManageService) CreateCategory(ctx context.Context, name string, ctype core.CategoryType) (*core.Category, error) {
	c := &core.Category{Name: name, Type: ctype, IsActive: true}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ManageService) Categories(ctx context.Context, ctype core.CategoryType) ([]core.Category, error) {
	return s.store.ActiveCategories(ctx, ctype)
}

func (s *ManageService) DeactivateCategory(ctx context.Context, id int64) error {
	if _, err := s.store.Category(ctx, id); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	return s.store.SetCategoryActive(ctx, id, false)
}

// RegisterUser returns the user bound to chatID, creating one on first
// contact.
func (s *ManageService) RegisterUser(ctx context.Context, chatID int64, username, timezone string) (*core.User, error) {
	user, err := s.store.UserByChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if timezone != "" {
		if err := core.ValidateTimezone(timezone); err != nil {
			return nil, err
		}
	}
	user = &core.User{ChatID: chatID, Username: username, Timezone: timezone}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "chat_id", chatID)
	return user, nil
}

// UpdateTimezone validates and stores a user's IANA timezone name.
func (s *ManageService) UpdateTimezone(ctx context.Context, userID int64, timezone string) error {
	if err := core.ValidateTimezone(timezone); err != nil {
		return err
	}
	return s.store.SetUserTimezone(ctx, userID, timezone)
}
