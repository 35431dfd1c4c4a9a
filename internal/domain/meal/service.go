package meal

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/mealbox/internal/domain/auth"
)

// Patch lists the fields a provider changes. Nil fields are left alone; a
// non-nil Portions replaces the whole portion list.
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	ImageURL    *string
	Available   *bool
	Portions    []Portion
}

// Apply writes the set fields of p onto m.
func (p Patch) Apply(m *Meal) {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.Available != nil {
		m.Available = *p.Available
	}
	if p.Portions != nil {
		m.Portions = p.Portions
	}
}

// Service applies provider changes to the catalog. Every write requires a
// provider, and only the provider that owns a meal may change it.
type Service struct {
	meals Repository
	newID func() string
}

// NewService creates a catalog Service over meals.
func NewService(meals Repository) *Service {
	return &Service{meals: meals, newID: uuid.NewString}
}

// Create adds a meal owned by the calling provider. A missing id is
// generated and a new meal is available unless the patch says otherwise.
func (s *Service) Create(ctx context.Context, p auth.Principal, id string, patch Patch) (*Meal, error) {
	if p.Role != auth.RoleProvider {
		return nil, errors.Wrap(ErrForbidden, "only providers add meals")
	}
	m := Meal{ID: strings.TrimSpace(id), ProviderID: p.UserID, Available: true}
	if m.ID == "" {
		m.ID = s.newID()
	}
	patch.Apply(&m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.meals.Create(ctx, m); err != nil {
		return nil, errors.Wrapf(err, "create meal %s", m.ID)
	}
	return &m, nil
}

// Update changes a meal owned by the caller.
func (s *Service) Update(ctx context.Context, p auth.Principal, id string, patch Patch) (*Meal, error) {
	current, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	m := *current
	patch.Apply(&m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.meals.Update(ctx, m); err != nil {
		return nil, errors.Wrapf(err, "update meal %s", id)
	}
	return &m, nil
}

// Delete removes a meal owned by the caller. Meals that orders reference
// cannot be deleted; they are made unavailable instead.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	if err := s.meals.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete meal %s", id)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, p auth.Principal, id string) (*Meal, error) {
	if p.Role != auth.RoleProvider {
		return nil, errors.Wrap(ErrForbidden, "only providers change meals")
	}
	m, err := s.meals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ProviderID != p.UserID {
		return nil, errors.Wrapf(ErrForbidden, "meal %s belongs to another provider", id)
	}
	return m, nil
}
