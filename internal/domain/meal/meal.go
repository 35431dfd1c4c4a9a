package meal

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested meal does not exist.
	ErrNotFound = errors.New("meal not found")
	// ErrAlreadyExists is returned when creating a meal with a taken id.
	ErrAlreadyExists = errors.New("meal already exists")
	// ErrInUse is returned when deleting a meal that orders still reference.
	ErrInUse = errors.New("meal has orders, mark it unavailable instead")
	// ErrForbidden is returned when the caller may not change a meal.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports why a meal cannot be stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Meal is a catalog entry offered by a provider.
type Meal struct {
	ID          string
	ProviderID  string
	Name        string
	Description string
	Category    string
	ImageURL    string
	// Available meals can be ordered. Unavailable ones stay listed for
	// their provider and existing orders.
	Available bool
	Portions  []Portion
}

// Portion is a purchasable size of a meal with its per-day price.
type Portion struct {
	Size  string
	Price decimal.Decimal
}

// Portion returns the portion with the given size.
func (m *Meal) Portion(size string) (Portion, bool) {
	for _, p := range m.Portions {
		if p.Size == size {
			return p, true
		}
	}
	return Portion{}, false
}

// DefaultPortion is the portion preselected when a meal is first chosen.
func (m *Meal) DefaultPortion() (Portion, bool) {
	if len(m.Portions) == 0 {
		return Portion{}, false
	}
	return m.Portions[0], true
}

// Validate checks that the meal is named, has at least one portion, that
// portion sizes are unique and that every price is positive.
func (m *Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name", Message: "meal name is required"}
	}
	if len(m.Portions) == 0 {
		return &ValidationError{Field: "portions", Message: "meal must have at least one portion"}
	}
	seen := make(map[string]struct{}, len(m.Portions))
	for _, p := range m.Portions {
		if p.Size == "" {
			return &ValidationError{Field: "portions", Message: "empty portion size"}
		}
		if _, dup := seen[p.Size]; dup {
			return &ValidationError{Field: "portions", Message: fmt.Sprintf("duplicate portion size %q", p.Size)}
		}
		seen[p.Size] = struct{}{}
		if !p.Price.IsPositive() {
			return &ValidationError{Field: "portions", Message: fmt.Sprintf("portion %q price must be positive", p.Size)}
		}
	}
	return nil
}

// Reader is the read side of the catalog.
type Reader interface {
	List(ctx context.Context) ([]Meal, error)
	GetByID(ctx context.Context, id string) (*Meal, error)
}

// Repository stores the meal catalog.
type Repository interface {
	Reader
	// Create fails with ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, m Meal) error
	// Update replaces the meal and its portions, or returns ErrNotFound.
	Update(ctx context.Context, m Meal) error
	// Delete returns ErrNotFound or ErrInUse.
	Delete(ctx context.Context, id string) error
}
