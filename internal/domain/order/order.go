package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/mealbox/internal/domain/pricing"
)

var (
	// ErrNotFound is returned when an order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when the caller may not see or change an order.
	ErrForbidden = errors.New("forbidden")
)

// DateRange is the inclusive span of delivery days. Both ends are UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate requires both ends and End not before Start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Field: "scheduledDate", Message: "Please select delivery date range."}
	}
	if r.End.Before(r.Start) {
		return &ValidationError{Field: "scheduledDate", Message: "End date must not be before start date."}
	}
	return nil
}

// Days is the inclusive number of delivery days, at least 1.
func (r DateRange) Days() int {
	return pricing.Days(r.Start, r.End)
}

// Order is a placed meal order.
type Order struct {
	ID              string
	CustomerID      string
	MealID          string
	ProviderID      string
	PortionSize     string
	DeliveryAddress string
	Phone           string
	Status          Status
	Schedule        DateRange
	ExtraItems      []string
	Pricing         decimal.Decimal
	NumberOfDays    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ListByProvider(ctx context.Context, providerID string) ([]Order, error)
	// UpdateStatus overwrites the status unconditionally and returns the
	// stored order. Concurrent updates resolve as last write wins.
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}
