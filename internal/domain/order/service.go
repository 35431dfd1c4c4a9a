package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/mealbox/internal/domain/addon"
	"github.com/xenking/mealbox/internal/domain/auth"
	"github.com/xenking/mealbox/internal/domain/meal"
	"github.com/xenking/mealbox/internal/domain/pricing"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventPlaced        EventType = "order.placed"
	EventStatusChanged EventType = "order.status_changed"
)

// Event is emitted after an order is created or its status changes.
type Event struct {
	Type           EventType
	OrderID        string
	CustomerID     string
	ProviderID     string
	Status         Status
	PreviousStatus Status
	At             time.Time
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// QuoteResult is a priced draft.
type QuoteResult struct {
	Meal       *meal.Meal
	Portion    meal.Portion
	Quote      pricing.Quote
	ExtraItems []string
}

// Options holds optional Service collaborators. Zero values fall back to
// no-op implementations and the wall clock.
type Options struct {
	Events         Publisher
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
	Now            func() time.Time
}

// Service encapsulates order pricing, placement and lifecycle rules.
type Service struct {
	meals  meal.Reader
	addOns addon.Repository
	orders Repository
	events Publisher
	now    func() time.Time

	tracer        trace.Tracer
	placed        metric.Int64Counter
	statusChanges metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	meals meal.Reader,
	addOns addon.Repository,
	orders Repository,
	opts Options,
) (*Service, error) {
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	meter := opts.MeterProvider.Meter("mealbox/order")
	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders created"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	statusChanges, err := meter.Int64Counter("orders.status_changes",
		metric.WithDescription("Order status transitions applied"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.status_changes counter")
	}

	return &Service{
		meals:         meals,
		addOns:        addOns,
		orders:        orders,
		events:        opts.Events,
		now:           opts.Now,
		tracer:        opts.TracerProvider.Tracer("mealbox/order"),
		placed:        placed,
		statusChanges: statusChanges,
	}, nil
}

// Classify buckets o against the service clock.
func (s *Service) Classify(o *Order) Bucket {
	return Classify(o, s.now())
}

// Quote prices a draft without persisting anything. An empty portion size
// selects the meal's default portion and a missing date range counts as a
// single day.
func (s *Service) Quote(ctx context.Context, d Draft) (*QuoteResult, error) {
	if err := d.ValidateSelection(); err != nil {
		return nil, err
	}

	m, err := s.meals.GetByID(ctx, d.MealID)
	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			return nil, &MealNotFoundError{MealID: d.MealID}
		}
		return nil, errors.Wrap(err, "get meal")
	}
	if !m.Available {
		return nil, &ValidationError{Field: "mealId", Message: "This meal is currently unavailable."}
	}

	var (
		portion meal.Portion
		ok      bool
	)
	if d.PortionSize == "" {
		portion, ok = m.DefaultPortion()
	} else {
		portion, ok = m.Portion(d.PortionSize)
	}
	if !ok {
		return nil, &ValidationError{
			Field:   "portionSize",
			Message: "Portion " + d.PortionSize + " is not offered for this meal.",
		}
	}

	catalog, err := s.addOns.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list add-ons")
	}
	priced, names, err := addon.Select(catalog, d.AddOnIDs)
	if err != nil {
		var unknown *addon.UnknownAddOnError
		if errors.As(err, &unknown) {
			return nil, &ValidationError{Field: "addOnIds", Message: "Unknown add-on " + unknown.ID + "."}
		}
		return nil, err
	}

	q, err := pricing.Calculate(portion.Price, priced, d.Schedule.Days())
	if err != nil {
		return nil, errors.Wrap(err, "calculate")
	}

	return &QuoteResult{
		Meal:       m,
		Portion:    portion,
		Quote:      q,
		ExtraItems: names,
	}, nil
}

// PlaceOrder validates the draft, prices it, and stores a new pending order
// for the calling customer.
func (s *Service) PlaceOrder(ctx context.Context, p auth.Principal, d Draft) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.String("meal.id", d.MealID)),
	)
	defer func() { endSpan(span, rerr) }()

	if p.Role != auth.RoleCustomer {
		return nil, errors.Wrap(ErrForbidden, "only customers place orders")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	res, err := s.Quote(ctx, d)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.New().String(),
		CustomerID:      p.UserID,
		MealID:          res.Meal.ID,
		ProviderID:      res.Meal.ProviderID,
		PortionSize:     res.Portion.Size,
		DeliveryAddress: strings.TrimSpace(d.DeliveryAddress),
		Phone:           strings.TrimSpace(d.Phone),
		Status:          StatusPending,
		Schedule:        DateRange{Start: pricing.TruncateDay(d.Schedule.Start), End: pricing.TruncateDay(d.Schedule.End)},
		ExtraItems:      res.ExtraItems,
		Pricing:         res.Quote.Total,
		NumberOfDays:    res.Quote.Days,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	span.SetAttributes(attribute.String("order.id", o.ID))
	s.placed.Add(ctx, 1)
	s.publish(ctx, Event{
		Type:       EventPlaced,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		ProviderID: o.ProviderID,
		Status:     o.Status,
		At:         now,
	})
	return o, nil
}

// List returns the caller's orders split into active and previous: a
// customer sees the orders they placed, a provider the orders addressed to
// them.
func (s *Service) List(ctx context.Context, p auth.Principal) (Buckets, error) {
	var (
		orders []Order
		err    error
	)
	switch p.Role {
	case auth.RoleCustomer:
		orders, err = s.orders.ListByCustomer(ctx, p.UserID)
	case auth.RoleProvider:
		orders, err = s.orders.ListByProvider(ctx, p.UserID)
	default:
		return Buckets{}, errors.Wrapf(ErrForbidden, "role %q", p.Role)
	}
	if err != nil {
		return Buckets{}, errors.Wrap(err, "list orders")
	}
	return Partition(orders, s.now()), nil
}

// Get returns an order visible to the caller.
func (s *Service) Get(ctx context.Context, p auth.Principal, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	if !canSee(p, o) {
		return nil, errors.Wrapf(ErrForbidden, "order %s", id)
	}
	return o, nil
}

// UpdateStatus moves an order to a new status. The requested value is
// validated against the status enum before anything is read, then the
// caller's capability for the transition is checked. The write itself is
// unconditional: when two callers race, the last write wins.
func (s *Service) UpdateStatus(ctx context.Context, p auth.Principal, id, status string) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.id", id),
			attribute.String("order.status", status),
		),
	)
	defer func() { endSpan(span, rerr) }()

	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := Authorize(p.Role, from, to); err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateStatus(ctx, id, to)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update status")
	}

	s.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.String("role", string(p.Role)),
	))
	s.publish(ctx, Event{
		Type:           EventStatusChanged,
		OrderID:        updated.ID,
		CustomerID:     updated.CustomerID,
		ProviderID:     updated.ProviderID,
		Status:         updated.Status,
		PreviousStatus: from,
		At:             s.now().UTC(),
	})
	return updated, nil
}

// Cancel cancels an order on behalf of the caller.
func (s *Service) Cancel(ctx context.Context, p auth.Principal, id string) (*Order, error) {
	return s.UpdateStatus(ctx, p, id, string(StatusCancelled))
}

func (s *Service) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		zctx.From(ctx).Warn("Publish order event",
			zap.String("type", string(e.Type)),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}

func canSee(p auth.Principal, o *Order) bool {
	switch p.Role {
	case auth.RoleCustomer:
		return o.CustomerID == p.UserID
	case auth.RoleProvider:
		return o.ProviderID == p.UserID
	default:
		return false
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
