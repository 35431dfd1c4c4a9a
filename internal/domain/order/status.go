package order

import (
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/mealbox/internal/domain/auth"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in progress"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	// ErrUnknownStatus is returned for a status outside the four known values.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrInvalidTransition is returned when the lifecycle has no such edge.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ParseStatus validates a wire status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string { return string(s) }

// capabilities lists, per role, the transitions that role may perform.
// The lifecycle itself is the union over all roles.
var capabilities = map[auth.Role]map[Status][]Status{
	auth.RoleProvider: {
		StatusPending:    {StatusInProgress, StatusDelivered, StatusCancelled},
		StatusInProgress: {StatusDelivered, StatusCancelled},
	},
	auth.RoleCustomer: {
		StatusPending: {StatusCancelled},
	},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another, regardless of who asks.
func CanTransition(from, to Status) bool {
	for _, edges := range capabilities {
		if slices.Contains(edges[from], to) {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses role may move an order in status s to.
func AllowedTransitions(role auth.Role, s Status) []Status {
	return slices.Clone(capabilities[role][s])
}

// Authorize checks that role may move an order from one status to another.
func Authorize(role auth.Role, from, to Status) error {
	if !CanTransition(from, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	if !slices.Contains(capabilities[role][from], to) {
		return errors.Wrapf(ErrForbidden, "%s may not move order %s -> %s", role, from, to)
	}
	return nil
}
