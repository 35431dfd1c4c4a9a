// Package addon holds the catalog of optional extras that can be attached to
// any order and are charged per delivery day.
package addon

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/mealbox/internal/domain/pricing"
)

// AddOn is a catalog extra such as a drink or a side.
type AddOn struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// UnknownAddOnError indicates a selected add-on id is not in the catalog.
type UnknownAddOnError struct {
	ID string
}

func (e *UnknownAddOnError) Error() string {
	return fmt.Sprintf("add-on %s not found", e.ID)
}

// Repository provides the add-on catalog.
type Repository interface {
	List(ctx context.Context) ([]AddOn, error)
}

// Defaults is the catalog seeded into a fresh database.
func Defaults() []AddOn {
	return []AddOn{
		{ID: "water", Name: "Water", Price: decimal.RequireFromString("1.00")},
		{ID: "frenchFries", Name: "French Fries", Price: decimal.RequireFromString("5.00")},
		{ID: "tomatoSauce", Name: "Tomato Sauce", Price: decimal.RequireFromString("2.00")},
	}
}

// Select marks the add-ons with the given ids as selected. It returns the
// whole catalog as pricing input together with the names of the selected
// entries in catalog order. Duplicate ids are ignored.
func Select(catalog []AddOn, ids []string) ([]pricing.AddOn, []string, error) {
	chosen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		chosen[id] = struct{}{}
	}

	priced := make([]pricing.AddOn, len(catalog))
	names := make([]string, 0, len(chosen))
	for i, a := range catalog {
		_, ok := chosen[a.ID]
		priced[i] = pricing.AddOn{ID: a.ID, Name: a.Name, Price: a.Price, Selected: ok}
		if ok {
			names = append(names, a.Name)
			delete(chosen, a.ID)
		}
	}

	for _, id := range ids {
		if _, missing := chosen[id]; missing {
			return nil, nil, &UnknownAddOnError{ID: id}
		}
	}
	return priced, names, nil
}
