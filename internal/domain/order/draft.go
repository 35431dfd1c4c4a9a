package order

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed checkout field. It is
// raised before any persistence call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MealNotFoundError indicates the draft references a meal that does not exist.
type MealNotFoundError struct {
	MealID string
}

func (e *MealNotFoundError) Error() string {
	return fmt.Sprintf("meal %s not found", e.MealID)
}

// Draft is the checkout state carried from meal selection to order placement.
// It is a value: edits produce a new Draft and nothing holds on to it after
// the order is placed.
type Draft struct {
	MealID          string
	PortionSize     string
	AddOnIDs        []string
	Schedule        DateRange
	DeliveryAddress string
	Phone           string
}

// ValidateSelection checks the fields needed to price the draft.
func (d Draft) ValidateSelection() error {
	if strings.TrimSpace(d.MealID) == "" {
		return &ValidationError{Field: "mealId", Message: "No meal selected. Please select a meal first."}
	}
	return nil
}

// Validate checks every field required to place the order, in the order the
// checkout form reports them.
func (d Draft) Validate() error {
	if err := d.ValidateSelection(); err != nil {
		return err
	}
	if strings.TrimSpace(d.PortionSize) == "" {
		return &ValidationError{Field: "portionSize", Message: "Missing information. Please check your selections."}
	}
	if strings.TrimSpace(d.DeliveryAddress) == "" {
		return &ValidationError{Field: "deliveryAddress", Message: "Please provide a delivery address."}
	}
	if strings.TrimSpace(d.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "Please provide a contact phone number."}
	}
	return d.Schedule.Validate()
}
