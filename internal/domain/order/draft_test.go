package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		MealID:      "m1",
		PortionSize: "small",
		AddOnIDs:    []string{"water"},
		Schedule: DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		DeliveryAddress: "12 Baker Street",
		Phone:           "5551234",
	}
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Draft)
		wantField string
	}{
		{name: "valid", mutate: func(*Draft) {}},
		{name: "no meal", mutate: func(d *Draft) { d.MealID = "" }, wantField: "mealId"},
		{name: "no portion", mutate: func(d *Draft) { d.PortionSize = " " }, wantField: "portionSize"},
		{name: "no address", mutate: func(d *Draft) { d.DeliveryAddress = "" }, wantField: "deliveryAddress"},
		{name: "no phone", mutate: func(d *Draft) { d.Phone = "" }, wantField: "phone"},
		{name: "no start", mutate: func(d *Draft) { d.Schedule.Start = time.Time{} }, wantField: "scheduledDate"},
		{name: "no end", mutate: func(d *Draft) { d.Schedule.End = time.Time{} }, wantField: "scheduledDate"},
		{
			name:      "end before start",
			mutate:    func(d *Draft) { d.Schedule.End = d.Schedule.Start.AddDate(0, 0, -1) },
			wantField: "scheduledDate",
		},
		{
			name: "first missing field wins",
			mutate: func(d *Draft) {
				d.DeliveryAddress = ""
				d.Phone = ""
			},
			wantField: "deliveryAddress",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.NotEmpty(t, vErr.Message)
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	assert.Equal(t, 3, validDraft().Schedule.Days())
	assert.Equal(t, 1, DateRange{}.Days())
}
