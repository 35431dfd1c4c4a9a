package meal

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/mealbox/internal/domain/auth"
)

// --- Mock implementations ---

type memRepo struct {
	byID      map[string]Meal
	deleteErr error
}

func newMemRepo(meals ...Meal) *memRepo {
	r := &memRepo{byID: map[string]Meal{}}
	for _, m := range meals {
		r.byID[m.ID] = m
	}
	return r
}

func (r *memRepo) List(context.Context) ([]Meal, error) {
	out := make([]Meal, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Meal, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memRepo) Create(_ context.Context, m Meal) error {
	if _, ok := r.byID[m.ID]; ok {
		return ErrAlreadyExists
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memRepo) Update(_ context.Context, m Meal) error {
	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var (
	owner    = auth.Principal{UserID: "prov-1", Role: auth.RoleProvider}
	rival    = auth.Principal{UserID: "prov-2", Role: auth.RoleProvider}
	customer = auth.Principal{UserID: "cust-1", Role: auth.RoleCustomer}
)

func ptr[T any](v T) *T { return &v }

func newPatch() Patch {
	return Patch{
		Name:     ptr("Veggie Wrap"),
		Category: ptr("Wraps"),
		Portions: []Portion{{Size: "small", Price: decimal.RequireFromString("6.50")}},
	}
}

func TestService_Create(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	svc.newID = func() string { return "generated" }

	m, err := svc.Create(context.Background(), owner, "", newPatch())
	require.NoError(t, err)
	assert.Equal(t, "generated", m.ID)
	assert.Equal(t, "prov-1", m.ProviderID)
	assert.True(t, m.Available)
	assert.Equal(t, "Veggie Wrap", repo.byID["generated"].Name)

	p := newPatch()
	p.Available = ptr(false)
	m, err = svc.Create(context.Background(), owner, "wrap", p)
	require.NoError(t, err)
	assert.Equal(t, "wrap", m.ID)
	assert.False(t, m.Available)

	_, err = svc.Create(context.Background(), owner, "wrap", newPatch())
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestService_Create_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		caller  auth.Principal
		patch   func(p *Patch)
		wantErr error
	}{
		{name: "customer", caller: customer, patch: func(*Patch) {}, wantErr: ErrForbidden},
		{name: "no portions", caller: owner, patch: func(p *Patch) { p.Portions = []Portion{} }},
		{name: "no name", caller: owner, patch: func(p *Patch) { p.Name = nil }},
		{
			name:   "negative price",
			caller: owner,
			patch: func(p *Patch) {
				p.Portions = []Portion{{Size: "small", Price: decimal.NewFromInt(-1)}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			p := newPatch()
			tt.patch(&p)

			_, err := NewService(repo).Create(context.Background(), tt.caller, "wrap", p)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
			}
			assert.Empty(t, repo.byID)
		})
	}
}

func TestService_Update(t *testing.T) {
	repo := newMemRepo(testMeal())
	svc := NewService(repo)
	ctx := context.Background()

	m, err := svc.Update(ctx, owner, "m1", Patch{Available: ptr(false)})
	require.NoError(t, err)
	assert.False(t, m.Available)
	assert.Equal(t, "Chicken Bowl", m.Name)
	assert.Len(t, m.Portions, 2)
	assert.False(t, repo.byID["m1"].Available)

	_, err = svc.Update(ctx, rival, "m1", Patch{Available: ptr(true)})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, customer, "m1", Patch{Available: ptr(true)})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, owner, "ghost", Patch{})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, owner, "m1", Patch{Portions: []Portion{}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, repo.byID["m1"].Portions, 2, "invalid update must not be stored")
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := newMemRepo(testMeal())
	svc := NewService(repo)
	require.ErrorIs(t, svc.Delete(ctx, rival, "m1"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, "m1"))
	require.ErrorIs(t, svc.Delete(ctx, owner, "m1"), ErrNotFound)

	repo = newMemRepo(testMeal())
	repo.deleteErr = errors.Wrap(ErrInUse, "orders_meal_id_fkey")
	require.ErrorIs(t, NewService(repo).Delete(ctx, owner, "m1"), ErrInUse)
}
