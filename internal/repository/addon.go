package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mealbox/internal/domain/addon"
)

const (
	listAddOnsSQL = `SELECT id, name, price FROM add_ons ORDER BY position, id`

	upsertAddOnSQL = `INSERT INTO add_ons (id, name, price, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			position = EXCLUDED.position`
)

var _ addon.Repository = (*AddOnRepository)(nil)

// AddOnRepository implements addon.Repository backed by PostgreSQL.
type AddOnRepository struct {
	pool *pgxpool.Pool
}

// NewAddOnRepository returns an AddOnRepository that uses the given pool.
func NewAddOnRepository(pool *pgxpool.Pool) *AddOnRepository {
	return &AddOnRepository{pool: pool}
}

// List returns the add-on catalog in display order.
func (r *AddOnRepository) List(ctx context.Context) ([]addon.AddOn, error) {
	rows, err := r.pool.Query(ctx, listAddOnsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list add-ons")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (addon.AddOn, error) {
		var a addon.AddOn
		err := row.Scan(&a.ID, &a.Name, &a.Price)
		return a, err
	})
}

// Upsert stores the catalog, replacing entries with the same id. The slice
// order becomes the display order.
func (r *AddOnRepository) Upsert(ctx context.Context, addOns []addon.AddOn) error {
	batch := &pgx.Batch{}
	for i, a := range addOns {
		if a.Price.IsNegative() {
			return errors.Errorf("add-on %s: negative price", a.ID)
		}
		batch.Queue(upsertAddOnSQL, a.ID, a.Name, a.Price, i)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert add-ons")
	}
	return nil
}
