package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mealbox/internal/domain/meal"
)

const (
	mealColumns = `id, provider_id, name, description, category, image_url, available`

	listMealsSQL = `SELECT ` + mealColumns + ` FROM meals ORDER BY name, id`

	getMealByIDSQL = `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`

	listPortionsSQL = `SELECT meal_id, size, price
		FROM meal_portions ORDER BY meal_id, position, size`

	listPortionsByMealSQL = `SELECT meal_id, size, price
		FROM meal_portions WHERE meal_id = $1 ORDER BY position, size`

	insertMealSQL = `INSERT INTO meals (` + mealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	upsertMealSQL = insertMealSQL + `
		ON CONFLICT (id) DO UPDATE SET
			provider_id = EXCLUDED.provider_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			available = EXCLUDED.available`

	updateMealSQL = `UPDATE meals SET
			provider_id = $2, name = $3, description = $4,
			category = $5, image_url = $6, available = $7
		WHERE id = $1`

	deleteMealSQL = `DELETE FROM meals WHERE id = $1`

	deletePortionsSQL = `DELETE FROM meal_portions WHERE meal_id = $1`

	insertPortionSQL = `INSERT INTO meal_portions (meal_id, size, price, position)
		VALUES ($1, $2, $3, $4)`
)

// Postgres error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var _ meal.Repository = (*MealRepository)(nil)

// MealRepository implements meal.Repository backed by PostgreSQL.
type MealRepository struct {
	pool *pgxpool.Pool
}

// NewMealRepository returns a MealRepository that uses the given pool.
func NewMealRepository(pool *pgxpool.Pool) *MealRepository {
	return &MealRepository{pool: pool}
}

// List returns the whole catalog with portions in their display order.
func (r *MealRepository) List(ctx context.Context) ([]meal.Meal, error) {
	rows, err := r.pool.Query(ctx, listMealsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list meals")
	}
	meals, err := pgx.CollectRows(rows, scanMeal)
	if err != nil {
		return nil, errors.Wrap(err, "scan meals")
	}

	rows, err = r.pool.Query(ctx, listPortionsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list portions")
	}
	portions, err := pgx.CollectRows(rows, scanPortion)
	if err != nil {
		return nil, errors.Wrap(err, "scan portions")
	}

	byMeal := make(map[string][]meal.Portion, len(meals))
	for _, p := range portions {
		byMeal[p.mealID] = append(byMeal[p.mealID], p.Portion)
	}
	for i := range meals {
		meals[i].Portions = byMeal[meals[i].ID]
	}
	return meals, nil
}

// GetByID returns a single meal with its portions.
func (r *MealRepository) GetByID(ctx context.Context, id string) (*meal.Meal, error) {
	rows, err := r.pool.Query(ctx, getMealByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get meal %q", id)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMeal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, meal.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get meal %q", id)
	}

	rows, err = r.pool.Query(ctx, listPortionsByMealSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "list portions of %q", id)
	}
	portions, err := pgx.CollectRows(rows, scanPortion)
	if err != nil {
		return nil, errors.Wrapf(err, "scan portions of %q", id)
	}
	for _, p := range portions {
		m.Portions = append(m.Portions, p.Portion)
	}
	return &m, nil
}

// Create inserts a new meal with its portions.
func (r *MealRepository) Create(ctx context.Context, m meal.Meal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertMealSQL, mealArgs(m)...); err != nil {
			if pgCode(err) == codeUniqueViolation {
				return meal.ErrAlreadyExists
			}
			return errors.Wrapf(err, "insert meal %q", m.ID)
		}
		return replacePortions(ctx, tx, m)
	})
}

// Update overwrites an existing meal and replaces its portions.
func (r *MealRepository) Update(ctx context.Context, m meal.Meal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateMealSQL, mealArgs(m)...)
		if err != nil {
			return errors.Wrapf(err, "update meal %q", m.ID)
		}
		if tag.RowsAffected() == 0 {
			return meal.ErrNotFound
		}
		return replacePortions(ctx, tx, m)
	})
}

// Delete removes a meal and its portions. Meals referenced by orders are
// kept and reported as meal.ErrInUse.
func (r *MealRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMealSQL, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return meal.ErrInUse
		}
		return errors.Wrapf(err, "delete meal %q", id)
	}
	if tag.RowsAffected() == 0 {
		return meal.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a meal together with its portions. Portions
// keep the order they are given in.
func (r *MealRepository) Upsert(ctx context.Context, m meal.Meal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertMealSQL, mealArgs(m)...); err != nil {
			return errors.Wrapf(err, "upsert meal %q", m.ID)
		}
		return replacePortions(ctx, tx, m)
	})
}

func replacePortions(ctx context.Context, tx pgx.Tx, m meal.Meal) error {
	if _, err := tx.Exec(ctx, deletePortionsSQL, m.ID); err != nil {
		return errors.Wrapf(err, "clear portions of %q", m.ID)
	}
	for i, p := range m.Portions {
		if _, err := tx.Exec(ctx, insertPortionSQL, m.ID, p.Size, p.Price, i); err != nil {
			return errors.Wrapf(err, "insert portion %q of %q", p.Size, m.ID)
		}
	}
	return nil
}

func mealArgs(m meal.Meal) []any {
	return []any{m.ID, m.ProviderID, m.Name, m.Description, m.Category, m.ImageURL, m.Available}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

type portionRow struct {
	mealID string
	meal.Portion
}

func scanMeal(row pgx.CollectableRow) (meal.Meal, error) {
	var m meal.Meal
	err := row.Scan(&m.ID, &m.ProviderID, &m.Name, &m.Description, &m.Category, &m.ImageURL, &m.Available)
	return m, err
}

func scanPortion(row pgx.CollectableRow) (portionRow, error) {
	var p portionRow
	err := row.Scan(&p.mealID, &p.Size, &p.Price)
	return p, err
}
