package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdhoang/teahouse/internal/domain/menu"
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns the full menu.
func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, base_price, has_customization FROM menu_items ORDER BY base_price, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query menu")
	}
	defer rows.Close()

	var items []menu.Item
	for rows.Next() {
		var it menu.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.BasePrice, &it.HasCustomization); err != nil {
			return nil, errors.Wrap(err, "scan menu item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByIDs fetches the given menu items in one query. Missing ids are simply
// absent from the result; the caller decides whether that is an error.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, base_price, has_customization FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "query menu items")
	}
	defer rows.Close()

	var items []menu.Item
	for rows.Next() {
		var it menu.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.BasePrice, &it.HasCustomization); err != nil {
			return nil, errors.Wrap(err, "scan menu item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
