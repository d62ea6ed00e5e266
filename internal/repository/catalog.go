package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

// ListCities возвращает список городов.
func (r *PostgresRepository) ListCities(ctx context.Context) ([]model.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select cities: %w", err)
	}

	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.City, error) {
		var c model.City
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect cities: %w", err)
	}
	return res, nil
}

// CreateCity добавляет город.
func (r *PostgresRepository) CreateCity(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO cities (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert city: %w", err)
	}
	return id, nil
}

// ListOutlets возвращает точки бренда; cityID == 0 означает все города.
func (r *PostgresRepository) ListOutlets(ctx context.Context, brand string, cityID int64) ([]model.Outlet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, city_id, brand, name, address, is_open
		 FROM outlets
		 WHERE brand = $1 AND ($2::BIGINT = 0 OR city_id = $2)
		 ORDER BY name`,
		brand, cityID,
	)
	if err != nil {
		return nil, fmt.Errorf("select outlets: %w", err)
	}

	res, err := pgx.CollectRows(rows, scanOutlet)
	if err != nil {
		return nil, fmt.Errorf("collect outlets: %w", err)
	}
	return res, nil
}

func scanOutlet(row pgx.CollectableRow) (model.Outlet, error) {
	var o model.Outlet
	err := row.Scan(&o.ID, &o.CityID, &o.Brand, &o.Name, &o.Address, &o.IsOpen)
	return o, err
}

// GetOutlet возвращает точку по идентификатору.
func (r *PostgresRepository) GetOutlet(ctx context.Context, id int64) (*model.Outlet, error) {
	var o model.Outlet
	err := r.pool.QueryRow(ctx,
		`SELECT id, city_id, brand, name, address, is_open FROM outlets WHERE id = $1`, id,
	).Scan(&o.ID, &o.CityID, &o.Brand, &o.Name, &o.Address, &o.IsOpen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get outlet: %w", err)
	}
	return &o, nil
}

// CreateOutlet добавляет точку.
func (r *PostgresRepository) CreateOutlet(ctx context.Context, o model.Outlet) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO outlets (city_id, brand, name, address, is_open)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		o.CityID, o.Brand, o.Name, o.Address, o.IsOpen,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert outlet: %w", err)
	}
	return id, nil
}

// ListCategories возвращает категории меню бренда.
func (r *PostgresRepository) ListCategories(ctx context.Context, brand string) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, brand, name, sort_order FROM categories WHERE brand = $1 ORDER BY sort_order, name`,
		brand,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Category, error) {
		var c model.Category
		err := row.Scan(&c.ID, &c.Brand, &c.Name, &c.SortOrder)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	return res, nil
}

// CreateCategory добавляет категорию меню.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c model.Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (brand, name, sort_order) VALUES ($1, $2, $3) RETURNING id`,
		c.Brand, c.Name, c.SortOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

const menuItemColumns = `id, brand, category_id, name, description, price, is_veg, variations, add_ons, active`

func scanMenuItem(row pgx.Row, extra ...any) (model.MenuItem, error) {
	var (
		m          model.MenuItem
		variations []byte
		addOns     []byte
	)
	dest := append([]any{&m.ID, &m.Brand, &m.CategoryID, &m.Name, &m.Description, &m.Price,
		&m.IsVeg, &variations, &addOns, &m.Active}, extra...)
	if err := row.Scan(dest...); err != nil {
		return m, err
	}
	if err := json.Unmarshal(variations, &m.Variations); err != nil {
		return m, fmt.Errorf("decode variations: %w", err)
	}
	if err := json.Unmarshal(addOns, &m.AddOns); err != nil {
		return m, fmt.Errorf("decode add-ons: %w", err)
	}
	return m, nil
}

// ListMenuItems возвращает активные позиции меню бренда, доступные в точке.
// Позиции без отметки о доступности считаются доступными.
func (r *PostgresRepository) ListMenuItems(ctx context.Context, brand string, outletID int64) ([]model.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.brand, m.category_id, m.name, m.description, m.price, m.is_veg, m.variations, m.add_ons, m.active
		 FROM menu_items m
		 LEFT JOIN menu_availability a ON a.menu_item_id = m.id AND a.outlet_id = $2
		 WHERE m.brand = $1 AND m.active AND COALESCE(a.available, TRUE)
		 ORDER BY m.category_id, m.name`,
		brand, outletID,
	)
	if err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}

	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MenuItem, error) {
		return scanMenuItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect menu items: %w", err)
	}
	return res, nil
}

// GetMenuItem возвращает позицию меню и признак её доступности в точке.
func (r *PostgresRepository) GetMenuItem(ctx context.Context, id, outletID int64) (*model.MenuItem, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+menuItemColumns+`,
		        COALESCE((SELECT available FROM menu_availability WHERE menu_item_id = $1 AND outlet_id = $2), TRUE)
		 FROM menu_items WHERE id = $1`,
		id, outletID,
	)

	var available bool
	m, err := scanMenuItem(row, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("get menu item: %w", err)
	}
	return &m, available && m.Active, nil
}

// CreateMenuItem добавляет позицию меню.
func (r *PostgresRepository) CreateMenuItem(ctx context.Context, m model.MenuItem) (int64, error) {
	variations, err := json.Marshal(nonNil(m.Variations))
	if err != nil {
		return 0, fmt.Errorf("encode variations: %w", err)
	}
	addOns, err := json.Marshal(nonNil(m.AddOns))
	if err != nil {
		return 0, fmt.Errorf("encode add-ons: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO menu_items (brand, category_id, name, description, price, is_veg, variations, add_ons, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		m.Brand, m.CategoryID, m.Name, m.Description, m.Price, m.IsVeg, variations, addOns, m.Active,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert menu item: %w", err)
	}
	return id, nil
}

// SetMenuAvailability отмечает доступность позиции меню в точке.
func (r *PostgresRepository) SetMenuAvailability(ctx context.Context, outletID, menuItemID int64, available bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO menu_availability (outlet_id, menu_item_id, available)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (outlet_id, menu_item_id) DO UPDATE SET available = EXCLUDED.available`,
		outletID, menuItemID, available,
	)
	if err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
