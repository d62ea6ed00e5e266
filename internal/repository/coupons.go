package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

const couponColumns = `id, code, discount_type, discount_value, min_order_amount, brand, active, description`

func scanCoupon(row pgx.CollectableRow) (model.Coupon, error) {
	var (
		c            model.Coupon
		discountType string
	)
	err := row.Scan(&c.ID, &c.Code, &discountType, &c.DiscountValue, &c.MinOrderAmount, &c.Brand, &c.Active, &c.Description)
	c.DiscountType = model.DiscountType(discountType)
	return c, err
}

// FindCouponsByCode возвращает купоны с указанным кодом без учёта регистра.
func (r *PostgresRepository) FindCouponsByCode(ctx context.Context, code string) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = UPPER($1)`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("select coupons: %w", err)
	}

	res, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("collect coupons: %w", err)
	}
	return res, nil
}

// ListCoupons возвращает все купоны бренда.
func (r *PostgresRepository) ListCoupons(ctx context.Context, brand string) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE brand = $1 ORDER BY created_at DESC`,
		brand,
	)
	if err != nil {
		return nil, fmt.Errorf("select coupons: %w", err)
	}

	res, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("collect coupons: %w", err)
	}
	return res, nil
}

// CreateCoupon сохраняет купон. Код хранится в верхнем регистре.
func (r *PostgresRepository) CreateCoupon(ctx context.Context, c model.Coupon) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, min_order_amount, brand, active, description)
		 VALUES (UPPER($1), $2, $3, $4, $5, $6, $7) RETURNING id`,
		c.Code, string(c.DiscountType), c.DiscountValue, c.MinOrderAmount, c.Brand, c.Active, c.Description,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrCouponExists, c.Code)
		}
		return 0, fmt.Errorf("insert coupon: %w", err)
	}
	return id, nil
}

// SetCouponActive включает или выключает купон.
func (r *PostgresRepository) SetCouponActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE coupons SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
