package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/cart"
)

// GetCart возвращает корзину пользователя; отсутствующая корзина пуста.
func (r *PostgresRepository) GetCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	var (
		c        cart.Cart
		outletID *int64
		lines    []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT outlet_id, brand, lines, coupon_code FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&outletID, &c.Brand, &lines, &c.CouponCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &cart.Cart{}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if outletID != nil {
		c.OutletID = *outletID
	}
	if err := json.Unmarshal(lines, &c.Lines); err != nil {
		return nil, fmt.Errorf("decode cart lines: %w", err)
	}
	return &c, nil
}

// SaveCart сохраняет корзину пользователя целиком.
func (r *PostgresRepository) SaveCart(ctx context.Context, userID int64, c *cart.Cart) error {
	lines, err := json.Marshal(nonNil(c.Lines))
	if err != nil {
		return fmt.Errorf("encode cart lines: %w", err)
	}

	var outletID *int64
	if c.OutletID != 0 {
		outletID = &c.OutletID
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO carts (user_id, outlet_id, brand, lines, coupon_code, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		     outlet_id = EXCLUDED.outlet_id,
		     brand = EXCLUDED.brand,
		     lines = EXCLUDED.lines,
		     coupon_code = EXCLUDED.coupon_code,
		     updated_at = NOW()`,
		userID, outletID, c.Brand, lines, c.CouponCode,
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}
