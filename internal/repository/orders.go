package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

const orderColumns = `id, user_id, outlet_id, brand, lines, subtotal, tax, delivery_fee, discount, total,
	loyalty_points, coupon_code, address, payment_method, payment_status, payment_order_id, status,
	created_at, updated_at`

func scanOrder(row pgx.CollectableRow) (model.Order, error) {
	var (
		o                            model.Order
		lines, address               []byte
		method, paymentStatus, state string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.OutletID, &o.Brand, &lines,
		&o.Totals.Subtotal, &o.Totals.Tax, &o.Totals.DeliveryFee, &o.Totals.Discount, &o.Totals.Total,
		&o.Totals.LoyaltyPoints, &o.CouponCode, &address, &method, &paymentStatus, &o.PaymentOrderID, &state,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return o, fmt.Errorf("decode order lines: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return o, fmt.Errorf("decode order address: %w", err)
	}
	o.PaymentMethod = model.PaymentMethod(method)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.Status = model.OrderStatus(state)
	return o, nil
}

// CreateOrder сохраняет заказ, начисляет пользователю баллы лояльности и
// очищает его корзину в одной транзакции. Если корзины уже нет, возвращается
// ErrCartNotFound.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	lines, err := json.Marshal(nonNil(o.Lines))
	if err != nil {
		return nil, fmt.Errorf("encode order lines: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return nil, fmt.Errorf("encode order address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Удаление корзины берёт блокировку строки: параллельное оформление той же
	// корзины дождётся коммита и не найдёт её.
	tag, err := tx.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, o.UserID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCartNotFound
	}

	rows, err := tx.Query(ctx,
		`INSERT INTO orders (user_id, outlet_id, brand, lines, subtotal, tax, delivery_fee, discount, total,
		                     loyalty_points, coupon_code, address, payment_method, payment_status, payment_order_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING `+orderColumns,
		o.UserID, o.OutletID, o.Brand, lines,
		o.Totals.Subtotal, o.Totals.Tax, o.Totals.DeliveryFee, o.Totals.Discount, o.Totals.Total,
		o.Totals.LoyaltyPoints, o.CouponCode, address,
		string(o.PaymentMethod), string(o.PaymentStatus), o.PaymentOrderID, string(o.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if o.Totals.LoyaltyPoints > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE users SET loyalty_points = loyalty_points + $2 WHERE id = $1`,
			o.UserID, o.Totals.LoyaltyPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("credit loyalty points: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &created, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("collect order: %w", err)
	}
	return &o, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	res, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("collect orders: %w", err)
	}
	return res, nil
}

// GetOrdersByOutlet возвращает заказы точки; пустой список статусов означает все статусы.
func (r *PostgresRepository) GetOrdersByOutlet(ctx context.Context, outletID int64, statuses []model.OrderStatus) ([]model.Order, error) {
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE outlet_id = $1 AND (cardinality($2::TEXT[]) = 0 OR status = ANY($2))
		 ORDER BY created_at DESC`,
		outletID, filter,
	)
	if err != nil {
		return nil, fmt.Errorf("select outlet orders: %w", err)
	}

	res, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("collect outlet orders: %w", err)
	}
	return res, nil
}

// UpdateOrderStatus переводит заказ из статуса from в статус to. Если
// текущий статус уже не равен from, возвращается ErrStatusConflict.
// Для оплаты при получении завершение заказа отмечает его оплаченным,
// отмена списывает начисленные за заказ баллы.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`UPDATE orders
		 SET status = $3,
		     payment_status = CASE
		         WHEN $3 = 'COMPLETED' AND payment_method = 'COD' THEN 'PAID'
		         ELSE payment_status
		     END,
		     updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns,
		id, string(from), string(to),
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if to == model.OrderStatusCancelled && o.Totals.LoyaltyPoints > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE users SET loyalty_points = GREATEST(loyalty_points - $2, 0) WHERE id = $1`,
			o.UserID, o.Totals.LoyaltyPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("reverse loyalty points: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &o, nil
}

// UpdatePaymentStatus обновляет статус оплаты заказа.
func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) (*model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		id, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return &o, nil
}
