package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u model.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash, role, outlet_id, phone)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Login, u.PasswordHash, string(u.Role), u.OutletID, u.Phone,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, u.Login)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

const userColumns = `id, login, password_hash, role, outlet_id, phone, loyalty_points, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &u.OutletID, &u.Phone, &u.LoyaltyPoints, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// AddAddress сохраняет адрес доставки пользователя.
func (r *PostgresRepository) AddAddress(ctx context.Context, a model.Address) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO addresses (user_id, label, line1, line2, city, pincode, phone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		a.UserID, a.Label, a.Line1, a.Line2, a.City, a.Pincode, a.Phone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	return id, nil
}

// ListAddresses возвращает адреса пользователя.
func (r *PostgresRepository) ListAddresses(ctx context.Context, userID int64) ([]model.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, label, line1, line2, city, pincode, phone
		 FROM addresses
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select addresses: %w", err)
	}
	defer rows.Close()

	var res []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.Pincode, &a.Phone); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetAddress возвращает адрес пользователя по идентификатору.
func (r *PostgresRepository) GetAddress(ctx context.Context, userID, id int64) (*model.Address, error) {
	var a model.Address
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, label, line1, line2, city, pincode, phone
		 FROM addresses
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.Pincode, &a.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}
