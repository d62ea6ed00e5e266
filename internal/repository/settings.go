package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

// GetSettings возвращает глобальные настройки. Если запись ещё не создана,
// возвращаются пустые настройки, и расчёт использует значения по умолчанию.
func (r *PostgresRepository) GetSettings(ctx context.Context) (model.GlobalSettings, error) {
	var s model.GlobalSettings
	err := r.pool.QueryRow(ctx,
		`SELECT tax_percent, delivery_fee, free_delivery_threshold, loyalty_ratio FROM settings WHERE id = 1`,
	).Scan(&s.TaxPercent, &s.DeliveryFee, &s.FreeDeliveryThreshold, &s.LoyaltyRatio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GlobalSettings{}, nil
		}
		return model.GlobalSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// UpdateSettings сохраняет глобальные настройки.
func (r *PostgresRepository) UpdateSettings(ctx context.Context, s model.GlobalSettings) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (id, tax_percent, delivery_fee, free_delivery_threshold, loyalty_ratio, updated_at)
		 VALUES (1, $1, $2, $3, $4, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		     tax_percent = EXCLUDED.tax_percent,
		     delivery_fee = EXCLUDED.delivery_fee,
		     free_delivery_threshold = EXCLUDED.free_delivery_threshold,
		     loyalty_ratio = EXCLUDED.loyalty_ratio,
		     updated_at = NOW()`,
		s.TaxPercent, s.DeliveryFee, s.FreeDeliveryThreshold, s.LoyaltyRatio,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
