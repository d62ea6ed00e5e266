package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/validation"
)

// GetSettings возвращает глобальные настройки расчёта.
func (s *Service) GetSettings(ctx context.Context, adminID int64) (model.GlobalSettings, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return model.GlobalSettings{}, err
	}
	return s.repo.GetSettings(ctx)
}

// UpdateSettings сохраняет глобальные настройки расчёта.
func (s *Service) UpdateSettings(ctx context.Context, adminID int64, settings model.GlobalSettings) error {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return err
	}

	if settings.TaxPercent.Valid && !validation.IsValidPercent(settings.TaxPercent.Decimal) {
		return fmt.Errorf("%w: tax percent", ErrInvalidInput)
	}
	for name, v := range map[string]decimal.NullDecimal{
		"delivery fee":            settings.DeliveryFee,
		"free delivery threshold": settings.FreeDeliveryThreshold,
		"loyalty ratio":           settings.LoyaltyRatio,
	} {
		if v.Valid && !validation.IsValidAmount(v.Decimal) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, name)
		}
	}

	return s.repo.UpdateSettings(ctx, settings)
}

// CreateCoupon создаёт купон бренда.
func (s *Service) CreateCoupon(ctx context.Context, adminID int64, c model.Coupon) (*model.Coupon, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}

	if !validation.IsValidCouponCode(c.Code) {
		return nil, fmt.Errorf("%w: coupon code", ErrInvalidInput)
	}
	if !c.DiscountValue.IsPositive() || !validation.IsValidAmount(c.DiscountValue) {
		return nil, fmt.Errorf("%w: discount value", ErrInvalidInput)
	}
	switch c.DiscountType {
	case model.DiscountPercentage:
		if !validation.IsValidPercent(c.DiscountValue) {
			return nil, fmt.Errorf("%w: percentage above 100", ErrInvalidInput)
		}
	case model.DiscountFixed:
	default:
		return nil, fmt.Errorf("%w: discount type %q", ErrInvalidInput, c.DiscountType)
	}
	if !validation.IsValidAmount(c.MinOrderAmount) {
		return nil, fmt.Errorf("%w: minimum order amount", ErrInvalidInput)
	}

	c.Code = model.NormalizeCouponCode(c.Code)
	c.Brand = s.brandOrDefault(c.Brand)

	id, err := s.repo.CreateCoupon(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// ListCoupons возвращает купоны бренда.
func (s *Service) ListCoupons(ctx context.Context, adminID int64, brand string) ([]model.Coupon, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}
	return s.repo.ListCoupons(ctx, s.brandOrDefault(brand))
}

// SetCouponActive включает или выключает купон.
func (s *Service) SetCouponActive(ctx context.Context, adminID, couponID int64, active bool) error {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return err
	}
	return s.repo.SetCouponActive(ctx, couponID, active)
}

// CreateCity добавляет город.
func (s *Service) CreateCity(ctx context.Context, adminID int64, name string) (*model.City, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: city name", ErrInvalidInput)
	}

	id, err := s.repo.CreateCity(ctx, name)
	if err != nil {
		return nil, err
	}
	return &model.City{ID: id, Name: name}, nil
}

// CreateOutlet добавляет точку.
func (s *Service) CreateOutlet(ctx context.Context, adminID int64, o model.Outlet) (*model.Outlet, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}
	if o.Name == "" || o.CityID <= 0 {
		return nil, fmt.Errorf("%w: outlet name and city are required", ErrInvalidInput)
	}
	o.Brand = s.brandOrDefault(o.Brand)

	id, err := s.repo.CreateOutlet(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id
	return &o, nil
}

// CreateCategory добавляет категорию меню.
func (s *Service) CreateCategory(ctx context.Context, adminID int64, c model.Category) (*model.Category, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: category name", ErrInvalidInput)
	}
	c.Brand = s.brandOrDefault(c.Brand)

	id, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// CreateMenuItem добавляет позицию меню. Цены проверяются здесь, расчёт
// стоимости корзины считает их корректными.
func (s *Service) CreateMenuItem(ctx context.Context, adminID int64, m model.MenuItem) (*model.MenuItem, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return nil, err
	}
	if m.Name == "" || m.CategoryID <= 0 {
		return nil, fmt.Errorf("%w: menu item name and category are required", ErrInvalidInput)
	}
	if !validation.IsValidAmount(m.Price) {
		return nil, fmt.Errorf("%w: price", ErrInvalidInput)
	}
	for _, v := range m.Variations {
		if v.Name == "" || v.Name == model.BaseVariation || !validation.IsValidAmount(v.Price) {
			return nil, fmt.Errorf("%w: variation %q", ErrInvalidInput, v.Name)
		}
	}
	for _, a := range m.AddOns {
		if a.Name == "" || !validation.IsValidAmount(a.Price) {
			return nil, fmt.Errorf("%w: add-on %q", ErrInvalidInput, a.Name)
		}
	}
	m.Brand = s.brandOrDefault(m.Brand)

	id, err := s.repo.CreateMenuItem(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return &m, nil
}

// SetMenuAvailability отмечает доступность позиции в точке.
func (s *Service) SetMenuAvailability(ctx context.Context, staffID, outletID, menuItemID int64, available bool) error {
	if _, err := s.requireOutletAccess(ctx, staffID, outletID); err != nil {
		return err
	}
	return s.repo.SetMenuAvailability(ctx, outletID, menuItemID, available)
}
