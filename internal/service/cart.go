package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/pricing"
)

// Quote содержит корзину с рассчитанными суммами.
type Quote struct {
	Cart   *cart.Cart        `json:"cart"`
	Coupon *model.Coupon     `json:"coupon,omitempty"`
	Totals model.OrderTotals `json:"totals"`
	// CouponRemoved выставляется, когда применённый купон был снят из-за
	// изменения корзины.
	CouponRemoved bool `json:"coupon_removed,omitempty"`
}

// AddToCartRequest описывает добавление позиции в корзину.
type AddToCartRequest struct {
	OutletID   int64    `json:"outlet_id"`
	MenuItemID int64    `json:"menu_item_id"`
	Variation  string   `json:"variation"`
	AddOns     []string `json:"add_ons"`
	Quantity   int      `json:"quantity"`
}

// GetCart возвращает корзину пользователя с актуальным расчётом.
func (s *Service) GetCart(ctx context.Context, userID int64) (*Quote, error) {
	return s.mutateCart(ctx, userID, func(*cart.Cart) error { return nil })
}

// AddToCart добавляет позицию в корзину. Цена единицы фиксируется в момент добавления.
func (s *Service) AddToCart(ctx context.Context, userID int64, req AddToCartRequest) (*Quote, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	outlet, err := s.repo.GetOutlet(ctx, req.OutletID)
	if err != nil {
		return nil, err
	}
	if !outlet.IsOpen {
		return nil, ErrOutletClosed
	}

	item, available, err := s.repo.GetMenuItem(ctx, req.MenuItemID, req.OutletID)
	if err != nil {
		return nil, err
	}
	if !available || item.Brand != outlet.Brand {
		return nil, ErrItemUnavailable
	}

	price, ok := cart.UnitPrice(*item, req.Variation, req.AddOns)
	if !ok {
		return nil, fmt.Errorf("%w: unknown variation or add-on", ErrInvalidInput)
	}

	line := model.CartLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Variation:  req.Variation,
		AddOns:     req.AddOns,
		UnitPrice:  price,
		Quantity:   req.Quantity,
	}

	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		return c.Add(outlet.ID, outlet.Brand, line)
	})
}

// UpdateCartLine меняет количество строки корзины; ноль удаляет строку.
func (s *Service) UpdateCartLine(ctx context.Context, userID int64, key string, qty int) (*Quote, error) {
	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		return c.SetQuantity(key, qty)
	})
}

// RemoveCartLine удаляет строку корзины.
func (s *Service) RemoveCartLine(ctx context.Context, userID int64, key string) (*Quote, error) {
	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		return c.Remove(key)
	})
}

// ClearCart очищает корзину.
func (s *Service) ClearCart(ctx context.Context, userID int64) (*Quote, error) {
	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// ApplyCoupon проверяет купон по текущей сумме корзины и применяет его.
func (s *Service) ApplyCoupon(ctx context.Context, userID int64, code string) (*Quote, error) {
	code = model.NormalizeCouponCode(code)
	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		if c.Empty() {
			return ErrEmptyCart
		}

		available, err := s.repo.FindCouponsByCode(ctx, code)
		if err != nil {
			return err
		}

		coupon, err := pricing.ValidateCoupon(code, c.Subtotal(), c.Brand, available)
		if err != nil {
			return err
		}

		c.CouponCode = coupon.Code
		return nil
	})
}

// RemoveCoupon снимает применённый купон.
func (s *Service) RemoveCoupon(ctx context.Context, userID int64) (*Quote, error) {
	return s.mutateCart(ctx, userID, func(c *cart.Cart) error {
		c.CouponCode = ""
		return nil
	})
}

// mutateCart загружает корзину, применяет изменение, повторно проверяет
// купон и сохраняет корзину, если она изменилась.
func (s *Service) mutateCart(ctx context.Context, userID int64, fn func(c *cart.Cart) error) (*Quote, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := fingerprint(c)
	if err := fn(c); err != nil {
		return nil, err
	}

	q, err := s.quote(ctx, c)
	if err != nil {
		return nil, err
	}

	if fingerprint(c) != before {
		if err := s.repo.SaveCart(ctx, userID, c); err != nil {
			return nil, err
		}
	}

	return q, nil
}

// quote рассчитывает суммы корзины. Купон, который перестал действовать,
// снимается с корзины.
func (s *Service) quote(ctx context.Context, c *cart.Cart) (*Quote, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	q := &Quote{Cart: c}

	if c.CouponCode != "" {
		available, err := s.repo.FindCouponsByCode(ctx, c.CouponCode)
		if err != nil {
			return nil, err
		}

		var applied *model.Coupon
		if found, ok := pricing.FindCoupon(c.CouponCode, c.Brand, available); ok {
			applied = &found
		}

		q.Coupon = pricing.ReevaluateAppliedCoupon(applied, c.Subtotal())
		if q.Coupon == nil {
			c.CouponCode = ""
			q.CouponRemoved = true
		}
	}

	q.Totals = pricing.ComputeTotals(c.Lines, settings, q.Coupon)
	return q, nil
}

func fingerprint(c *cart.Cart) string {
	key := fmt.Sprintf("%d|%s|%s", c.OutletID, c.Brand, c.CouponCode)
	for _, l := range c.Lines {
		key += ";" + cart.Key(l) + "x" + fmt.Sprint(l.Quantity)
	}
	return key
}
