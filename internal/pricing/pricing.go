// Package pricing рассчитывает стоимость заказа, проверяет купоны и
// начисляет баллы лояльности. Функции пакета не выполняют ввода-вывода.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// Значения настроек по умолчанию.
var (
	DefaultTaxPercent            = decimal.NewFromInt(18)
	DefaultDeliveryFee           = decimal.NewFromInt(40)
	DefaultFreeDeliveryThreshold = decimal.NewFromInt(500)
	DefaultLoyaltyRatio          = decimal.NewFromInt(1)
)

var (
	// ErrCouponNotFound возвращается, если активного купона бренда с таким кодом нет.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrBelowMinimum возвращается, если сумма корзины меньше минимальной суммы купона.
	ErrBelowMinimum = errors.New("order below coupon minimum")
)

var hundred = decimal.NewFromInt(100)

// BelowMinimumError уточняет ErrBelowMinimum недостающей суммой.
type BelowMinimumError struct {
	Code      string
	Shortfall decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("add %s more to use coupon %s", e.Shortfall.StringFixed(2), e.Code)
}

// Is позволяет сопоставлять ошибку с ErrBelowMinimum через errors.Is.
func (e *BelowMinimumError) Is(target error) bool {
	return target == ErrBelowMinimum
}

type resolvedSettings struct {
	taxPercent  decimal.Decimal
	deliveryFee decimal.Decimal
	threshold   decimal.Decimal
	loyalty     decimal.Decimal
}

func resolve(s model.GlobalSettings) resolvedSettings {
	pick := func(v decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
		if v.Valid {
			return v.Decimal
		}
		return def
	}
	return resolvedSettings{
		taxPercent:  pick(s.TaxPercent, DefaultTaxPercent),
		deliveryFee: pick(s.DeliveryFee, DefaultDeliveryFee),
		threshold:   pick(s.FreeDeliveryThreshold, DefaultFreeDeliveryThreshold),
		loyalty:     pick(s.LoyaltyRatio, DefaultLoyaltyRatio),
	}
}

// Subtotal возвращает сумму строк корзины без налога, доставки и скидки.
func Subtotal(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ComputeTotals рассчитывает итоговые суммы заказа. Пустая корзина даёт
// нулевые суммы. Купон, минимальная сумма которого не достигнута,
// игнорируется. Итог округляется до целой денежной единицы и не бывает
// отрицательным.
func ComputeTotals(lines []model.CartLine, settings model.GlobalSettings, coupon *model.Coupon) model.OrderTotals {
	if len(lines) == 0 {
		return model.OrderTotals{
			Subtotal:    decimal.Zero,
			Tax:         decimal.Zero,
			DeliveryFee: decimal.Zero,
			Discount:    decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	cfg := resolve(settings)
	subtotal := Subtotal(lines)

	deliveryFee := cfg.deliveryFee
	if subtotal.GreaterThanOrEqual(cfg.threshold) {
		deliveryFee = decimal.Zero
	}

	// Налог начисляется только на товары, без доставки.
	tax := subtotal.Mul(cfg.taxPercent).Div(hundred)

	discount := Discount(coupon, subtotal)

	gross := subtotal.Add(tax).Add(deliveryFee)
	if discount.GreaterThan(gross) {
		discount = gross
	}

	total := gross.Sub(discount).Round(0)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return model.OrderTotals{
		Subtotal:      subtotal,
		Tax:           tax,
		DeliveryFee:   deliveryFee,
		Discount:      discount,
		Total:         total,
		LoyaltyPoints: LoyaltyPoints(subtotal, cfg.loyalty),
	}
}

// Discount возвращает скидку купона для указанной суммы корзины или ноль,
// если купона нет или минимальная сумма не достигнута.
func Discount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || subtotal.LessThan(coupon.MinOrderAmount) {
		return decimal.Zero
	}

	switch coupon.DiscountType {
	case model.DiscountPercentage:
		return subtotal.Mul(coupon.DiscountValue).Div(hundred)
	case model.DiscountFixed:
		return coupon.DiscountValue
	default:
		return decimal.Zero
	}
}

// LoyaltyPoints возвращает floor(subtotal / 100 * ratio).
func LoyaltyPoints(subtotal, ratio decimal.Decimal) int64 {
	points := subtotal.Div(hundred).Mul(ratio).Floor()
	if points.IsNegative() {
		return 0
	}
	return points.IntPart()
}

// ValidateCoupon ищет активный купон бренда по коду без учёта регистра и
// проверяет минимальную сумму заказа. Купон возвращается без изменений.
func ValidateCoupon(code string, subtotal decimal.Decimal, brand string, available []model.Coupon) (model.Coupon, error) {
	c, ok := FindCoupon(code, brand, available)
	if !ok {
		return model.Coupon{}, ErrCouponNotFound
	}

	if subtotal.LessThan(c.MinOrderAmount) {
		return model.Coupon{}, &BelowMinimumError{
			Code:      c.Code,
			Shortfall: c.MinOrderAmount.Sub(subtotal),
		}
	}
	return c, nil
}

// FindCoupon ищет активный купон бренда по коду без учёта регистра.
func FindCoupon(code, brand string, available []model.Coupon) (model.Coupon, bool) {
	normalized := model.NormalizeCouponCode(code)
	for _, c := range available {
		if c.Active && c.Brand == brand && model.NormalizeCouponCode(c.Code) == normalized {
			return c, true
		}
	}
	return model.Coupon{}, false
}

// ReevaluateAppliedCoupon повторно проверяет применённый купон после
// изменения суммы корзины. Возвращает nil, если минимальная сумма больше
// не достигнута.
func ReevaluateAppliedCoupon(applied *model.Coupon, subtotal decimal.Decimal) *model.Coupon {
	if applied == nil || subtotal.LessThan(applied.MinOrderAmount) {
		return nil
	}
	return applied
}
