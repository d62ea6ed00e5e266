package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BaseVariation обозначает позицию без выбранного варианта.
const BaseVariation = "base"

// CartLine описывает строку корзины. Идентичность строки задаётся ключом Key.
type CartLine struct {
	MenuItemID int64           `json:"menu_item_id"`
	Name       string          `json:"name"`
	Variation  string          `json:"variation"`
	AddOns     []string        `json:"add_ons,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// DiscountType описывает тип скидки купона.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Coupon описывает промокод бренда.
type Coupon struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	Brand          string          `json:"brand"`
	Active         bool            `json:"active"`
	Description    string          `json:"description,omitempty"`
}

// NormalizeCouponCode приводит код купона к каноническому виду.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GlobalSettings содержит глобальные настройки расчёта заказа. Незаданные поля
// заменяются значениями по умолчанию при расчёте.
type GlobalSettings struct {
	TaxPercent            decimal.NullDecimal `json:"tax_percent"`
	DeliveryFee           decimal.NullDecimal `json:"delivery_fee"`
	FreeDeliveryThreshold decimal.NullDecimal `json:"free_delivery_threshold"`
	LoyaltyRatio          decimal.NullDecimal `json:"loyalty_ratio"`
}

// OrderTotals содержит результат расчёта стоимости заказа.
type OrderTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	LoyaltyPoints int64           `json:"loyalty_points"`
}
