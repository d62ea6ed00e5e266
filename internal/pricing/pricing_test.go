package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront/internal/model"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func line(price int64, qty int) model.CartLine {
	return model.CartLine{MenuItemID: 1, Variation: model.BaseVariation, UnitPrice: dec(price), Quantity: qty}
}

func settings(tax, fee, threshold, ratio int64) model.GlobalSettings {
	return model.GlobalSettings{
		TaxPercent:            decimal.NewNullDecimal(dec(tax)),
		DeliveryFee:           decimal.NewNullDecimal(dec(fee)),
		FreeDeliveryThreshold: decimal.NewNullDecimal(dec(threshold)),
		LoyaltyRatio:          decimal.NewNullDecimal(dec(ratio)),
	}
}

func TestComputeTotals_Scenarios(t *testing.T) {
	percent10 := &model.Coupon{
		Code:           "SAVE10",
		DiscountType:   model.DiscountPercentage,
		DiscountValue:  dec(10),
		MinOrderAmount: dec(300),
		Active:         true,
	}

	tests := []struct {
		name   string
		lines  []model.CartLine
		coupon *model.Coupon
		want   model.OrderTotals
	}{
		{
			name:  "below free delivery threshold",
			lines: []model.CartLine{line(200, 2)},
			want: model.OrderTotals{
				Subtotal:      dec(400),
				Tax:           dec(72),
				DeliveryFee:   dec(40),
				Discount:      dec(0),
				Total:         dec(512),
				LoyaltyPoints: 4,
			},
		},
		{
			name:   "free delivery with percentage coupon",
			lines:  []model.CartLine{line(150, 4)},
			coupon: percent10,
			want: model.OrderTotals{
				Subtotal:      dec(600),
				Tax:           dec(108),
				DeliveryFee:   dec(0),
				Discount:      dec(60),
				Total:         dec(648),
				LoyaltyPoints: 6,
			},
		},
		{
			name:   "coupon below minimum is ignored",
			lines:  []model.CartLine{line(100, 2)},
			coupon: percent10,
			want: model.OrderTotals{
				Subtotal:      dec(200),
				Tax:           dec(36),
				DeliveryFee:   dec(40),
				Discount:      dec(0),
				Total:         dec(276),
				LoyaltyPoints: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, settings(18, 40, 500, 1), tt.coupon)

			assert.True(t, tt.want.Subtotal.Equal(got.Subtotal), "subtotal = %s", got.Subtotal)
			assert.True(t, tt.want.Tax.Equal(got.Tax), "tax = %s", got.Tax)
			assert.True(t, tt.want.DeliveryFee.Equal(got.DeliveryFee), "delivery = %s", got.DeliveryFee)
			assert.True(t, tt.want.Discount.Equal(got.Discount), "discount = %s", got.Discount)
			assert.True(t, tt.want.Total.Equal(got.Total), "total = %s", got.Total)
			assert.Equal(t, tt.want.LoyaltyPoints, got.LoyaltyPoints)
		})
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	got := ComputeTotals(nil, model.GlobalSettings{}, nil)

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.DeliveryFee.IsZero())
	assert.True(t, got.Total.IsZero())
	assert.Zero(t, got.LoyaltyPoints)
}

func TestComputeTotals_DefaultsWhenSettingsAbsent(t *testing.T) {
	got := ComputeTotals([]model.CartLine{line(400, 1)}, model.GlobalSettings{}, nil)

	assert.True(t, dec(72).Equal(got.Tax), "tax = %s", got.Tax)
	assert.True(t, dec(40).Equal(got.DeliveryFee), "delivery = %s", got.DeliveryFee)
	assert.True(t, dec(512).Equal(got.Total), "total = %s", got.Total)
	assert.Equal(t, int64(4), got.LoyaltyPoints)
}

func TestComputeTotals_DeliveryThreshold(t *testing.T) {
	cfg := settings(18, 40, 500, 1)

	atThreshold := ComputeTotals([]model.CartLine{line(500, 1)}, cfg, nil)
	assert.True(t, atThreshold.DeliveryFee.IsZero())

	below := ComputeTotals([]model.CartLine{line(499, 1)}, cfg, nil)
	assert.True(t, dec(40).Equal(below.DeliveryFee))
}

func TestComputeTotals_FixedDiscountClampsToZero(t *testing.T) {
	huge := &model.Coupon{
		Code:           "FREE",
		DiscountType:   model.DiscountFixed,
		DiscountValue:  dec(10000),
		MinOrderAmount: dec(0),
		Active:         true,
	}

	got := ComputeTotals([]model.CartLine{line(100, 1)}, settings(18, 40, 500, 1), huge)

	assert.True(t, got.Total.IsZero(), "total = %s", got.Total)
	assert.False(t, got.Total.IsNegative())
	assert.True(t, dec(158).Equal(got.Discount), "discount capped at gross, got %s", got.Discount)
}

func TestComputeTotals_TotalNeverNegative(t *testing.T) {
	cfg := settings(5, 30, 250, 2)
	for _, value := range []int64{0, 10, 50, 99, 100, 1000} {
		for _, price := range []int64{0, 1, 99, 250, 999} {
			c := &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: dec(value)}
			got := ComputeTotals([]model.CartLine{line(price, 1)}, cfg, c)
			require.False(t, got.Total.IsNegative(), "price %d coupon %d gave %s", price, value, got.Total)

			p := &model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: dec(value)}
			got = ComputeTotals([]model.CartLine{line(price, 1)}, cfg, p)
			require.False(t, got.Total.IsNegative(), "price %d coupon %d%% gave %s", price, value, got.Total)
		}
	}
}

func TestComputeTotals_RoundsToWholeUnit(t *testing.T) {
	l := model.CartLine{UnitPrice: decimal.RequireFromString("99.50"), Quantity: 1}

	got := ComputeTotals([]model.CartLine{l}, settings(5, 0, 500, 1), nil)

	// 99.50 + 4.975 = 104.475
	assert.True(t, dec(104).Equal(got.Total), "total = %s", got.Total)
}

func TestDiscount(t *testing.T) {
	fixed := &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: dec(75)}
	percent := &model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: dec(15)}

	for _, s := range []int64{100, 500, 2000} {
		assert.True(t, dec(75).Equal(Discount(fixed, dec(s))))
		assert.True(t, dec(s*15/100).Equal(Discount(percent, dec(s))))
	}
	assert.True(t, Discount(nil, dec(100)).IsZero())
}

func TestLoyaltyPoints(t *testing.T) {
	assert.Equal(t, int64(10), LoyaltyPoints(dec(1000), dec(1)))
	assert.Equal(t, int64(9), LoyaltyPoints(decimal.RequireFromString("999.99"), dec(1)))
	assert.Equal(t, int64(30), LoyaltyPoints(dec(1000), dec(3)))
	assert.Equal(t, int64(0), LoyaltyPoints(dec(99), dec(1)))
}

func TestValidateCoupon(t *testing.T) {
	coupons := []model.Coupon{
		{ID: 1, Code: "SAVE10", Brand: "pizza", Active: true, DiscountType: model.DiscountPercentage, DiscountValue: dec(10), MinOrderAmount: dec(300)},
		{ID: 2, Code: "OLD", Brand: "pizza", Active: false, DiscountType: model.DiscountFixed, DiscountValue: dec(50)},
		{ID: 3, Code: "BURGER50", Brand: "burger", Active: true, DiscountType: model.DiscountFixed, DiscountValue: dec(50)},
	}

	t.Run("case insensitive match", func(t *testing.T) {
		c, err := ValidateCoupon("save10", dec(400), "pizza", coupons)
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
		assert.Equal(t, coupons[0], c)
	})

	t.Run("inactive coupon", func(t *testing.T) {
		_, err := ValidateCoupon("OLD", dec(400), "pizza", coupons)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("other brand", func(t *testing.T) {
		_, err := ValidateCoupon("BURGER50", dec(400), "pizza", coupons)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("below minimum reports shortfall", func(t *testing.T) {
		_, err := ValidateCoupon("SAVE10", dec(250), "pizza", coupons)
		require.ErrorIs(t, err, ErrBelowMinimum)

		var bm *BelowMinimumError
		require.True(t, errors.As(err, &bm))
		assert.True(t, dec(50).Equal(bm.Shortfall), "shortfall = %s", bm.Shortfall)
		assert.Contains(t, err.Error(), "50.00")
	})
}

func TestReevaluateAppliedCoupon(t *testing.T) {
	c := &model.Coupon{Code: "SAVE10", MinOrderAmount: dec(300)}

	assert.Nil(t, ReevaluateAppliedCoupon(c, dec(299)))
	assert.Nil(t, ReevaluateAppliedCoupon(nil, dec(1000)))

	first := ReevaluateAppliedCoupon(c, dec(300))
	second := ReevaluateAppliedCoupon(first, dec(300))
	assert.Same(t, c, first)
	assert.Same(t, c, second)
}
