package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront/internal/model"
)

func pizzaLine(qty int, addOns ...string) model.CartLine {
	return model.CartLine{
		MenuItemID: 7,
		Name:       "Margherita",
		Variation:  "Large",
		AddOns:     addOns,
		UnitPrice:  decimal.NewFromInt(300),
		Quantity:   qty,
	}
}

func TestAdd_SameCombinationIncrementsQuantity(t *testing.T) {
	var c Cart

	require.NoError(t, c.Add(1, "pizza", pizzaLine(1, "olives", "cheese")))
	require.NoError(t, c.Add(1, "pizza", pizzaLine(2, "cheese", "olives")))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, []string{"cheese", "olives"}, c.Lines[0].AddOns)
}

func TestAdd_DifferentAddOnsCreateNewLine(t *testing.T) {
	var c Cart

	require.NoError(t, c.Add(1, "pizza", pizzaLine(1, "olives")))
	require.NoError(t, c.Add(1, "pizza", pizzaLine(1)))

	assert.Len(t, c.Lines, 2)
}

func TestAdd_EmptyVariationIsBase(t *testing.T) {
	var c Cart
	l := pizzaLine(1)
	l.Variation = ""

	require.NoError(t, c.Add(1, "pizza", l))
	assert.Equal(t, model.BaseVariation, c.Lines[0].Variation)
	assert.Equal(t, LineKey(7, model.BaseVariation, nil), Key(c.Lines[0]))
}

func TestAdd_Rejections(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(1, "pizza", pizzaLine(1)))

	assert.ErrorIs(t, c.Add(2, "pizza", pizzaLine(1)), ErrOutletMismatch)
	assert.ErrorIs(t, c.Add(1, "pizza", pizzaLine(0)), ErrInvalidQuantity)
}

func TestSetQuantity(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(1, "pizza", pizzaLine(1)))
	key := Key(c.Lines[0])

	require.NoError(t, c.SetQuantity(key, 4))
	l, ok := c.Find(key)
	require.True(t, ok)
	assert.Equal(t, 4, l.Quantity)
	assert.True(t, decimal.NewFromInt(1200).Equal(c.Subtotal()))

	require.NoError(t, c.SetQuantity(key, 0))
	assert.True(t, c.Empty())
	assert.Zero(t, c.OutletID)

	assert.ErrorIs(t, c.SetQuantity(key, 1), ErrLineNotFound)
	assert.ErrorIs(t, c.SetQuantity(key, -1), ErrInvalidQuantity)
}

func TestRemoveAndClear(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(1, "pizza", pizzaLine(1)))
	require.NoError(t, c.Add(1, "pizza", pizzaLine(1, "olives")))
	c.CouponCode = "SAVE10"

	require.NoError(t, c.Remove(Key(c.Lines[0])))
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, "SAVE10", c.CouponCode)

	c.Clear()
	assert.True(t, c.Empty())
	assert.Empty(t, c.CouponCode)
	assert.ErrorIs(t, c.Remove("missing"), ErrLineNotFound)
}

func TestUnitPrice(t *testing.T) {
	item := model.MenuItem{
		Price: decimal.NewFromInt(200),
		Variations: []model.Variation{
			{Name: "Large", Price: decimal.NewFromInt(350)},
		},
		AddOns: []model.AddOn{
			{Name: "cheese", Price: decimal.NewFromInt(40)},
			{Name: "olives", Price: decimal.NewFromInt(25)},
		},
	}

	price, ok := UnitPrice(item, model.BaseVariation, nil)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(200).Equal(price))

	price, ok = UnitPrice(item, "Large", []string{"cheese", "olives"})
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(415).Equal(price))

	_, ok = UnitPrice(item, "Medium", nil)
	assert.False(t, ok)

	_, ok = UnitPrice(item, "", []string{"pineapple"})
	assert.False(t, ok)
}
