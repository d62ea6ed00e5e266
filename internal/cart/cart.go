// Package cart содержит состояние корзины покупателя.
package cart

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/pricing"
)

var (
	// ErrOutletMismatch возвращается при добавлении позиции другой точки в непустую корзину.
	ErrOutletMismatch = errors.New("cart belongs to another outlet")
	// ErrInvalidQuantity возвращается при неположительном количестве.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrLineNotFound возвращается, если строки с таким ключом нет в корзине.
	ErrLineNotFound = errors.New("cart line not found")
)

// Cart хранит корзину пользователя, привязанную к одной точке.
type Cart struct {
	OutletID   int64            `json:"outlet_id,omitempty"`
	Brand      string           `json:"brand,omitempty"`
	Lines      []model.CartLine `json:"lines"`
	CouponCode string           `json:"coupon_code,omitempty"`
}

// LineKey возвращает ключ идентичности строки: позиция, вариант и
// отсортированный список добавок.
func LineKey(menuItemID int64, variation string, addOns []string) string {
	if variation == "" {
		variation = model.BaseVariation
	}
	sorted := append([]string(nil), addOns...)
	sort.Strings(sorted)

	return strconv.FormatInt(menuItemID, 10) + "|" + variation + "|" + strings.Join(sorted, ",")
}

// Key возвращает ключ строки корзины.
func Key(l model.CartLine) string {
	return LineKey(l.MenuItemID, l.Variation, l.AddOns)
}

// Empty сообщает, пуста ли корзина.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Add добавляет строку. Если строка с тем же ключом уже есть, увеличивает её количество.
func (c *Cart) Add(outletID int64, brand string, l model.CartLine) error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !c.Empty() && c.OutletID != outletID {
		return ErrOutletMismatch
	}

	if l.Variation == "" {
		l.Variation = model.BaseVariation
	}
	l.AddOns = append([]string(nil), l.AddOns...)
	sort.Strings(l.AddOns)

	c.OutletID = outletID
	c.Brand = brand

	key := Key(l)
	for i := range c.Lines {
		if Key(c.Lines[i]) == key {
			c.Lines[i].Quantity += l.Quantity
			return nil
		}
	}

	c.Lines = append(c.Lines, l)
	return nil
}

// Find возвращает строку корзины по ключу.
func (c *Cart) Find(key string) (model.CartLine, bool) {
	for _, l := range c.Lines {
		if Key(l) == key {
			return l, true
		}
	}
	return model.CartLine{}, false
}

// SetQuantity меняет количество строки; ноль удаляет строку.
func (c *Cart) SetQuantity(key string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return c.Remove(key)
	}

	for i := range c.Lines {
		if Key(c.Lines[i]) == key {
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove удаляет строку по ключу.
func (c *Cart) Remove(key string) error {
	for i := range c.Lines {
		if Key(c.Lines[i]) == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			if c.Empty() {
				c.Clear()
			}
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear очищает корзину целиком.
func (c *Cart) Clear() {
	c.Lines = nil
	c.OutletID = 0
	c.Brand = ""
	c.CouponCode = ""
}

// Subtotal возвращает сумму строк корзины.
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Lines)
}

// UnitPrice рассчитывает цену единицы позиции с учётом варианта и добавок.
// Неизвестный вариант или добавка дают ok == false.
func UnitPrice(item model.MenuItem, variation string, addOns []string) (price decimal.Decimal, ok bool) {
	price = item.Price
	if variation != "" && variation != model.BaseVariation {
		found := false
		for _, v := range item.Variations {
			if v.Name == variation {
				price = v.Price
				found = true
				break
			}
		}
		if !found {
			return decimal.Zero, false
		}
	}

	for _, name := range addOns {
		found := false
		for _, a := range item.AddOns {
			if a.Name == name {
				price = price.Add(a.Price)
				found = true
				break
			}
		}
		if !found {
			return decimal.Zero, false
		}
	}

	return price, true
}
