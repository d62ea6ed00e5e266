// Package model содержит доменные сущности сервиса витрины доставки еды.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleOutlet    Role = "outlet"
	RoleFranchise Role = "franchise"
)

// User представляет зарегистрированного пользователя витрины.
type User struct {
	ID            int64
	Login         string
	PasswordHash  []byte
	Role          Role
	OutletID      *int64
	Phone         string
	LoyaltyPoints int64
	CreatedAt     time.Time
}

// Address описывает адрес доставки пользователя.
type Address struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"-"`
	Label   string `json:"label"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// City описывает город, в котором работают точки.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Outlet описывает точку продаж (ресторан) одного из брендов.
type Outlet struct {
	ID      int64  `json:"id"`
	CityID  int64  `json:"city_id"`
	Brand   string `json:"brand"`
	Name    string `json:"name"`
	Address string `json:"address"`
	IsOpen  bool   `json:"is_open"`
}

// Category группирует позиции меню бренда.
type Category struct {
	ID        int64  `json:"id"`
	Brand     string `json:"brand"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Variation описывает вариант позиции меню со своей ценой (например, размер).
type Variation struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddOn описывает платную добавку к позиции меню.
type AddOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItem описывает позицию меню.
type MenuItem struct {
	ID          int64           `json:"id"`
	Brand       string          `json:"brand"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsVeg       bool            `json:"is_veg"`
	Variations  []Variation     `json:"variations,omitempty"`
	AddOns      []AddOn         `json:"add_ons,omitempty"`
	Active      bool            `json:"active"`
}

// Review содержит отзыв о точке по выполненному заказу.
type Review struct {
	ID        int64     `json:"id"`
	OutletID  int64     `json:"outlet_id"`
	UserID    int64     `json:"user_id"`
	OrderID   int64     `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
