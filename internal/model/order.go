package model

import "time"

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusNew            OrderStatus = "NEW"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:            {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusCompleted},
}

// Valid сообщает, является ли значение известным статусом.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusOutForDelivery,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода из s в next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod задаёт способ оплаты заказа.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// PaymentStatus задаёт статус оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Order хранит снимок корзины, рассчитанные суммы и данные доставки.
type Order struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	OutletID       int64         `json:"outlet_id"`
	Brand          string        `json:"brand"`
	Lines          []CartLine    `json:"lines"`
	Totals         OrderTotals   `json:"totals"`
	CouponCode     string        `json:"coupon_code,omitempty"`
	Address        Address       `json:"address"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	PaymentOrderID string        `json:"payment_order_id,omitempty"`
	Status         OrderStatus   `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
