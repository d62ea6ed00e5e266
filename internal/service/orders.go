package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/repository"
)

const riderLinkPrefix = "rider:"

// PlaceOrderRequest описывает оформление заказа из корзины.
type PlaceOrderRequest struct {
	AddressID     int64               `json:"address_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

// PlaceOrder оформляет заказ из корзины пользователя. Для онлайн-оплаты
// создаётся платёжный заказ в шлюзе, заказ с нулевой суммой сразу считается
// оплаченным. Баллы лояльности начисляются вместе
// с созданием заказа, корзина очищается.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*model.Order, error) {
	if req.PaymentMethod != model.PaymentCOD && req.PaymentMethod != model.PaymentOnline {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, req.PaymentMethod)
	}

	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	address, err := s.repo.GetAddress(ctx, userID, req.AddressID)
	if err != nil {
		return nil, err
	}

	outlet, err := s.repo.GetOutlet(ctx, c.OutletID)
	if err != nil {
		return nil, err
	}
	if !outlet.IsOpen {
		return nil, ErrOutletClosed
	}

	q, err := s.quote(ctx, c)
	if err != nil {
		return nil, err
	}
	if q.CouponRemoved {
		if err := s.repo.SaveCart(ctx, userID, c); err != nil {
			return nil, err
		}
		return nil, ErrCouponRemoved
	}

	order := model.Order{
		UserID:        userID,
		OutletID:      outlet.ID,
		Brand:         outlet.Brand,
		Lines:         c.Lines,
		Totals:        q.Totals,
		CouponCode:    c.CouponCode,
		Address:       *address,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusNew,
	}

	switch {
	case req.PaymentMethod == model.PaymentOnline && !q.Totals.Total.IsPositive():
		// Скидка покрыла весь заказ, платить в шлюзе нечего.
		order.PaymentStatus = model.PaymentStatusPaid
	case req.PaymentMethod == model.PaymentOnline:
		pay, err := s.payments.CreateOrder(ctx, q.Totals.Total, "")
		if err != nil {
			return nil, fmt.Errorf("create payment order: %w", err)
		}
		order.PaymentOrderID = pay.ID
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	s.publish(events.OrderCreated, created)
	return created, nil
}

// ConfirmPayment проверяет подпись платежа и отмечает заказ оплаченным.
func (s *Service) ConfirmPayment(ctx context.Context, userID, orderID int64, paymentID, signature string) (*model.Order, error) {
	o, err := s.ownOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != model.PaymentOnline {
		return nil, fmt.Errorf("%w: order is not paid online", ErrInvalidInput)
	}
	if o.PaymentStatus == model.PaymentStatusPaid {
		return o, nil
	}
	if o.Status == model.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidTransition)
	}

	if err := s.payments.VerifySignature(o.PaymentOrderID, paymentID, signature); err != nil {
		if _, uerr := s.repo.UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusFailed); uerr != nil {
			return nil, uerr
		}
		return nil, err
	}

	paid, err := s.repo.UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}

	s.publish(events.OrderPaid, paid)
	return paid, nil
}

// GetOrdersByUser возвращает список заказов пользователя.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// GetOrder возвращает заказ пользователя.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return s.ownOrder(ctx, userID, orderID)
}

// CancelOrder отменяет заказ покупателем, пока точка его не приняла.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	o, err := s.ownOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusNew {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, o, model.OrderStatusCancelled)
}

// GetOrdersByOutlet возвращает заказы точки для её сотрудников.
func (s *Service) GetOrdersByOutlet(ctx context.Context, staffID, outletID int64, statuses []model.OrderStatus) ([]model.Order, error) {
	if _, err := s.requireOutletAccess(ctx, staffID, outletID); err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	return s.repo.GetOrdersByOutlet(ctx, outletID, statuses)
}

// UpdateOrderStatus переводит заказ точки в новый статус по действию сотрудника.
func (s *Service) UpdateOrderStatus(ctx context.Context, staffID, orderID int64, to model.OrderStatus) (*model.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOutletAccess(ctx, staffID, o.OutletID); err != nil {
		return nil, err
	}

	return s.transition(ctx, o, to)
}

// SubscribeOutletOrders подписывает сотрудника на события заказов точки.
func (s *Service) SubscribeOutletOrders(ctx context.Context, staffID, outletID int64) (<-chan events.OrderEvent, func(), error) {
	if _, err := s.requireOutletAccess(ctx, staffID, outletID); err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := s.bus.Subscribe(outletID)
	return ch, unsubscribe, nil
}

// RiderLink выдаёт подписанный токен ссылки курьера для заказа.
func (s *Service) RiderLink(ctx context.Context, staffID, orderID int64) (string, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if _, err := s.requireOutletAccess(ctx, staffID, o.OutletID); err != nil {
		return "", err
	}
	if o.Status.Terminal() {
		return "", ErrInvalidTransition
	}
	return s.signer.Sign(riderLinkPrefix + strconv.FormatInt(o.ID, 10)), nil
}

// RiderOrder возвращает заказ по ссылке курьера.
func (s *Service) RiderOrder(ctx context.Context, token string) (*model.Order, error) {
	id, err := s.riderOrderID(token)
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, id)
}

// RiderPickup отмечает, что курьер забрал заказ.
func (s *Service) RiderPickup(ctx context.Context, token string) (*model.Order, error) {
	return s.riderTransition(ctx, token, model.OrderStatusPreparing, model.OrderStatusOutForDelivery)
}

// RiderDeliver отмечает, что заказ доставлен.
func (s *Service) RiderDeliver(ctx context.Context, token string) (*model.Order, error) {
	return s.riderTransition(ctx, token, model.OrderStatusOutForDelivery, model.OrderStatusCompleted)
}

func (s *Service) riderTransition(ctx context.Context, token string, from, to model.OrderStatus) (*model.Order, error) {
	o, err := s.RiderOrder(ctx, token)
	if err != nil {
		return nil, err
	}
	if o.Status != from {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, o, to)
}

func (s *Service) riderOrderID(token string) (int64, error) {
	value, ok := s.signer.Verify(token)
	if !ok || !strings.HasPrefix(value, riderLinkPrefix) {
		return 0, ErrInvalidRiderLink
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(value, riderLinkPrefix), 10, 64)
	if err != nil {
		return 0, ErrInvalidRiderLink
	}
	return id, nil
}

// transition применяет переход статуса с проверкой текущего статуса в хранилище.
func (s *Service) transition(ctx context.Context, o *model.Order, to model.OrderStatus) (*model.Order, error) {
	if !o.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return nil, err
	}

	s.publish(events.OrderStatusChanged, updated)
	return updated, nil
}

func (s *Service) ownOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (s *Service) publish(kind events.Kind, o *model.Order) {
	if s.bus == nil || o == nil {
		return
	}
	s.bus.Publish(events.OrderEvent{Kind: kind, Order: *o})
}
