package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront/internal/service"
)

type paymentConfirmRequest struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// PlaceOrder оформляет заказ из корзины текущего пользователя.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req service.PlaceOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.PlaceOrder(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// GetOrders возвращает список заказов текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ текущего пользователя.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	o, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CancelOrder отменяет заказ, который точка ещё не приняла.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	o, err := h.service.CancelOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ConfirmPayment подтверждает онлайн-оплату заказа по подписи шлюза.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	var req paymentConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentID == "" || req.Signature == "" {
		badRequest(w)
		return
	}

	o, err := h.service.ConfirmPayment(r.Context(), userID, orderID, req.PaymentID, req.Signature)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
