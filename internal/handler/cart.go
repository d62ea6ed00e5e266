package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront/internal/service"
)

type cartLineRequest struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

// GetCart возвращает корзину текущего пользователя с расчётом сумм.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.GetCart(r.Context(), userID)
	})
}

// AddToCart добавляет позицию меню в корзину.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req service.AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.AddToCart(r.Context(), userID, req)
	})
}

// UpdateCartLine меняет количество строки корзины; ноль удаляет строку.
func (h *Handler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req cartLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		badRequest(w)
		return
	}

	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.UpdateCartLine(r.Context(), userID, req.Key, req.Quantity)
	})
}

// RemoveCartLine удаляет строку корзины (?key=).
func (h *Handler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		badRequest(w)
		return
	}

	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.RemoveCartLine(r.Context(), userID, key)
	})
}

// ClearCart очищает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.ClearCart(r.Context(), userID)
	})
}

// ApplyCoupon применяет купон к корзине.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		badRequest(w)
		return
	}

	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.ApplyCoupon(r.Context(), userID, req.Code)
	})
}

// RemoveCoupon снимает купон с корзины.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.writeQuote(w, r, func() (*service.Quote, error) {
		return h.service.RemoveCoupon(r.Context(), userID)
	})
}

func (h *Handler) writeQuote(w http.ResponseWriter, r *http.Request, fn func() (*service.Quote, error)) {
	q, err := fn()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
