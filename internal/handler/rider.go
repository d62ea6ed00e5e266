package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

// RiderOrder показывает курьеру заказ по ссылке.
func (h *Handler) RiderOrder(w http.ResponseWriter, r *http.Request) {
	h.riderAction(w, r, h.service.RiderOrder)
}

// RiderPickup отмечает, что курьер забрал заказ.
func (h *Handler) RiderPickup(w http.ResponseWriter, r *http.Request) {
	h.riderAction(w, r, h.service.RiderPickup)
}

// RiderDeliver отмечает доставку заказа.
func (h *Handler) RiderDeliver(w http.ResponseWriter, r *http.Request) {
	h.riderAction(w, r, h.service.RiderDeliver)
}

func (h *Handler) riderAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, token string) (*model.Order, error)) {
	o, err := action(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
