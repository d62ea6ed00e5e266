package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
)

const streamHeartbeat = 15 * time.Second

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

type riderLinkResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// OutletOrders возвращает заказы точки (?status=NEW,PREPARING).
func (h *Handler) OutletOrders(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}
	outletID, ok := pathID(w, r, "outletID")
	if !ok {
		return
	}

	var statuses []model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, model.OrderStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	orders, err := h.service.GetOrdersByOutlet(r.Context(), staffID, outletID, statuses)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus меняет статус заказа по действию сотрудника точки.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.UpdateOrderStatus(r.Context(), staffID, orderID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// RiderLink выдаёт ссылку курьера для заказа.
func (h *Handler) RiderLink(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	token, err := h.service.RiderLink(r.Context(), staffID, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, riderLinkResponse{
		Token: token,
		URL:   "/api/rider/" + token,
	})
}

// SetMenuAvailability включает или скрывает позицию меню в точке.
func (h *Handler) SetMenuAvailability(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}
	outletID, ok := pathID(w, r, "outletID")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetMenuAvailability(r.Context(), staffID, outletID, itemID, req.Available); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamOrders отдаёт события заказов точки как Server-Sent Events до
// отключения клиента.
func (h *Handler) StreamOrders(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}
	outletID, ok := pathID(w, r, "outletID")
	if !ok {
		return
	}

	ch, unsubscribe, err := h.service.SubscribeOutletOrders(r.Context(), staffID, outletID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer unsubscribe()

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("stream flush unsupported", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Order)
			if err != nil {
				h.logger.Error("encode order event", zap.Error(err), zap.Int64("order", ev.Order.ID))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
