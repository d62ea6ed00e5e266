package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront/internal/model"
)

type cityRequest struct {
	Name string `json:"name"`
}

type couponStateRequest struct {
	Active bool `json:"active"`
}

type staffRequest struct {
	Login    string     `json:"login"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	OutletID *int64     `json:"outlet_id,omitempty"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

// GetSettings возвращает глобальные настройки расчёта.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(r.Context(), adminID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings сохраняет глобальные настройки расчёта. Отсутствующее
// поле означает значение по умолчанию.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.GlobalSettings
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateSettings(r.Context(), adminID, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// CreateCoupon создаёт купон.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.Coupon
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.CreateCoupon(r.Context(), adminID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListCoupons возвращает купоны бренда (?brand=).
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	coupons, err := h.service.ListCoupons(r.Context(), adminID, r.URL.Query().Get("brand"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// SetCouponActive включает или выключает купон.
func (h *Handler) SetCouponActive(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}
	couponID, ok := pathID(w, r, "couponID")
	if !ok {
		return
	}

	var req couponStateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetCouponActive(r.Context(), adminID, couponID, req.Active); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCity добавляет город.
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req cityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.CreateCity(r.Context(), adminID, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CreateOutlet добавляет точку.
func (h *Handler) CreateOutlet(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.Outlet
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.CreateOutlet(r.Context(), adminID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// CreateCategory добавляет категорию меню.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.Category
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), adminID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CreateMenuItem добавляет позицию меню.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.MenuItem
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.service.CreateMenuItem(r.Context(), adminID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// CreateStaff создаёт учётную запись сотрудника точки или администратора.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req staffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		badRequest(w)
		return
	}

	id, err := h.service.CreateStaff(r.Context(), adminID, req.Login, req.Password, req.Role, req.OutletID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}
