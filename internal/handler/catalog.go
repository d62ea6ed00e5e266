package handler

import (
	"net/http"
	"strconv"
)

// ListCities возвращает список городов.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

// ListOutlets возвращает точки бренда, при необходимости в одном городе
// (?brand=, ?city_id=).
func (h *Handler) ListOutlets(w http.ResponseWriter, r *http.Request) {
	var cityID int64
	if raw := r.URL.Query().Get("city_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			badRequest(w)
			return
		}
		cityID = id
	}

	outlets, err := h.service.ListOutlets(r.Context(), r.URL.Query().Get("brand"), cityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outlets)
}

// ListCategories возвращает категории меню бренда (?brand=).
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), r.URL.Query().Get("brand"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// ListMenu возвращает меню точки с учётом доступности позиций.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	outletID, ok := pathID(w, r, "outletID")
	if !ok {
		return
	}

	items, err := h.service.ListMenu(r.Context(), outletID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListReviews возвращает отзывы о точке.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	outletID, ok := pathID(w, r, "outletID")
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), outletID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview сохраняет отзыв покупателя по выполненному заказу.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rv, err := h.service.AddReview(r.Context(), userID, orderID, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}
