package handler

import (
	"net/http"

	"github.com/mmeshcher/storefront/internal/model"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type profileResponse struct {
	ID            int64      `json:"id"`
	Login         string     `json:"login"`
	Role          model.Role `json:"role"`
	OutletID      *int64     `json:"outlet_id,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	LoyaltyPoints int64      `json:"loyalty_points"`
}

// Register обрабатывает регистрацию нового покупателя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Login == "" || req.Password == "" {
		badRequest(w)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password, req.Phone)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Login == "" || req.Password == "" {
		badRequest(w)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Logout удаляет cookie авторизации.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// Profile возвращает профиль текущего пользователя вместе с баллами лояльности.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:            u.ID,
		Login:         u.Login,
		Role:          u.Role,
		OutletID:      u.OutletID,
		Phone:         u.Phone,
		LoyaltyPoints: u.LoyaltyPoints,
	})
}

// AddAddress сохраняет адрес доставки текущего пользователя.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.Address
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.service.AddAddress(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// ListAddresses возвращает адреса текущего пользователя.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	addresses, err := h.service.ListAddresses(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if len(addresses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}
