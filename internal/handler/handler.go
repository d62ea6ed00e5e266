// Package handler содержит HTTP-обработчики API витрины.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/pricing"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password, phone string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	AddAddress(ctx context.Context, userID int64, a model.Address) (*model.Address, error)
	ListAddresses(ctx context.Context, userID int64) ([]model.Address, error)

	ListCities(ctx context.Context) ([]model.City, error)
	ListOutlets(ctx context.Context, brand string, cityID int64) ([]model.Outlet, error)
	ListCategories(ctx context.Context, brand string) ([]model.Category, error)
	ListMenu(ctx context.Context, outletID int64) ([]model.MenuItem, error)
	AddReview(ctx context.Context, userID, orderID int64, rating int, comment string) (*model.Review, error)
	ListReviews(ctx context.Context, outletID int64) ([]model.Review, error)

	GetCart(ctx context.Context, userID int64) (*service.Quote, error)
	AddToCart(ctx context.Context, userID int64, req service.AddToCartRequest) (*service.Quote, error)
	UpdateCartLine(ctx context.Context, userID int64, key string, qty int) (*service.Quote, error)
	RemoveCartLine(ctx context.Context, userID int64, key string) (*service.Quote, error)
	ClearCart(ctx context.Context, userID int64) (*service.Quote, error)
	ApplyCoupon(ctx context.Context, userID int64, code string) (*service.Quote, error)
	RemoveCoupon(ctx context.Context, userID int64) (*service.Quote, error)

	PlaceOrder(ctx context.Context, userID int64, req service.PlaceOrderRequest) (*model.Order, error)
	ConfirmPayment(ctx context.Context, userID, orderID int64, paymentID, signature string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)

	GetOrdersByOutlet(ctx context.Context, staffID, outletID int64, statuses []model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, staffID, orderID int64, to model.OrderStatus) (*model.Order, error)
	SubscribeOutletOrders(ctx context.Context, staffID, outletID int64) (<-chan events.OrderEvent, func(), error)
	SetMenuAvailability(ctx context.Context, staffID, outletID, menuItemID int64, available bool) error

	RiderLink(ctx context.Context, staffID, orderID int64) (string, error)
	RiderOrder(ctx context.Context, token string) (*model.Order, error)
	RiderPickup(ctx context.Context, token string) (*model.Order, error)
	RiderDeliver(ctx context.Context, token string) (*model.Order, error)

	GetSettings(ctx context.Context, adminID int64) (model.GlobalSettings, error)
	UpdateSettings(ctx context.Context, adminID int64, settings model.GlobalSettings) error
	CreateCoupon(ctx context.Context, adminID int64, c model.Coupon) (*model.Coupon, error)
	ListCoupons(ctx context.Context, adminID int64, brand string) ([]model.Coupon, error)
	SetCouponActive(ctx context.Context, adminID, couponID int64, active bool) error
	CreateCity(ctx context.Context, adminID int64, name string) (*model.City, error)
	CreateOutlet(ctx context.Context, adminID int64, o model.Outlet) (*model.Outlet, error)
	CreateCategory(ctx context.Context, adminID int64, c model.Category) (*model.Category, error)
	CreateMenuItem(ctx context.Context, adminID int64, m model.MenuItem) (*model.MenuItem, error)
	CreateStaff(ctx context.Context, adminID int64, login, password string, role model.Role, outletID *int64) (int64, error)
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP-статус. Неизвестные ошибки
// пишутся в лог и отдаются как 500 без подробностей.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, pricing.ErrCouponNotFound),
		errors.Is(err, service.ErrInvalidRiderLink):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, pricing.ErrBelowMinimum),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrOutletClosed),
		errors.Is(err, service.ErrNotReviewable),
		errors.Is(err, payment.ErrInvalidSignature):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, repository.ErrStatusConflict),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, service.ErrCouponRemoved),
		errors.Is(err, cart.ErrOutletMismatch),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrCouponExists),
		errors.Is(err, repository.ErrReviewExists):
		status = http.StatusConflict
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: http.StatusText(http.StatusBadRequest)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return userID, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w)
		return 0, false
	}
	return id, true
}
