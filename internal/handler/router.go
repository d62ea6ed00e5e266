package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/storefront/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.Register)
		r.Post("/user/login", h.Login)
		r.Post("/user/logout", h.Logout)

		r.Get("/cities", h.ListCities)
		r.Get("/categories", h.ListCategories)
		r.Get("/outlets", h.ListOutlets)
		r.Get("/outlets/{outletID}/menu", h.ListMenu)
		r.Get("/outlets/{outletID}/reviews", h.ListReviews)

		r.Route("/rider/{token}", func(r chi.Router) {
			r.Get("/", h.RiderOrder)
			r.Post("/pickup", h.RiderPickup)
			r.Post("/deliver", h.RiderDeliver)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/user/profile", h.Profile)
			r.Get("/user/addresses", h.ListAddresses)
			r.Post("/user/addresses", h.AddAddress)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/lines", h.AddToCart)
				r.Put("/lines", h.UpdateCartLine)
				r.Delete("/lines", h.RemoveCartLine)
				r.Post("/coupon", h.ApplyCoupon)
				r.Delete("/coupon", h.RemoveCoupon)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.PlaceOrder)
				r.Get("/", h.GetOrders)
				r.Get("/{orderID}", h.GetOrder)
				r.Post("/{orderID}/cancel", h.CancelOrder)
				r.Post("/{orderID}/payment", h.ConfirmPayment)
				r.Post("/{orderID}/review", h.AddReview)
			})

			r.Route("/outlet", func(r chi.Router) {
				r.Get("/{outletID}/orders", h.OutletOrders)
				r.Get("/{outletID}/orders/stream", h.StreamOrders)
				r.Put("/{outletID}/menu/{itemID}/availability", h.SetMenuAvailability)
				r.Patch("/orders/{orderID}/status", h.UpdateOrderStatus)
				r.Post("/orders/{orderID}/rider-link", h.RiderLink)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/settings", h.GetSettings)
				r.Put("/settings", h.UpdateSettings)
				r.Get("/coupons", h.ListCoupons)
				r.Post("/coupons", h.CreateCoupon)
				r.Patch("/coupons/{couponID}", h.SetCouponActive)
				r.Post("/cities", h.CreateCity)
				r.Post("/outlets", h.CreateOutlet)
				r.Post("/categories", h.CreateCategory)
				r.Post("/menu-items", h.CreateMenuItem)
				r.Post("/staff", h.CreateStaff)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
