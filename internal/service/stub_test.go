package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
)

type stubRepo struct {
	mu sync.Mutex

	users     map[int64]*model.User
	addresses map[int64]model.Address
	outlets   map[int64]model.Outlet
	items     map[int64]model.MenuItem
	hidden    map[[2]int64]bool
	coupons   []model.Coupon
	settings  model.GlobalSettings
	carts     map[int64]*cart.Cart
	orders    map[int64]*model.Order
	reviews   []model.Review

	saveCartCalls int
	nextID        int64

	// beforeCreateOrder вызывается перед сохранением заказа.
	beforeCreateOrder func()
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:     make(map[int64]*model.User),
		addresses: make(map[int64]model.Address),
		outlets:   make(map[int64]model.Outlet),
		items:     make(map[int64]model.MenuItem),
		hidden:    make(map[[2]int64]bool),
		carts:     make(map[int64]*cart.Cart),
		orders:    make(map[int64]*model.Order),
	}
}

func (s *stubRepo) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateUser(ctx context.Context, u model.User) (int64, error) {
	for _, existing := range s.users {
		if existing.Login == u.Login {
			return 0, repository.ErrUserExists
		}
	}
	u.ID = s.id()
	s.users[u.ID] = &u
	return u.ID, nil
}

func (s *stubRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	for _, u := range s.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) AddAddress(ctx context.Context, a model.Address) (int64, error) {
	a.ID = s.id()
	s.addresses[a.ID] = a
	return a.ID, nil
}

func (s *stubRepo) ListAddresses(ctx context.Context, userID int64) ([]model.Address, error) {
	var res []model.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			res = append(res, a)
		}
	}
	return res, nil
}

func (s *stubRepo) GetAddress(ctx context.Context, userID, id int64) (*model.Address, error) {
	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *stubRepo) ListCities(ctx context.Context) ([]model.City, error) { return nil, nil }

func (s *stubRepo) CreateCity(ctx context.Context, name string) (int64, error) { return s.id(), nil }

func (s *stubRepo) ListOutlets(ctx context.Context, brand string, cityID int64) ([]model.Outlet, error) {
	var res []model.Outlet
	for _, o := range s.outlets {
		if o.Brand == brand && (cityID == 0 || o.CityID == cityID) {
			res = append(res, o)
		}
	}
	return res, nil
}

func (s *stubRepo) GetOutlet(ctx context.Context, id int64) (*model.Outlet, error) {
	if o, ok := s.outlets[id]; ok {
		return &o, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) CreateOutlet(ctx context.Context, o model.Outlet) (int64, error) {
	o.ID = s.id()
	s.outlets[o.ID] = o
	return o.ID, nil
}

func (s *stubRepo) ListCategories(ctx context.Context, brand string) ([]model.Category, error) {
	return nil, nil
}

func (s *stubRepo) CreateCategory(ctx context.Context, c model.Category) (int64, error) {
	return s.id(), nil
}

func (s *stubRepo) ListMenuItems(ctx context.Context, brand string, outletID int64) ([]model.MenuItem, error) {
	var res []model.MenuItem
	for _, m := range s.items {
		if m.Brand == brand && m.Active && !s.hidden[[2]int64{outletID, m.ID}] {
			res = append(res, m)
		}
	}
	return res, nil
}

func (s *stubRepo) GetMenuItem(ctx context.Context, id, outletID int64) (*model.MenuItem, bool, error) {
	m, ok := s.items[id]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	return &m, m.Active && !s.hidden[[2]int64{outletID, id}], nil
}

func (s *stubRepo) CreateMenuItem(ctx context.Context, m model.MenuItem) (int64, error) {
	m.ID = s.id()
	s.items[m.ID] = m
	return m.ID, nil
}

func (s *stubRepo) SetMenuAvailability(ctx context.Context, outletID, menuItemID int64, available bool) error {
	s.hidden[[2]int64{outletID, menuItemID}] = !available
	return nil
}

func (s *stubRepo) FindCouponsByCode(ctx context.Context, code string) ([]model.Coupon, error) {
	var res []model.Coupon
	for _, c := range s.coupons {
		if strings.EqualFold(c.Code, code) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *stubRepo) ListCoupons(ctx context.Context, brand string) ([]model.Coupon, error) {
	var res []model.Coupon
	for _, c := range s.coupons {
		if c.Brand == brand {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *stubRepo) CreateCoupon(ctx context.Context, c model.Coupon) (int64, error) {
	for _, existing := range s.coupons {
		if existing.Code == c.Code {
			return 0, repository.ErrCouponExists
		}
	}
	c.ID = s.id()
	s.coupons = append(s.coupons, c)
	return c.ID, nil
}

func (s *stubRepo) SetCouponActive(ctx context.Context, id int64, active bool) error {
	for i := range s.coupons {
		if s.coupons[i].ID == id {
			s.coupons[i].Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubRepo) GetSettings(ctx context.Context) (model.GlobalSettings, error) {
	return s.settings, nil
}

func (s *stubRepo) UpdateSettings(ctx context.Context, settings model.GlobalSettings) error {
	s.settings = settings
	return nil
}

func (s *stubRepo) GetCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, ok := s.carts[userID]
	if !ok {
		return &cart.Cart{}, nil
	}
	cp := *c
	cp.Lines = append([]model.CartLine(nil), c.Lines...)
	return &cp, nil
}

func (s *stubRepo) SaveCart(ctx context.Context, userID int64, c *cart.Cart) error {
	s.saveCartCalls++
	cp := *c
	cp.Lines = append([]model.CartLine(nil), c.Lines...)
	s.carts[userID] = &cp
	return nil
}

func (s *stubRepo) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if s.beforeCreateOrder != nil {
		s.beforeCreateOrder()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[o.UserID]; !ok {
		return nil, repository.ErrCartNotFound
	}
	o.ID = s.id()
	s.orders[o.ID] = &o
	s.users[o.UserID].LoyaltyPoints += o.Totals.LoyaltyPoints
	delete(s.carts, o.UserID)
	cp := o
	return &cp, nil
}

func (s *stubRepo) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var res []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (s *stubRepo) GetOrdersByOutlet(ctx context.Context, outletID int64, statuses []model.OrderStatus) ([]model.Order, error) {
	var res []model.Order
	for _, o := range s.orders {
		if o.OutletID != outletID {
			continue
		}
		if len(statuses) == 0 {
			res = append(res, *o)
			continue
		}
		for _, st := range statuses {
			if o.Status == st {
				res = append(res, *o)
			}
		}
	}
	return res, nil
}

func (s *stubRepo) UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return nil, repository.ErrStatusConflict
	}
	o.Status = to
	if to == model.OrderStatusCompleted && o.PaymentMethod == model.PaymentCOD {
		o.PaymentStatus = model.PaymentStatusPaid
	}
	if to == model.OrderStatusCancelled {
		u := s.users[o.UserID]
		u.LoyaltyPoints = max(u.LoyaltyPoints-o.Totals.LoyaltyPoints, 0)
	}
	cp := *o
	return &cp, nil
}

func (s *stubRepo) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.PaymentStatus = status
	cp := *o
	return &cp, nil
}

func (s *stubRepo) CreateReview(ctx context.Context, rv model.Review) (int64, error) {
	for _, existing := range s.reviews {
		if existing.OrderID == rv.OrderID {
			return 0, repository.ErrReviewExists
		}
	}
	rv.ID = s.id()
	s.reviews = append(s.reviews, rv)
	return rv.ID, nil
}

func (s *stubRepo) ListReviews(ctx context.Context, outletID int64) ([]model.Review, error) {
	return s.reviews, nil
}

type stubPayments struct {
	created   []decimal.Decimal
	verifyErr error
}

func (p *stubPayments) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*payment.Order, error) {
	p.created = append(p.created, amount)
	return &payment.Order{ID: "order_test_1", Amount: amount.Mul(decimal.NewFromInt(100)).IntPart(), Currency: "INR"}, nil
}

func (p *stubPayments) VerifySignature(orderID, paymentID, signature string) error {
	return p.verifyErr
}

type stubSigner struct{}

func (stubSigner) Sign(value string) string {
	mac := hmac.New(sha256.New, []byte("test"))
	mac.Write([]byte(value))
	return value + "." + hex.EncodeToString(mac.Sum(nil))
}

func (s stubSigner) Verify(token string) (string, bool) {
	i := strings.LastIndex(token, ".")
	if i < 0 {
		return "", false
	}
	value := token[:i]
	if s.Sign(value) != token {
		return "", false
	}
	return value, true
}

// fixture наполняет хранилище бренда "pizza": точка, позиция меню,
// купон, покупатель с адресом, сотрудник точки и администратор.
type fixture struct {
	repo     *stubRepo
	payments *stubPayments
	hub      *events.Hub
	svc      *Service

	outletID   int64
	itemID     int64
	customerID int64
	addressID  int64
	staffID    int64
	adminID    int64
}

func newFixture() *fixture {
	repo := newStubRepo()
	f := &fixture{
		repo:     repo,
		payments: &stubPayments{},
		hub:      events.NewHub(),
	}
	f.svc = NewService(repo, f.payments, f.hub, stubSigner{}, "pizza")

	ctx := context.Background()
	f.outletID, _ = repo.CreateOutlet(ctx, model.Outlet{CityID: 1, Brand: "pizza", Name: "Koramangala", IsOpen: true})
	f.itemID, _ = repo.CreateMenuItem(ctx, model.MenuItem{
		Brand:  "pizza",
		Name:   "Margherita",
		Price:  decimal.NewFromInt(200),
		Active: true,
		Variations: []model.Variation{
			{Name: "Large", Price: decimal.NewFromInt(300)},
		},
		AddOns: []model.AddOn{
			{Name: "cheese", Price: decimal.NewFromInt(50)},
		},
	})
	repo.coupons = append(repo.coupons, model.Coupon{
		ID:             repo.id(),
		Code:           "SAVE10",
		DiscountType:   model.DiscountPercentage,
		DiscountValue:  decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewFromInt(500),
		Brand:          "pizza",
		Active:         true,
	})

	f.customerID, _ = repo.CreateUser(ctx, model.User{Login: "customer", Role: model.RoleCustomer})
	f.addressID, _ = repo.AddAddress(ctx, model.Address{
		UserID: f.customerID, Line1: "1 MG Road", City: "Bengaluru", Pincode: "560001", Phone: "9876543210",
	})

	outletID := f.outletID
	f.staffID, _ = repo.CreateUser(ctx, model.User{Login: "staff", Role: model.RoleOutlet, OutletID: &outletID})
	f.adminID, _ = repo.CreateUser(ctx, model.User{Login: "admin", Role: model.RoleFranchise})

	return f
}
