// Package service реализует бизнес-логику витрины доставки еды.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/validation"
)

var (
	// ErrInvalidCredentials возвращается при неверном логине или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden возвращается, если у пользователя нет прав на операцию.
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidInput возвращается при некорректных входных данных.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart возвращается при операции, требующей непустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrItemUnavailable возвращается, если позиция недоступна в точке.
	ErrItemUnavailable = errors.New("menu item unavailable")
	// ErrOutletClosed возвращается, если точка не принимает заказы.
	ErrOutletClosed = errors.New("outlet is closed")
	// ErrInvalidTransition возвращается при недопустимой смене статуса заказа.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrCouponRemoved возвращается при оформлении, если применённый купон перестал действовать.
	ErrCouponRemoved = errors.New("applied coupon no longer valid")
	// ErrNotReviewable возвращается при попытке оставить отзыв на невыполненный заказ.
	ErrNotReviewable = errors.New("order cannot be reviewed")
	// ErrInvalidRiderLink возвращается при неверной ссылке курьера.
	ErrInvalidRiderLink = errors.New("invalid rider link")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, u model.User) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	AddAddress(ctx context.Context, a model.Address) (int64, error)
	ListAddresses(ctx context.Context, userID int64) ([]model.Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*model.Address, error)

	ListCities(ctx context.Context) ([]model.City, error)
	CreateCity(ctx context.Context, name string) (int64, error)
	ListOutlets(ctx context.Context, brand string, cityID int64) ([]model.Outlet, error)
	GetOutlet(ctx context.Context, id int64) (*model.Outlet, error)
	CreateOutlet(ctx context.Context, o model.Outlet) (int64, error)
	ListCategories(ctx context.Context, brand string) ([]model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (int64, error)
	ListMenuItems(ctx context.Context, brand string, outletID int64) ([]model.MenuItem, error)
	GetMenuItem(ctx context.Context, id, outletID int64) (*model.MenuItem, bool, error)
	CreateMenuItem(ctx context.Context, m model.MenuItem) (int64, error)
	SetMenuAvailability(ctx context.Context, outletID, menuItemID int64, available bool) error

	FindCouponsByCode(ctx context.Context, code string) ([]model.Coupon, error)
	ListCoupons(ctx context.Context, brand string) ([]model.Coupon, error)
	CreateCoupon(ctx context.Context, c model.Coupon) (int64, error)
	SetCouponActive(ctx context.Context, id int64, active bool) error

	GetSettings(ctx context.Context) (model.GlobalSettings, error)
	UpdateSettings(ctx context.Context, s model.GlobalSettings) error

	GetCart(ctx context.Context, userID int64) (*cart.Cart, error)
	SaveCart(ctx context.Context, userID int64, c *cart.Cart) error

	CreateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrdersByOutlet(ctx context.Context, outletID int64, statuses []model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) (*model.Order, error)

	CreateReview(ctx context.Context, rv model.Review) (int64, error)
	ListReviews(ctx context.Context, outletID int64) ([]model.Review, error)
}

// PaymentGateway создаёт платёжные заказы и проверяет подписи платежей.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

// EventBus рассылает события заказов подписчикам.
type EventBus interface {
	Publish(ev events.OrderEvent)
	Subscribe(outletID int64) (<-chan events.OrderEvent, func())
}

// LinkSigner подписывает и проверяет значения ссылок курьера.
type LinkSigner interface {
	Sign(value string) string
	Verify(token string) (string, bool)
}

// Service содержит бизнес-логику витрины.
type Service struct {
	repo     Repository
	payments PaymentGateway
	bus      EventBus
	signer   LinkSigner
	brand    string
}

// NewService создаёт новый сервис. brand задаёт бренд витрины по умолчанию.
func NewService(repo Repository, payments PaymentGateway, bus EventBus, signer LinkSigner, brand string) *Service {
	return &Service{
		repo:     repo,
		payments: payments,
		bus:      bus,
		signer:   signer,
		brand:    brand,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Brand возвращает бренд витрины по умолчанию.
func (s *Service) Brand() string {
	return s.brand
}

func (s *Service) brandOrDefault(brand string) string {
	if brand == "" {
		return s.brand
	}
	return brand
}

// RegisterUser регистрирует нового покупателя. Телефон необязателен.
func (s *Service) RegisterUser(ctx context.Context, login, password, phone string) (int64, error) {
	if phone != "" && !validation.IsValidPhone(phone) {
		return 0, fmt.Errorf("%w: invalid phone", ErrInvalidInput)
	}
	return s.repo.CreateUser(ctx, model.User{
		Login:        login,
		PasswordHash: hashPassword(login, password),
		Role:         model.RoleCustomer,
		Phone:        phone,
	})
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	if subtle.ConstantTimeCompare(hashPassword(login, password), u.PasswordHash) != 1 {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

// GetProfile возвращает профиль пользователя.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// CreateStaff создаёт сотрудника точки или администратора франшизы.
func (s *Service) CreateStaff(ctx context.Context, adminID int64, login, password string, role model.Role, outletID *int64) (int64, error) {
	if _, err := s.requireRole(ctx, adminID, model.RoleFranchise); err != nil {
		return 0, err
	}

	switch role {
	case model.RoleOutlet:
		if outletID == nil {
			return 0, fmt.Errorf("%w: outlet staff requires outlet", ErrInvalidInput)
		}
		if _, err := s.repo.GetOutlet(ctx, *outletID); err != nil {
			return 0, err
		}
	case model.RoleFranchise:
		outletID = nil
	default:
		return 0, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, role)
	}

	return s.repo.CreateUser(ctx, model.User{
		Login:        login,
		PasswordHash: hashPassword(login, password),
		Role:         role,
		OutletID:     outletID,
	})
}

// EnsureFranchiseAdmin создаёт администратора франшизы, если его ещё нет.
func (s *Service) EnsureFranchiseAdmin(ctx context.Context, login, password string) error {
	_, err := s.repo.CreateUser(ctx, model.User{
		Login:        login,
		PasswordHash: hashPassword(login, password),
		Role:         model.RoleFranchise,
	})
	if err != nil && !errors.Is(err, repository.ErrUserExists) {
		return err
	}
	return nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

func (s *Service) requireRole(ctx context.Context, userID int64, roles ...model.Role) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, ErrForbidden
}

// requireOutletAccess разрешает доступ администратору франшизы и
// сотрудникам указанной точки.
func (s *Service) requireOutletAccess(ctx context.Context, userID, outletID int64) (*model.User, error) {
	u, err := s.requireRole(ctx, userID, model.RoleFranchise, model.RoleOutlet)
	if err != nil {
		return nil, err
	}
	if u.Role == model.RoleOutlet && (u.OutletID == nil || *u.OutletID != outletID) {
		return nil, ErrForbidden
	}
	return u, nil
}
