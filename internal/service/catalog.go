package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/validation"
)

// AddAddress сохраняет адрес доставки пользователя.
func (s *Service) AddAddress(ctx context.Context, userID int64, a model.Address) (*model.Address, error) {
	if a.Line1 == "" || a.City == "" {
		return nil, fmt.Errorf("%w: address line and city are required", ErrInvalidInput)
	}
	if !validation.IsValidPincode(a.Pincode) {
		return nil, fmt.Errorf("%w: invalid pincode", ErrInvalidInput)
	}
	if !validation.IsValidPhone(a.Phone) {
		return nil, fmt.Errorf("%w: invalid phone", ErrInvalidInput)
	}

	a.UserID = userID
	id, err := s.repo.AddAddress(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

// ListAddresses возвращает адреса пользователя.
func (s *Service) ListAddresses(ctx context.Context, userID int64) ([]model.Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

// ListCities возвращает список городов.
func (s *Service) ListCities(ctx context.Context) ([]model.City, error) {
	return s.repo.ListCities(ctx)
}

// ListOutlets возвращает точки бренда в городе; пустой бренд означает бренд витрины.
func (s *Service) ListOutlets(ctx context.Context, brand string, cityID int64) ([]model.Outlet, error) {
	return s.repo.ListOutlets(ctx, s.brandOrDefault(brand), cityID)
}

// ListCategories возвращает категории меню бренда.
func (s *Service) ListCategories(ctx context.Context, brand string) ([]model.Category, error) {
	return s.repo.ListCategories(ctx, s.brandOrDefault(brand))
}

// ListMenu возвращает позиции меню, доступные в точке.
func (s *Service) ListMenu(ctx context.Context, outletID int64) ([]model.MenuItem, error) {
	outlet, err := s.repo.GetOutlet(ctx, outletID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMenuItems(ctx, outlet.Brand, outlet.ID)
}

// AddReview сохраняет отзыв покупателя по выполненному заказу.
func (s *Service) AddReview(ctx context.Context, userID, orderID int64, rating int, comment string) (*model.Review, error) {
	if !validation.IsValidRating(rating) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	o, err := s.ownOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusCompleted {
		return nil, ErrNotReviewable
	}

	rv := model.Review{
		OutletID: o.OutletID,
		UserID:   userID,
		OrderID:  o.ID,
		Rating:   rating,
		Comment:  comment,
	}
	id, err := s.repo.CreateReview(ctx, rv)
	if err != nil {
		return nil, err
	}
	rv.ID = id
	return &rv, nil
}

// ListReviews возвращает отзывы о точке.
func (s *Service) ListReviews(ctx context.Context, outletID int64) ([]model.Review, error) {
	return s.repo.ListReviews(ctx, outletID)
}
