package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus"
)

type CartService struct {
	store    session.CartStore
	products repository.ProductRepository
	logger   *logrus.Logger
}

func NewCartService(store session.CartStore, products repository.ProductRepository, logger *logrus.Logger) *CartService {
	return &CartService{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// View prices the cart of session sid against the current catalog. Ids no
// longer in the catalog are reported in Skipped.
func (s *CartService) View(ctx context.Context, sid string) (domain.CartView, error) {
	c, err := s.store.Get(ctx, sid)
	if err != nil {
		return domain.CartView{}, err
	}
	if len(c) == 0 {
		return cart.View(c, cart.SnapshotLookup(nil)), nil
	}

	products, err := s.products.GetProductsByIDs(ctx, cart.DistinctIDs(c))
	if err != nil {
		return domain.CartView{}, err
	}
	view := cart.View(c, cart.SnapshotLookup(products))
	if len(view.Skipped) > 0 {
		s.logger.WithContext(ctx).WithField("product_ids", view.Skipped).Warn("cart references unknown products")
	}
	return view, nil
}

// Add puts one unit of productID in the cart and returns the new unit count.
func (s *CartService) Add(ctx context.Context, sid string, productID int64) (int, error) {
	c, err := s.store.Get(ctx, sid)
	if err != nil {
		return 0, err
	}
	c = cart.AddUnit(c, productID)
	if err := s.store.Set(ctx, sid, c, true); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("store cart failed")
		return 0, err
	}
	return cart.Count(c), nil
}

// Remove takes one unit of productID out of the cart. It fails with
// domain.ErrNotFoundInCart when there is none.
func (s *CartService) Remove(ctx context.Context, sid string, productID int64) (int, error) {
	c, err := s.store.Get(ctx, sid)
	if err != nil {
		return 0, err
	}
	c, err = cart.RemoveUnit(c, productID)
	if err != nil {
		return 0, err
	}
	if err := s.store.Set(ctx, sid, c, true); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("store cart failed")
		return 0, err
	}
	return cart.Count(c), nil
}

func (s *CartService) Clear(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, sid)
}
