package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// sharedReadTimeout bounds a coalesced read, which no longer follows the
// deadline of the caller that started it.
const sharedReadTimeout = 10 * time.Second

type CatalogService struct {
	repo   repository.ProductRepository
	gate   *auth.Gate
	logger *logrus.Logger
	sfg    singleflight.Group // coalesces identical concurrent reads
}

func NewCatalogService(repo repository.ProductRepository, gate *auth.Gate, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		gate:   gate,
		logger: logger,
	}
}

// List returns every product without image bytes.
func (s *CatalogService) List(ctx context.Context) ([]*domain.Product, error) {
	v, err := s.shared(ctx, "list", func(ctx context.Context) (interface{}, error) {
		return s.repo.ListProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	v, err := s.shared(ctx, fmt.Sprintf("product:%d", id), func(ctx context.Context) (interface{}, error) {
		return s.repo.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// shared runs fn once for all concurrent callers of key. fn gets a context
// detached from the first caller's cancellation, and every caller stops
// waiting when its own ctx is done.
func (s *CatalogService) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return fn(readCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Create adds a product. The caller in ctx must be an administrator and the
// input is fully validated before storage is touched.
func (s *CatalogService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := s.authorize(ctx, "create"); err != nil {
		return nil, err
	}
	valid, err := in.Validate(true)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{}
	valid.Apply(p)
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("create product failed")
		return nil, err
	}
	s.logger.WithContext(ctx).WithField("product_id", p.ID).Info("product created")
	return p, nil
}

// Update edits product id. Without a new upload the stored image is kept.
func (s *CatalogService) Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := s.authorize(ctx, "update"); err != nil {
		return nil, err
	}
	valid, err := in.Validate(false)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	valid.Apply(p)
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("product_id", id).Error("update product failed")
		return nil, err
	}
	s.logger.WithContext(ctx).WithField("product_id", id).Info("product updated")
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.authorize(ctx, "delete"); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.WithContext(ctx).WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *CatalogService) authorize(ctx context.Context, action string) error {
	id := auth.IdentityFrom(ctx)
	if err := s.gate.Authorize(id); err != nil {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"user_id": id.UserID,
			"action":  action,
		}).Warn("catalog change refused")
		return err
	}
	return nil
}
