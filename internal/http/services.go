package http

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CatalogService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type CartService interface {
	View(ctx context.Context, sid string) (domain.CartView, error)
	Add(ctx context.Context, sid string, productID int64) (int, error)
	Remove(ctx context.Context, sid string, productID int64) (int, error)
}

type CheckoutService interface {
	Initiate(ctx context.Context, sid string) (string, error)
	Complete(ctx context.Context, sid string) (domain.CartView, error)
}

type UserService interface {
	Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}
