// Package checkout turns cart lines into a hosted checkout session with the
// payment provider.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	DefaultShippingFeeCents = 500
	DefaultShippingName     = "Standard shipping"
	FreeShippingName        = "Free shipping"
	minDeliveryDays         = 5
	maxDeliveryDays         = 7
)

// Provider creates a hosted checkout session and returns the URL the
// visitor is redirected to.
type Provider interface {
	CreateSession(ctx context.Context, req *Request) (string, error)
}

type Config struct {
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	ShippingFeeCents int64
	ShippingName     string
}

// NewConfig derives the callback URLs from the public base URL of the shop.
// A zero shippingFeeCents means free shipping.
func NewConfig(publicURL string, countries []string, shippingFeeCents int64) Config {
	base := strings.TrimRight(publicURL, "/")
	if len(countries) == 0 {
		countries = []string{"US", "CA"}
	}
	name := DefaultShippingName
	if shippingFeeCents == 0 {
		name = FreeShippingName
	}
	return Config{
		SuccessURL:       base + "/success",
		CancelURL:        base + "/cancel",
		AllowedCountries: countries,
		ShippingFeeCents: shippingFeeCents,
		ShippingName:     name,
	}
}

type LineItem struct {
	Name       string
	Currency   string
	UnitAmount int64 // minor units
	Quantity   int64
}

type ShippingOption struct {
	DisplayName     string
	Amount          int64
	Currency        string
	MinBusinessDays int64
	MaxBusinessDays int64
}

type Request struct {
	LineItems        []LineItem
	Shipping         ShippingOption
	AllowedCountries []string
	SuccessURL       string
	CancelURL        string
}

// BuildCheckoutRequest maps each cart line to one line item priced in minor
// units. An empty cart fails with domain.ErrEmptyCart.
func BuildCheckoutRequest(lines []domain.CartLine, cfg Config) (*Request, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		amount, err := domain.MinorUnits(l.Product.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", l.Product.ID, err)
		}
		items = append(items, LineItem{
			Name:       l.Product.Title,
			Currency:   domain.Currency,
			UnitAmount: amount,
			Quantity:   int64(l.Quantity),
		})
	}

	name := cfg.ShippingName
	if name == "" {
		name = DefaultShippingName
	}
	return &Request{
		LineItems: items,
		Shipping: ShippingOption{
			DisplayName:     name,
			Amount:          cfg.ShippingFeeCents,
			Currency:        domain.Currency,
			MinBusinessDays: minDeliveryDays,
			MaxBusinessDays: maxDeliveryDays,
		},
		AllowedCountries: append([]string(nil), cfg.AllowedCountries...),
		SuccessURL:       cfg.SuccessURL,
		CancelURL:        cfg.CancelURL,
	}, nil
}
