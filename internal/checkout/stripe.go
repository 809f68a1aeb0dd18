package checkout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const providerName = "stripe"

// NewStripeClient builds a Stripe API client. baseURL overrides the API
// endpoint and is empty in production.
func NewStripeClient(apiKey, baseURL string, timeout time.Duration) *client.API {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return client.New(apiKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

type StripeProvider struct {
	sc      *client.API
	breaker *circuitbreaker.Breaker[string]
	logger  *logrus.Logger
}

func NewStripeProvider(sc *client.API, logger *logrus.Logger) *StripeProvider {
	return &StripeProvider{
		sc: sc,
		breaker: circuitbreaker.New[string](circuitbreaker.Settings{
			Name:      "stripe-checkout",
			IsFailure: isTransient,
		}),
		logger: logger,
	}
}

// CreateSession opens a Stripe Checkout session. Every failure comes back as
// *domain.PaymentProviderError.
func (p *StripeProvider) CreateSession(ctx context.Context, req *Request) (string, error) {
	params := sessionParams(req)
	params.Context = ctx

	url, err := p.breaker.Execute(func() (string, error) {
		s, err := p.sc.CheckoutSessions.New(params)
		if err != nil {
			return "", err
		}
		return s.URL, nil
	})
	if err != nil {
		perr := &domain.PaymentProviderError{Provider: providerName, Transient: isTransient(err), Err: err}
		p.logger.WithContext(ctx).WithFields(logrus.Fields{
			"transient": perr.Transient,
			"breaker":   p.breaker.State(),
		}).WithError(err).Warn("checkout session failed")
		return "", perr
	}
	return url, nil
}

func sessionParams(req *Request) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(li.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	sh := req.Shipping
	return &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems:  items,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String("fixed_amount"),
				DisplayName: stripe.String(sh.DisplayName),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(sh.Amount),
					Currency: stripe.String(sh.Currency),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(sh.MinBusinessDays),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(sh.MaxBusinessDays),
					},
				},
			},
		}},
	}
}

// isTransient is false only for requests Stripe understood and refused.
func isTransient(err error) bool {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		code := se.HTTPStatusCode
		return code == 0 || code == http.StatusTooManyRequests || code >= 500
	}
	return true
}
