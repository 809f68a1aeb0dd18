package service

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/sirupsen/logrus"
)

// CheckoutObserver receives the outcome of every checkout attempt.
type CheckoutObserver interface {
	ObserveCheckout(result string)
}

const (
	checkoutCreated     = "created"
	checkoutEmpty       = "empty"
	checkoutRejected    = "rejected"
	checkoutUnavailable = "unavailable"
	checkoutFailed      = "failed"
)

type CheckoutService struct {
	carts     *CartService
	provider  checkout.Provider
	cfg       checkout.Config
	publisher publisher.Publisher
	observer  CheckoutObserver
	logger    *logrus.Logger
}

// NewCheckoutService wires checkout. observer may be nil.
func NewCheckoutService(
	carts *CartService,
	provider checkout.Provider,
	cfg checkout.Config,
	pub publisher.Publisher,
	observer CheckoutObserver,
	logger *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		provider:  provider,
		cfg:       cfg,
		publisher: pub,
		observer:  observer,
		logger:    logger,
	}
}

// Initiate opens a hosted checkout session for the cart of sid and returns
// the provider URL to redirect to.
func (s *CheckoutService) Initiate(ctx context.Context, sid string) (string, error) {
	view, err := s.carts.View(ctx, sid)
	if err != nil {
		return "", err
	}

	req, err := checkout.BuildCheckoutRequest(view.Lines, s.cfg)
	if err != nil {
		s.observe(checkoutEmpty)
		return "", err
	}

	url, err := s.provider.CreateSession(ctx, req)
	if err != nil {
		s.observe(resultOf(err))
		return "", err
	}
	s.observe(checkoutCreated)
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"lines": len(view.Lines),
		"total": view.Total.StringFixed(2),
	}).Info("checkout session created")
	return url, nil
}

// CompletedEvent is published once a visitor returns from a paid checkout.
type CompletedEvent struct {
	SessionID string          `json:"session_id"`
	Lines     []CompletedLine `json:"lines"`
	Total     string          `json:"total"`
	Currency  string          `json:"currency"`
	Items     int             `json:"items"`
}

type CompletedLine struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Complete empties the cart of sid after a successful payment and returns
// what was bought. Publishing the event is best effort.
func (s *CheckoutService) Complete(ctx context.Context, sid string) (domain.CartView, error) {
	view, err := s.carts.View(ctx, sid)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.carts.Clear(ctx, sid); err != nil {
		return domain.CartView{}, err
	}
	if len(view.Lines) == 0 {
		return view, nil
	}

	evt := CompletedEvent{
		SessionID: sid,
		Lines:     make([]CompletedLine, 0, len(view.Lines)),
		Total:     view.Total.StringFixed(2),
		Currency:  domain.Currency,
		Items:     view.Items,
	}
	for _, l := range view.Lines {
		evt.Lines = append(evt.Lines, CompletedLine{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			UnitPrice: l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
		})
	}
	if err := s.publisher.Publish(ctx, publisher.EventCheckoutCompleted, sid, evt); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("publish checkout completed failed")
	}
	return view, nil
}

func (s *CheckoutService) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveCheckout(result)
	}
}

func resultOf(err error) string {
	var perr *domain.PaymentProviderError
	if errors.As(err, &perr) {
		if perr.Transient {
			return checkoutUnavailable
		}
		return checkoutRejected
	}
	return checkoutFailed
}
