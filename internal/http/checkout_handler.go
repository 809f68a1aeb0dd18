package http

import (
	"context"
	"net/http"
	"time"
)

type CheckoutHandler struct {
	checkout CheckoutService
	carts    CartService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, carts CartService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		timeout:  timeout,
	}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	url, err := h.checkout.Initiate(ctx, sessionState(r).ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// GET /success
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.checkout.Complete(ctx, sessionState(r).ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, CheckoutResultDTO{Status: "paid", Cart: toCartDTO(view)})
}

// GET /cancel leaves the cart as it was so the visitor can try again.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.carts.View(ctx, sessionState(r).ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, CheckoutResultDTO{Status: "cancelled", Cart: toCartDTO(view)})
}
