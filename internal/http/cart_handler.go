package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	carts    CartService
	sessions *session.Manager
	logger   *logrus.Logger
	timeout  time.Duration
}

func NewCartHandler(carts CartService, sessions *session.Manager, logger *logrus.Logger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.carts.View(ctx, sessionState(r).ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartDTO(view))
}

// POST /api/v1/cart/items/{product_id}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := idParam(r, "product_id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	st := sessionState(r)
	items, err := h.carts.Add(ctx, st.ID, productID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	h.makePermanent(w, r, st)

	respondJSON(w, r, http.StatusCreated, CartCountDTO{Items: items})
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := idParam(r, "product_id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	st := sessionState(r)
	items, err := h.carts.Remove(ctx, st.ID, productID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	h.makePermanent(w, r, st)

	respondJSON(w, r, http.StatusOK, CartCountDTO{Items: items})
}

// makePermanent extends the session cookie to the lifetime of the stored cart.
func (h *CartHandler) makePermanent(w http.ResponseWriter, r *http.Request, st *session.State) {
	if st.Permanent {
		return
	}
	st.Permanent = true
	if err := h.sessions.Save(w, r, st); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to save session")
	}
}
