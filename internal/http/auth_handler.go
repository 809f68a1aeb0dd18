package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users    UserService
	sessions *session.Manager
	logger   *logrus.Logger
	timeout  time.Duration
}

func NewAuthHandler(users UserService, sessions *session.Manager, logger *logrus.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
	}
}

// POST /api/v1/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	u, err := h.users.Signup(ctx, domain.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !h.login(w, r, u) {
		return
	}
	respondJSON(w, r, http.StatusCreated, toUserDTO(u))
}

// POST /api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	u, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !h.login(w, r, u) {
		return
	}
	respondJSON(w, r, http.StatusOK, toUserDTO(u))
}

// POST /api/v1/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st := sessionState(r)
	st.Logout()
	if err := h.sessions.Save(w, r, st); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to save session")
		respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, u *domain.User) bool {
	st := sessionState(r)
	st.Login(u)
	if err := h.sessions.Save(w, r, st); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to save session")
		respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	h.logger.WithContext(r.Context()).WithField("user_id", u.ID).Info("user logged in")
	return true
}
