package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type loggerKey struct{}

// withLogger makes logger available to the response helpers.
func withLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), loggerKey{}, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLog returns the router's logger bound to the request context, so
// entries carry its trace.
func requestLog(r *http.Request) *logrus.Entry {
	logger, ok := r.Context().Value(loggerKey{}).(*logrus.Logger)
	if !ok {
		logger = logrus.StandardLogger()
	}
	return logger.WithContext(r.Context())
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLog(r).WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError converts a service error to an HTTP status and error code.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		code := "invalid_product"
		if errors.Is(verr.Kind, domain.ErrInvalidUser) {
			code = "invalid_user"
		}
		respondJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Error:   verr.Kind.Error(),
			Code:    code,
			Details: verr.Field + " " + verr.Reason,
		})
		return
	}

	var perr *domain.PaymentProviderError
	if errors.As(err, &perr) {
		if perr.Transient {
			respondError(w, r, http.StatusServiceUnavailable, "payment_unavailable",
				"payment provider is unavailable, try again later")
			return
		}
		respondError(w, r, http.StatusBadGateway, "payment_rejected", "payment provider rejected the checkout")
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNotFoundInCart):
		httpStatus, code = http.StatusNotFound, "not_in_cart"
	case errors.Is(err, domain.ErrInvalidProduct):
		httpStatus, code = http.StatusBadRequest, "invalid_product"
	case errors.Is(err, domain.ErrInvalidUser):
		httpStatus, code = http.StatusBadRequest, "invalid_user"
	case errors.Is(err, domain.ErrForbidden):
		httpStatus, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrDuplicateUser):
		httpStatus, code = http.StatusConflict, "duplicate_user"
	case errors.Is(err, domain.ErrPasswordMismatch):
		httpStatus, code = http.StatusBadRequest, "password_mismatch"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpStatus, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		requestLog(r).WithError(err).Error("unhandled error")
		respondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, r, httpStatus, code, err.Error())
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
