package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotFoundInCart     = errors.New("product is not in the cart")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateUser      = errors.New("user already registered")
	ErrPasswordMismatch   = errors.New("password fields do not match")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUser        = errors.New("invalid user")
)

// ValidationError names the offending field. It unwraps to the sentinel
// passed as Kind so callers can keep matching with errors.Is.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func invalidProduct(field, reason string) error {
	return &ValidationError{Kind: ErrInvalidProduct, Field: field, Reason: reason}
}

// PaymentProviderError is returned for every failed call to the hosted
// checkout provider. Transient is true when retrying later may succeed
// (network failure, throttling, provider outage, open circuit).
type PaymentProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *PaymentProviderError) Error() string {
	kind := "rejected"
	if e.Transient {
		kind = "unavailable"
	}
	return fmt.Sprintf("payment provider %s %s: %v", e.Provider, kind, e.Err)
}

func (e *PaymentProviderError) Unwrap() error {
	return e.Err
}
