package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the single currency the storefront sells in.
const Currency = "cad"

// MaxAmount is the first value that no longer fits a NUMERIC(12,2) column.
var MaxAmount = decimal.New(1, 10)

// ErrAmountOutOfRange is returned when an amount has no int64 minor-unit form.
var ErrAmountOutOfRange = errors.New("amount out of range")

var (
	errMoneyEmpty     = errors.New("is required")
	errMoneyFormat    = errors.New("is not a monetary amount")
	errMoneyNegative  = errors.New("must not be negative")
	errMoneyPrecision = errors.New("must have at most 2 decimal places")
	errMoneyTooLarge  = fmt.Errorf("must be less than %s", MaxAmount)

	// plain digits, no exponent
	moneyPattern     = regexp.MustCompile(`^\d+(\.\d+)?$`)
	maxMinorUnits    = decimal.NewFromInt(math.MaxInt64)
	maxIntegerDigits = len(MaxAmount.String())
)

// ParseMoney parses a form amount such as "12.50", "$12.50" or "US$ 12.50".
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "US")
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return decimal.Zero, errMoneyEmpty
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, errMoneyNegative
	}
	if !moneyPattern.MatchString(s) {
		return decimal.Zero, errMoneyFormat
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return decimal.Zero, errMoneyPrecision
	}
	if len(strings.TrimLeft(whole, "0")) >= maxIntegerDigits {
		return decimal.Zero, errMoneyTooLarge
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errMoneyFormat
	}
	if d.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, errMoneyTooLarge
	}
	return d.Round(2), nil
}

// MinorUnits converts an amount to cents, rounding half to even. Amounts
// outside the int64 range fail with ErrAmountOutOfRange.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2).RoundBank(0)
	if cents.GreaterThan(maxMinorUnits) || cents.LessThan(maxMinorUnits.Neg()) {
		return 0, fmt.Errorf("%s: %w", amount, ErrAmountOutOfRange)
	}
	return cents.IntPart(), nil
}
