package domain

import "github.com/shopspring/decimal"

// Cart is the ordered list of product ids held in a visitor's session, one
// entry per unit added.
type Cart []int64

type CartLine struct {
	Product  *Product
	Quantity int
}

// Subtotal is quantity × unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is what a visitor sees when opening the cart.
type CartView struct {
	Lines   []CartLine
	Total   decimal.Decimal
	Items   int
	Skipped []int64
}
