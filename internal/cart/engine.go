// Package cart aggregates the per-session list of product ids into priced
// cart lines. Every function is pure: inputs are never modified and no state
// survives between calls.
package cart

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Lookup resolves a product id against a catalog snapshot.
type Lookup func(productID int64) (*domain.Product, bool)

// SnapshotLookup builds a Lookup over products fetched for one request.
func SnapshotLookup(products []*domain.Product) Lookup {
	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return func(id int64) (*domain.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}
}

// AddUnit returns a copy of c with productID appended.
func AddUnit(c domain.Cart, productID int64) domain.Cart {
	out := make(domain.Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, productID)
}

// RemoveUnit returns a copy of c without the first occurrence of productID.
func RemoveUnit(c domain.Cart, productID int64) (domain.Cart, error) {
	for i, id := range c {
		if id != productID {
			continue
		}
		out := make(domain.Cart, 0, len(c)-1)
		out = append(out, c[:i]...)
		return append(out, c[i+1:]...), nil
	}
	return c, domain.ErrNotFoundInCart
}

// Count is the number of units in the cart.
func Count(c domain.Cart) int {
	return len(c)
}

// DistinctIDs lists the ids of c once each, in first-seen order.
func DistinctIDs(c domain.Cart) []int64 {
	seen := make(map[int64]struct{}, len(c))
	ids := make([]int64, 0, len(c))
	for _, id := range c {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Aggregate groups the cart by resolved product in first-seen order. Ids
// the lookup cannot resolve are left out of the lines and returned in
// skipped, once each.
func Aggregate(c domain.Cart, lookup Lookup) (lines []domain.CartLine, skipped []int64) {
	index := make(map[int64]int, len(c))
	missing := make(map[int64]struct{})
	for _, id := range c {
		p, ok := lookup(id)
		if !ok || p == nil {
			if _, seen := missing[id]; !seen {
				missing[id] = struct{}{}
				skipped = append(skipped, id)
			}
			continue
		}
		if i, ok := index[p.ID]; ok {
			lines[i].Quantity++
			continue
		}
		index[p.ID] = len(lines)
		lines = append(lines, domain.CartLine{Product: p, Quantity: 1})
	}
	return lines, skipped
}

// Total sums quantity × price over lines, rounded half-even to cents.
func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.RoundBank(2)
}

// View aggregates c into everything the cart page shows.
func View(c domain.Cart, lookup Lookup) domain.CartView {
	lines, skipped := Aggregate(c, lookup)
	return domain.CartView{
		Lines:   lines,
		Total:   Total(lines),
		Items:   Count(c),
		Skipped: skipped,
	}
}
