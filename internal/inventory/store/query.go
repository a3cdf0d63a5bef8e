package store

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/shopspring/decimal"
)

// SearchByTerm returns products whose name contains term ignoring case, or whose ID text equals term.
func (s *FileStore) SearchByTerm(term string) []product.Product {
	needle := strings.ToLower(term)
	return s.collect(func(p product.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) || strconv.Itoa(p.ID) == term
	})
}

// SearchByFilters returns products satisfying every non-nil field of f.
func (s *FileStore) SearchByFilters(f Filter) []product.Product {
	return s.collect(f.Match)
}

// Match reports whether p satisfies every non-nil field of the filter.
func (f Filter) Match(p product.Product) bool {
	if f.Name != nil && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.ID != nil && p.ID != *f.ID {
		return false
	}
	if f.MinQuantity != nil && p.Quantity < *f.MinQuantity {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinExpiry != nil {
		if p.Expiry == nil || p.Expiry.Before(product.DateOf(*f.MinExpiry)) {
			return false
		}
	}
	return true
}

// ListSortedByExpiry returns all products by ascending expiry.
// Equal dates keep display order and products without expiry come last.
func (s *FileStore) ListSortedByExpiry() []product.Product {
	list := s.snapshot()
	slices.SortStableFunc(list, func(a, b product.Product) int {
		switch {
		case a.Expiry == nil && b.Expiry == nil:
			return 0
		case a.Expiry == nil:
			return 1
		case b.Expiry == nil:
			return -1
		default:
			return a.Expiry.Compare(*b.Expiry)
		}
	})
	return list
}

// UpcomingExpirations returns products whose expiry is between 0 and withinDays calendar days from today.
// Expired products and products without expiry are excluded.
func (s *FileStore) UpcomingExpirations(withinDays int) []product.Product {
	today := product.DateOf(s.now())
	return s.collect(func(p product.Product) bool {
		if p.Expiry == nil {
			return false
		}
		days := daysBetween(today, product.DateOf(*p.Expiry))
		return days >= 0 && days <= withinDays
	})
}

// LowStock returns products whose quantity is at or below threshold.
func (s *FileStore) LowStock(threshold int) []product.Product {
	return s.collect(func(p product.Product) bool {
		return p.Quantity <= threshold
	})
}

// Valuation counts products and units and sums quantity times price.
func (s *FileStore) Valuation() Valuation {
	v := Valuation{Value: decimal.Zero}
	for _, p := range s.snapshot() {
		v.Products++
		v.Units += p.Quantity
		v.Value = v.Value.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return v
}

func (s *FileStore) collect(keep func(product.Product) bool) []product.Product {
	result := make([]product.Product, 0)
	for _, p := range s.snapshot() {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}

// daysBetween returns the number of calendar days from a to b; both must be dates at midnight UTC.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
