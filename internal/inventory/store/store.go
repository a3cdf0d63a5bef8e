// Package store provides the inventory store and its persistence operations.
package store

import (
	"iter"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/shopspring/decimal"
)

// ProductStore is an interface for inventory storage operations.
type ProductStore interface {
	// Exists reports whether a product with the given ID is stored.
	Exists(id int) bool

	// Get retrieves a single product by its ID.
	// Returns ErrNotFound if no product exists with the given ID.
	Get(id int) (product.Product, error)

	// Add stores a new product and persists the inventory.
	// Returns ErrDuplicateKey if the ID is already taken.
	Add(p product.Product) error

	// Update applies the supplied fields to an existing product and persists the inventory.
	// A nil field leaves the current value unchanged.
	// Returns ErrNotFound if no product exists with the given ID.
	Update(id int, quantity *int, price *decimal.Decimal) (product.Product, error)

	// Remove deletes a product, persists the inventory and returns the removed product.
	// Returns ErrNotFound if no product exists with the given ID.
	Remove(id int) (product.Product, error)

	// ListAll yields every product in display order.
	ListAll() iter.Seq[product.Product]

	// SearchByTerm returns products whose name contains term (case-insensitive)
	// or whose ID equals term.
	SearchByTerm(term string) []product.Product

	// SearchByFilters returns products matching every supplied filter.
	SearchByFilters(f Filter) []product.Product

	// ListSortedByExpiry returns all products ordered by expiry date, products without expiry last.
	ListSortedByExpiry() []product.Product

	// UpcomingExpirations returns products expiring between today and withinDays days from today.
	UpcomingExpirations(withinDays int) []product.Product

	// LowStock returns products whose quantity is at or below threshold.
	LowStock(threshold int) []product.Product

	// Valuation summarises the stored products.
	Valuation() Valuation

	// ExportCSV writes the inventory as CSV to path.
	ExportCSV(path string) error

	// Persist writes the whole inventory to the backing file.
	Persist() error

	// Load replaces the in-memory inventory with the content of the backing file.
	Load() error
}

// Filter holds optional search criteria. Nil fields are not applied.
type Filter struct {
	Name        *string
	ID          *int
	MinQuantity *int
	MaxPrice    *decimal.Decimal
	MinExpiry   *time.Time
}

// Valuation is a summary of the inventory.
type Valuation struct {
	Products int
	Units    int
	Value    decimal.Decimal
}
