// Package product defines the tracked inventory record and its persisted shape.
package product

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/shopspring/decimal"
)

// DateLayout is the dd/mm/yyyy layout used for expiry dates on disk and in exports.
const DateLayout = "02/01/2006"

// PriceScale is the number of decimal places a price is kept with, in memory and on disk.
const PriceScale = 2

// Product represents a product tracked by the inventory.
// ID, Name and Expiry are fixed at creation; Quantity and Price change through the store.
type Product struct {
	ID       int
	Name     string
	Quantity int
	Price    decimal.Decimal
	Expiry   *time.Time // nil when the product has no expiry date
}

// Data is the persisted representation of a Product.
type Data struct {
	ID       int         `json:"id_produto"`
	Name     string      `json:"nome"`
	Quantity int         `json:"quantidade"`
	Price    json.Number `json:"preco"`
	Expiry   string      `json:"validade,omitempty"`
}

// New creates a product. The price is rounded to PriceScale decimal places; other values are
// stored as given and validation belongs to the caller.
func New(id int, name string, quantity int, price decimal.Decimal, expiry *time.Time) Product {
	p := Product{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Price:    price.Round(PriceScale),
	}
	if expiry != nil {
		d := DateOf(*expiry)
		p.Expiry = &d
	}
	return p
}

// SetQuantity overwrites the quantity.
func (p *Product) SetQuantity(quantity int) {
	p.Quantity = quantity
}

// SetPrice overwrites the price, rounded to PriceScale decimal places.
func (p *Product) SetPrice(price decimal.Decimal) {
	p.Price = price.Round(PriceScale)
}

// HasExpiry reports whether the product carries an expiry date.
func (p Product) HasExpiry() bool {
	return p.Expiry != nil
}

// ExpiryText returns the expiry as dd/mm/yyyy, or an empty string when absent.
func (p Product) ExpiryText() string {
	if p.Expiry == nil {
		return ""
	}
	return p.Expiry.Format(DateLayout)
}

// Serialize converts the product into its persisted shape.
func (p Product) Serialize() Data {
	return Data{
		ID:       p.ID,
		Name:     p.Name,
		Quantity: p.Quantity,
		Price:    json.Number(p.Price.StringFixed(PriceScale)),
		Expiry:   p.ExpiryText(),
	}
}

// Deserialize is the inverse of Serialize.
// A missing expiry yields a product without expiry; any unreadable field is reported as ErrCorruptState.
func Deserialize(d Data) (Product, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Product{}, fmt.Errorf("%w: product %d has no name", inverrors.ErrCorruptState, d.ID)
	}
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return Product{}, fmt.Errorf("%w: product %d has invalid price %q", inverrors.ErrCorruptState, d.ID, d.Price)
	}

	var expiry *time.Time
	if d.Expiry != "" {
		parsed, err := ParseDate(d.Expiry)
		if err != nil {
			return Product{}, fmt.Errorf("%w: product %d: %v", inverrors.ErrCorruptState, d.ID, err)
		}
		expiry = &parsed
	}

	return New(d.ID, d.Name, d.Quantity, price, expiry), nil
}

// ParseDate parses a dd/mm/yyyy date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", s)
	}
	return t, nil
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
