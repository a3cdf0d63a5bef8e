// Package service provides the inventory use cases on top of the product store.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ProductService defines the inventory operations offered to the menu and the CLI.
type ProductService interface {
	// Exists reports whether a product with the given ID is stored.
	Exists(id int) bool

	// FindByID retrieves a single product.
	// Returns ErrNotFound if no product exists with the given ID.
	FindByID(id int) (*ProductDto, error)

	// FindAll returns all products in display order.
	FindAll() []ProductDto

	// Create validates and adds a new product.
	// Returns ErrInvalidInput for invalid fields and ErrDuplicateKey if the ID is taken.
	Create(p ProductCreateDto) (*ProductDto, error)

	// Update applies the supplied fields to an existing product.
	// Returns ErrNotFound if no product exists with the given ID.
	Update(id int, u ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product and returns it.
	// Returns ErrNotFound if no product exists with the given ID.
	DeleteByID(id int) (*ProductDto, error)

	// Search returns products matching a free text term by name or ID.
	Search(term string) []ProductDto

	// Filter returns products matching every supplied criterion.
	Filter(f store.Filter) []ProductDto

	// SortedByExpiry returns all products ordered by expiry date.
	SortedByExpiry() []ProductDto

	// Upcoming returns products expiring within the given number of days.
	Upcoming(days int) ([]ProductDto, error)

	// LowStock returns products whose quantity is at or below threshold.
	LowStock(threshold int) ([]ProductDto, error)

	// Valuation summarises the inventory.
	Valuation() ValuationDto

	// Export writes the inventory as CSV to path.
	Export(path string) error
}

var _ ProductService = (*Service)(nil)

// Service implements ProductService.
type Service struct {
	repository store.ProductStore
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewService creates a new Service on top of the given store.
func NewService(repo store.ProductStore, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		validate:   newValidator(),
		logger:     logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data required to create a product.
type ProductCreateDto struct {
	ID       int             `validate:"min=0"`
	Name     string          `validate:"required,max=100"`
	Quantity int             `validate:"min=0"`
	Price    decimal.Decimal `validate:"min=0"`
	Expiry   *time.Time
}

// ProductUpdateDto holds the fields to change. Nil fields keep their current value.
type ProductUpdateDto struct {
	Quantity *int             `validate:"omitempty,min=0"`
	Price    *decimal.Decimal `validate:"omitempty,min=0"`
}

// ProductDto represents a product returned to callers.
type ProductDto struct {
	ID       int
	Name     string
	Quantity int
	Price    decimal.Decimal
	Expiry   *time.Time
}

// ExpiryText returns the expiry as dd/mm/yyyy, or an empty string when absent.
func (p ProductDto) ExpiryText() string {
	if p.Expiry == nil {
		return ""
	}
	return p.Expiry.Format(product.DateLayout)
}

// ValuationDto is a summary of the inventory.
type ValuationDto struct {
	Products int
	Units    int
	Value    decimal.Decimal
}

// Exists reports whether a product with the given ID is stored.
func (s *Service) Exists(id int) bool {
	return s.repository.Exists(id)
}

// FindByID retrieves a product by its ID.
func (s *Service) FindByID(id int) (*ProductDto, error) {
	p, err := s.repository.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(p), nil
}

// FindAll returns all products in display order.
func (s *Service) FindAll() []ProductDto {
	return toDtos(slices.Collect(s.repository.ListAll()))
}

// Create validates the input and adds the product. The name is stored without surrounding spaces.
func (s *Service) Create(p ProductCreateDto) (*ProductDto, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.validateStruct(p); err != nil {
		s.logger.Warn("Rejected product", "ID", p.ID, "error", err)
		return nil, err
	}

	created := product.New(p.ID, p.Name, p.Quantity, p.Price, p.Expiry)
	if err := s.repository.Add(created); err != nil {
		if errors.Is(err, inverrors.ErrDuplicateKey) {
			s.logger.Warn("Product already exists", "ID", p.ID)
		} else {
			s.logger.Error("Error creating product", "ID", p.ID, "error", err)
		}
		return nil, fmt.Errorf("failed to create product %d: %w", p.ID, err)
	}

	s.logger.Info("Product created", "ID", created.ID, "Name", created.Name)
	return toDto(created), nil
}

// Update applies the supplied fields to an existing product.
func (s *Service) Update(id int, u ProductUpdateDto) (*ProductDto, error) {
	if err := s.validateStruct(u); err != nil {
		s.logger.Warn("Rejected product update", "ID", id, "error", err)
		return nil, err
	}

	updated, err := s.repository.Update(id, u.Quantity, u.Price)
	if err != nil {
		if errors.Is(err, inverrors.ErrNotFound) {
			s.logger.Warn("Product not found for update", "ID", id)
			return nil, fmt.Errorf("failed to update product %d: %w", id, err)
		}
		s.logger.Error("Error updating product", "ID", id, "error", err)
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.logger.Info("Product updated", "ID", id, "Quantity", updated.Quantity, "Price", updated.Price.StringFixed(2))
	return toDto(updated), nil
}

// DeleteByID removes a product and returns it.
func (s *Service) DeleteByID(id int) (*ProductDto, error) {
	removed, err := s.repository.Remove(id)
	if err != nil {
		if errors.Is(err, inverrors.ErrNotFound) {
			s.logger.Warn("Product not found for deletion", "ID", id)
		} else {
			s.logger.Error("Error deleting product", "ID", id, "error", err)
		}
		return nil, fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.logger.Info("Product deleted", "ID", id, "Name", removed.Name)
	return toDto(removed), nil
}

// Search returns products whose name contains term or whose ID equals term.
func (s *Service) Search(term string) []ProductDto {
	return toDtos(s.repository.SearchByTerm(term))
}

// Filter returns products matching every supplied criterion.
func (s *Service) Filter(f store.Filter) []ProductDto {
	return toDtos(s.repository.SearchByFilters(f))
}

// SortedByExpiry returns all products ordered by expiry date.
func (s *Service) SortedByExpiry() []ProductDto {
	return toDtos(s.repository.ListSortedByExpiry())
}

// Upcoming returns products expiring within days.
func (s *Service) Upcoming(days int) ([]ProductDto, error) {
	if days < 0 {
		return nil, &inverrors.ValidationError{Fields: map[string]string{"days": "min"}}
	}
	return toDtos(s.repository.UpcomingExpirations(days)), nil
}

// LowStock returns products whose quantity is at or below threshold.
func (s *Service) LowStock(threshold int) ([]ProductDto, error) {
	if threshold < 0 {
		return nil, &inverrors.ValidationError{Fields: map[string]string{"threshold": "min"}}
	}
	return toDtos(s.repository.LowStock(threshold)), nil
}

// Valuation summarises the inventory.
func (s *Service) Valuation() ValuationDto {
	v := s.repository.Valuation()
	return ValuationDto{Products: v.Products, Units: v.Units, Value: v.Value}
}

// Export writes the inventory as CSV to path.
func (s *Service) Export(path string) error {
	if err := s.repository.ExportCSV(path); err != nil {
		s.logger.Error("Error exporting inventory", "path", path, "error", err)
		return fmt.Errorf("failed to export inventory: %w", err)
	}
	s.logger.Info("Inventory exported", "path", path)
	return nil
}

// validateStruct runs the struct validation and converts failures into a ValidationError.
func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		return &inverrors.ValidationError{Fields: fields}
	}
	return fmt.Errorf("%w: %v", inverrors.ErrInvalidInput, err)
}

// newValidator returns a validator that compares decimal values as numbers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// toDto converts a product.Product to a ProductDto.
func toDto(p product.Product) *ProductDto {
	return &ProductDto{
		ID:       p.ID,
		Name:     p.Name,
		Quantity: p.Quantity,
		Price:    p.Price,
		Expiry:   p.Expiry,
	}
}

func toDtos(products []product.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toDto(p)
	}
	return dtos
}
