package store

import (
	"bytes"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/codec"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/product"
	"github.com/shopspring/decimal"
)

var _ ProductStore = (*FileStore)(nil)

// FileStore implements ProductStore with an in-memory map persisted to a single JSON file.
// Every mutation rewrites the whole file before returning.
type FileStore struct {
	mu       sync.RWMutex
	products map[int]product.Product
	order    []int // display order, always holds exactly the keys of products

	path        string
	atomicWrite bool
	now         func() time.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithAtomicWrite makes Persist write to a temporary file and rename it over the backing file.
// When disabled the backing file is truncated and rewritten in place.
func WithAtomicWrite(enabled bool) Option {
	return func(s *FileStore) {
		s.atomicWrite = enabled
	}
}

// WithClock sets the clock used to determine "today" for expiry reports.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a store backed by path and loads its current content.
// A missing backing file yields an empty store.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		products:    make(map[int]product.Product),
		path:        path,
		atomicWrite: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether a product with the given ID is stored.
func (s *FileStore) Exists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[id]
	return ok
}

// Get retrieves a product by its ID.
func (s *FileStore) Get(id int) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("%w: id %d", inverrors.ErrNotFound, id)
	}
	return p, nil
}

// Add inserts a new product and persists the inventory.
func (s *FileStore) Add(p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return fmt.Errorf("%w: id %d", inverrors.ErrDuplicateKey, p.ID)
	}
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)

	return s.persistLocked()
}

// Update applies the supplied fields and persists the inventory, even when no field is supplied.
func (s *FileStore) Update(id int, quantity *int, price *decimal.Decimal) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("%w: id %d", inverrors.ErrNotFound, id)
	}
	if quantity != nil {
		p.SetQuantity(*quantity)
	}
	if price != nil {
		p.SetPrice(*price)
	}
	s.products[id] = p

	return p, s.persistLocked()
}

// Remove deletes a product, persists the inventory and returns the removed product.
func (s *FileStore) Remove(id int) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("%w: id %d", inverrors.ErrNotFound, id)
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })

	return p, s.persistLocked()
}

// ListAll yields every product in display order.
// Each iteration reads the in-memory inventory as it is at that moment.
func (s *FileStore) ListAll() iter.Seq[product.Product] {
	return func(yield func(product.Product) bool) {
		for _, p := range s.snapshot() {
			if !yield(p) {
				return
			}
		}
	}
}

// Persist writes the whole inventory to the backing file.
func (s *FileStore) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.persistLocked()
}

// Load replaces the in-memory inventory with the content of the backing file.
// A missing or empty file is an empty inventory; an unreadable document is ErrCorruptState
// and leaves the in-memory inventory untouched.
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: reading %s: %v", inverrors.ErrIOFailure, s.path, err)
	}

	var loaded []product.Product
	if len(bytes.TrimSpace(data)) > 0 {
		loaded, err = codec.DecodeJSON(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("loading %s: %w", s.path, err)
		}
	}

	products := make(map[int]product.Product, len(loaded))
	order := make([]int, 0, len(loaded))
	for _, p := range loaded {
		products[p.ID] = p
		order = append(order, p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.order = order
	return nil
}

// ExportCSV writes the inventory as CSV to path, overwriting it.
func (s *FileStore) ExportCSV(path string) error {
	var buf bytes.Buffer
	if err := codec.EncodeCSV(&buf, s.snapshot()); err != nil {
		return fmt.Errorf("%w: encoding csv: %v", inverrors.ErrIOFailure, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", inverrors.ErrIOFailure, path, err)
	}
	return nil
}

// snapshot returns a copy of the products in display order.
func (s *FileStore) snapshot() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.orderedLocked()
}

func (s *FileStore) orderedLocked() []product.Product {
	list := make([]product.Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list
}

// persistLocked must be called with s.mu held.
// On failure the in-memory inventory is kept as is.
func (s *FileStore) persistLocked() error {
	var buf bytes.Buffer
	if err := codec.EncodeJSON(&buf, s.orderedLocked()); err != nil {
		return fmt.Errorf("%w: encoding inventory: %v", inverrors.ErrIOFailure, err)
	}
	if err := writeFile(s.path, buf.Bytes(), s.atomicWrite); err != nil {
		return fmt.Errorf("%w: writing %s: %v", inverrors.ErrIOFailure, s.path, err)
	}
	return nil
}

func writeFile(path string, data []byte, atomic bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if !atomic {
		return os.WriteFile(path, data, 0o644)
	}

	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(temp, path)
}
