// Package memory provides in-memory implementations of the catalog
// repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository on top of a map.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]*product.Item
}

// NewProductRepository returns a ProductRepository holding items.
func NewProductRepository(items ...*product.Item) (*ProductRepository, error) {
	r := &ProductRepository{items: make(map[string]*product.Item, len(items))}
	for _, it := range items {
		if err := r.Add(it); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add stores a new item. IDs must be unique.
func (r *ProductRepository) Add(it *product.Item) error {
	if it == nil {
		return errors.New("nil product")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID()]; ok {
		return errors.Errorf("duplicate product id %q", it.ID())
	}
	r.items[it.ID()] = it
	return nil
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(_ context.Context) ([]*product.Item, error) {
	r.mu.RLock()
	out := make([]*product.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, errors.Wrapf(product.ErrNotFound, "get product %q", id)
	}
	return it, nil
}
