// products.go

// Package memstore keeps shop documents in process memory. It backs tests and
// single-process demo runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

// New returns every port backed by memory.
func New() store.Stores {
	return store.Stores{
		Products: NewProductStore(),
		Carts:    NewCartStore(),
		Tickets:  NewTicketStore(),
		Users:    NewUserStore(),
	}
}

type ProductStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	m     map[primitive.ObjectID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{m: make(map[primitive.ObjectID]models.Product)}
}

func (s *ProductStore) Create(_ context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	p.CreatedAt, p.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = cloneProduct(p)
	s.order = append(s.order, p.ID)
	return cloneProduct(p), nil
}

func (s *ProductStore) Get(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	return cloneProduct(p), nil
}

func (s *ProductStore) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.m[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (s *ProductStore) Update(_ context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	s.m[id] = p
	return cloneProduct(p), nil
}

func (s *ProductStore) Delete(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	delete(s.m, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (s *ProductStore) List(_ context.Context, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneProduct(s.m[id]))
	}
	return out, nil
}

func (s *ProductStore) Count(_ context.Context, f store.ProductFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, id := range s.order {
		if matches(s.m[id], f) {
			n++
		}
	}
	return n, nil
}

func (s *ProductStore) Find(_ context.Context, f store.ProductFilter, skip, limit int, order store.SortOrder) ([]models.Product, error) {
	s.mu.RLock()
	var matched []models.Product
	for _, id := range s.order {
		if p := s.m[id]; matches(p, f) {
			matched = append(matched, cloneProduct(p))
		}
	}
	s.mu.RUnlock()

	switch order {
	case store.PriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case store.PriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []models.Product{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// DecrementStock performs the check and the write under one lock.
func (s *ProductStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	if p.Stock < qty {
		return models.Product{}, store.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	s.m[id] = p
	return cloneProduct(p), nil
}

func (s *ProductStore) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return apperr.NotFound("product", id)
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	s.m[id] = p
	return nil
}

func matches(p models.Product, f store.ProductFilter) bool {
	switch f.Availability {
	case store.OnlyAvailable:
		if !p.Status {
			return false
		}
	case store.OnlyUnavailable:
		if p.Status {
			return false
		}
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
		return false
	}
	return true
}

func cloneProduct(p models.Product) models.Product {
	p.Thumbnails = append([]string{}, p.Thumbnails...)
	return p
}
