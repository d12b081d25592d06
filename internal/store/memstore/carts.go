// carts.go

package memstore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

type CartStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	m     map[primitive.ObjectID]models.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{m: make(map[primitive.ObjectID]models.Cart)}
}

func (s *CartStore) Create(_ context.Context) (models.Cart, error) {
	now := time.Now().UTC()
	c := models.Cart{ID: primitive.NewObjectID(), Products: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = c
	s.order = append(s.order, c.ID)
	return cloneCart(c), nil
}

func (s *CartStore) Get(_ context.Context, id primitive.ObjectID) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	if !ok {
		return models.Cart{}, apperr.NotFound("cart", id)
	}
	return cloneCart(c), nil
}

func (s *CartStore) List(_ context.Context) ([]models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Cart, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneCart(s.m[id]))
	}
	return out, nil
}

func (s *CartStore) AddItem(_ context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	return s.mutate(cartID, func(c *models.Cart) error {
		for i := range c.Products {
			if c.Products[i].Product == productID {
				c.Products[i].Quantity += qty
				return nil
			}
		}
		c.Products = append(c.Products, models.CartItem{Product: productID, Quantity: qty})
		return nil
	})
}

func (s *CartStore) RemoveItem(_ context.Context, cartID, productID primitive.ObjectID) (models.Cart, error) {
	return s.mutate(cartID, func(c *models.Cart) error {
		for i := range c.Products {
			if c.Products[i].Product == productID {
				c.Products = append(c.Products[:i], c.Products[i+1:]...)
				return nil
			}
		}
		return apperr.NotFound("cart item", productID)
	})
}

func (s *CartStore) SetItemQuantity(_ context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	return s.mutate(cartID, func(c *models.Cart) error {
		for i := range c.Products {
			if c.Products[i].Product == productID {
				c.Products[i].Quantity = qty
				return nil
			}
		}
		return apperr.NotFound("cart item", productID)
	})
}

func (s *CartStore) ReplaceItems(_ context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	return s.mutate(cartID, func(c *models.Cart) error {
		c.Products = append([]models.CartItem{}, items...)
		return nil
	})
}

func (s *CartStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return apperr.NotFound("cart", id)
	}
	delete(s.m, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// mutate applies fn to a copy of the cart and stores it only when fn succeeds.
func (s *CartStore) mutate(id primitive.ObjectID, fn func(*models.Cart) error) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[id]
	if !ok {
		return models.Cart{}, apperr.NotFound("cart", id)
	}
	c = cloneCart(c)
	if err := fn(&c); err != nil {
		return models.Cart{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	s.m[id] = c
	return cloneCart(c), nil
}

func cloneCart(c models.Cart) models.Cart {
	c.Products = append([]models.CartItem{}, c.Products...)
	return c
}
