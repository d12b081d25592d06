// memstore_test.go

package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

func TestDecrementStockNeverNegative(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()
	p, _ := s.Create(ctx, models.Product{Title: "A", Price: 1, Stock: 10, Status: true})

	var wg sync.WaitGroup
	var ok, insufficient int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DecrementStock(ctx, p.ID, 3)
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case errors.Is(err, store.ErrInsufficientStock):
				atomic.AddInt64(&insufficient, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, p.ID)
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}
	if ok != 3 || insufficient != 47 {
		t.Fatalf("expected 3 ok / 47 insufficient, got %d / %d", ok, insufficient)
	}
}

func TestDecrementStockMissingProduct(t *testing.T) {
	s := NewProductStore()
	if _, err := s.DecrementStock(context.Background(), primitive.NewObjectID(), 1); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestIncrementStockRestoresUnits(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()
	p, _ := s.Create(ctx, models.Product{Title: "A", Price: 1, Stock: 5, Status: true})
	if _, err := s.DecrementStock(ctx, p.ID, 2); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := s.IncrementStock(ctx, p.ID, 2); err != nil {
		t.Fatalf("increment: %v", err)
	}
	got, _ := s.Get(ctx, p.ID)
	if got.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", got.Stock)
	}
	if err := s.IncrementStock(ctx, primitive.NewObjectID(), 1); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestFindFiltersSortsAndPages(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()
	for i, c := range []struct {
		cat    string
		price  float64
		status bool
	}{
		{"Electronics", 30, true},
		{"home", 10, false},
		{"electronics-used", 20, true},
		{"garden", 5, true},
	} {
		_, _ = s.Create(ctx, models.Product{Title: string(rune('a' + i)), Category: c.cat, Price: c.price, Status: c.status})
	}

	n, _ := s.Count(ctx, store.ProductFilter{Category: "ELECTRO"})
	if n != 2 {
		t.Fatalf("expected 2 electronics, got %d", n)
	}
	n, _ = s.Count(ctx, store.ProductFilter{Availability: store.OnlyUnavailable})
	if n != 1 {
		t.Fatalf("expected 1 unavailable, got %d", n)
	}

	asc, _ := s.Find(ctx, store.ProductFilter{}, 0, 10, store.PriceAsc)
	if asc[0].Price != 5 || asc[3].Price != 30 {
		t.Fatalf("unexpected asc order: %v, %v", asc[0].Price, asc[3].Price)
	}
	page, _ := s.Find(ctx, store.ProductFilter{}, 2, 10, store.Unsorted)
	if len(page) != 2 || page[0].Category != "electronics-used" {
		t.Fatalf("unexpected page: %+v", page)
	}
	empty, _ := s.Find(ctx, store.ProductFilter{}, 10, 10, store.Unsorted)
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestCartItemOperations(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	c, _ := s.Create(ctx)
	pid := primitive.NewObjectID()

	_, _ = s.AddItem(ctx, c.ID, pid, 1)
	c, _ = s.AddItem(ctx, c.ID, pid, 1)
	if len(c.Products) != 1 || c.Products[0].Quantity != 2 {
		t.Fatalf("expected one line with qty 2, got %+v", c.Products)
	}

	if _, err := s.RemoveItem(ctx, c.ID, primitive.NewObjectID()); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound removing absent product, got %v", err)
	}
	unchanged, _ := s.Get(ctx, c.ID)
	if len(unchanged.Products) != 1 {
		t.Fatalf("cart changed after failed remove: %+v", unchanged.Products)
	}

	if _, err := s.SetItemQuantity(ctx, c.ID, primitive.NewObjectID(), 4); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	c, _ = s.SetItemQuantity(ctx, c.ID, pid, 5)
	if c.Products[0].Quantity != 5 {
		t.Fatalf("expected qty 5, got %d", c.Products[0].Quantity)
	}

	c, _ = s.ReplaceItems(ctx, c.ID, nil)
	if len(c.Products) != 0 {
		t.Fatalf("expected empty cart, got %+v", c.Products)
	}
	if _, err := s.AddItem(ctx, primitive.NewObjectID(), pid, 1); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound for missing cart, got %v", err)
	}
}

func TestCartGetReturnsCopy(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	c, _ := s.Create(ctx)
	c, _ = s.AddItem(ctx, c.ID, primitive.NewObjectID(), 1)
	c.Products[0].Quantity = 99
	again, _ := s.Get(ctx, c.ID)
	if again.Products[0].Quantity != 1 {
		t.Fatalf("store leaked internal slice")
	}
}

func TestUserEmailUnique(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	if _, err := s.Create(ctx, models.User{Email: "a@x.io"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Create(ctx, models.User{Email: "a@x.io"}); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	u, err := s.GetByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByEmail(ctx, "a@x.io"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestTicketsListedNewestFirst(t *testing.T) {
	s := NewTicketStore()
	ctx := context.Background()
	_, _ = s.Create(ctx, models.Ticket{Code: "c1", Purchaser: "a@x.io", Amount: 1})
	_, _ = s.Create(ctx, models.Ticket{Code: "c2", Purchaser: "b@x.io", Amount: 2})
	_, _ = s.Create(ctx, models.Ticket{Code: "c3", Purchaser: "a@x.io", Amount: 3})
	if _, err := s.Create(ctx, models.Ticket{Code: "c1"}); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict on duplicate code, got %v", err)
	}
	got, _ := s.List(ctx, "a@x.io")
	if len(got) != 2 || got[0].Code != "c3" {
		t.Fatalf("unexpected tickets: %+v", got)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(all))
	}
}
