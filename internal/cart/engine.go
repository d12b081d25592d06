// engine.go

// Package cart implements cart line-item mutations and the purchase workflow.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/logging"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

const tracerName = "shop-backend/internal/cart"

type Engine struct {
	carts    store.CartStore
	products store.ProductStore
	tickets  store.TicketStore
	rec      *metrics.Recorder
	tracer   trace.Tracer

	now     func() time.Time
	newCode func() string
}

func NewEngine(stores store.Stores, rec *metrics.Recorder) *Engine {
	return &Engine{
		carts:    stores.Carts,
		products: stores.Products,
		tickets:  stores.Tickets,
		rec:      rec,
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  uuid.NewString,
	}
}

func (e *Engine) Create(ctx context.Context) (models.CartView, error) {
	c, err := e.carts.Create(ctx)
	if err != nil {
		return models.CartView{}, fmt.Errorf("create cart: %w", err)
	}
	return e.view(ctx, c)
}

// Get returns the cart with its lines resolved to live products. A line whose
// product no longer exists carries a nil product.
func (e *Engine) Get(ctx context.Context, cartID primitive.ObjectID) (models.CartView, error) {
	c, err := e.carts.Get(ctx, cartID)
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

func (e *Engine) ListAll(ctx context.Context) ([]models.Cart, error) {
	carts, err := e.carts.List(ctx)
	if err != nil {
		return nil, err
	}
	if carts == nil {
		carts = []models.Cart{}
	}
	return carts, nil
}

// AddProduct increments the line for productID by qty, appending it when absent.
// Quantities below 1 count as 1.
func (e *Engine) AddProduct(ctx context.Context, cartID, productID primitive.ObjectID, qty int) (models.CartView, error) {
	if qty < 1 {
		qty = 1
	}
	if _, err := e.carts.Get(ctx, cartID); err != nil {
		return models.CartView{}, err
	}
	if _, err := e.products.Get(ctx, productID); err != nil {
		return models.CartView{}, err
	}
	c, err := e.carts.AddItem(ctx, cartID, productID, qty)
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

func (e *Engine) RemoveProduct(ctx context.Context, cartID, productID primitive.ObjectID) (models.CartView, error) {
	c, err := e.carts.RemoveItem(ctx, cartID, productID)
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

// UpdateQuantity sets the line quantity. qty is coerced to an integer; zero
// and negative values remove the line.
func (e *Engine) UpdateQuantity(ctx context.Context, cartID, productID primitive.ObjectID, qty any) (models.CartView, error) {
	if qty == nil {
		return models.CartView{}, apperr.Missing("quantity")
	}
	n, err := cast.ToIntE(qty)
	if err != nil {
		return models.CartView{}, apperr.Invalid("quantity", "must be an integer >= 0")
	}
	var c models.Cart
	if n <= 0 {
		c, err = e.carts.RemoveItem(ctx, cartID, productID)
	} else {
		c, err = e.carts.SetItemQuantity(ctx, cartID, productID, n)
	}
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

// ItemInput is one entry of a full cart replacement. Either Product or
// ProductID names the product.
type ItemInput struct {
	Product   string `json:"product"`
	ProductID string `json:"productId"`
	Quantity  any    `json:"quantity"`
}

func (in ItemInput) productHex() string {
	if in.Product != "" {
		return in.Product
	}
	return in.ProductID
}

// ReplaceAll overwrites the cart's lines with items. Entries whose product
// cannot be resolved are dropped; duplicate products are merged.
func (e *Engine) ReplaceAll(ctx context.Context, cartID primitive.ObjectID, items []ItemInput) (models.CartView, error) {
	if _, err := e.carts.Get(ctx, cartID); err != nil {
		return models.CartView{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, in := range items {
		if id, err := primitive.ObjectIDFromHex(in.productHex()); err == nil {
			ids = append(ids, id)
		}
	}
	live, err := e.products.GetMany(ctx, ids)
	if err != nil {
		return models.CartView{}, fmt.Errorf("resolve products: %w", err)
	}

	lines := make([]models.CartItem, 0, len(items))
	index := make(map[primitive.ObjectID]int, len(items))
	dropped := 0
	for _, in := range items {
		id, err := primitive.ObjectIDFromHex(in.productHex())
		if err != nil {
			dropped++
			continue
		}
		if _, ok := live[id]; !ok {
			dropped++
			continue
		}
		qty := lineQuantity(in.Quantity)
		if i, seen := index[id]; seen {
			lines[i].Quantity += qty
			continue
		}
		index[id] = len(lines)
		lines = append(lines, models.CartItem{Product: id, Quantity: qty})
	}
	if dropped > 0 {
		e.rec.UnresolvedItems("replace", dropped)
		logging.FromContext(ctx).Warn("cart_replace_dropped_items",
			zap.String("cart_id", cartID.Hex()),
			zap.Int("dropped", dropped),
		)
	}

	c, err := e.carts.ReplaceItems(ctx, cartID, lines)
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

func (e *Engine) Clear(ctx context.Context, cartID primitive.ObjectID) (models.CartView, error) {
	c, err := e.carts.ReplaceItems(ctx, cartID, []models.CartItem{})
	if err != nil {
		return models.CartView{}, err
	}
	return e.view(ctx, c)
}

// lineQuantity reads a replacement quantity: at least 1, and 1 when unparsable.
func lineQuantity(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (e *Engine) view(ctx context.Context, c models.Cart) (models.CartView, error) {
	ids := make([]primitive.ObjectID, len(c.Products))
	for i, item := range c.Products {
		ids[i] = item.Product
	}
	live, err := e.products.GetMany(ctx, ids)
	if err != nil {
		return models.CartView{}, fmt.Errorf("resolve cart products: %w", err)
	}
	lines := make([]models.CartLine, len(c.Products))
	for i, item := range c.Products {
		lines[i] = models.CartLine{Quantity: item.Quantity}
		if p, ok := live[item.Product]; ok {
			lines[i].Product = &p
		}
	}
	return models.CartView{ID: c.ID, Products: lines, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}, nil
}
