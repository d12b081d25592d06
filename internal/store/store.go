// store.go

// Package store declares the persistence ports of the shop, one per entity.
// Implementations live in mongostore (MongoDB) and memstore (in-process).
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/models"
)

// ErrInsufficientStock is returned by DecrementStock when the product holds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type Availability int

const (
	AnyAvailability Availability = iota
	OnlyAvailable
	OnlyUnavailable
)

// ProductFilter selects products for paginated listings. Category is matched
// as a case-insensitive substring.
type ProductFilter struct {
	Availability Availability
	Category     string
}

type SortOrder int

const (
	Unsorted SortOrder = iota
	PriceAsc
	PriceDesc
)

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	// GetMany returns the products that still exist among ids, keyed by id.
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	// List returns products in storage order; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]models.Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	Find(ctx context.Context, f ProductFilter, skip, limit int, sort SortOrder) ([]models.Product, error)
	// DecrementStock atomically subtracts qty from the product's stock only if
	// the stock is at least qty, returning the updated product.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (models.Product, error)
	// IncrementStock adds qty back to the product's stock. It fails with
	// NotFound when the product no longer exists.
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type CartStore interface {
	Create(ctx context.Context) (models.Cart, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Cart, error)
	List(ctx context.Context) ([]models.Cart, error)
	// AddItem increments the quantity of an existing line or appends a new one.
	AddItem(ctx context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error)
	// RemoveItem fails with NotFound when the cart has no line for productID.
	RemoveItem(ctx context.Context, cartID, productID primitive.ObjectID) (models.Cart, error)
	// SetItemQuantity fails with NotFound when the cart has no line for productID.
	SetItemQuantity(ctx context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error)
	ReplaceItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TicketStore interface {
	Create(ctx context.Context, t models.Ticket) (models.Ticket, error)
	// List returns tickets newest first; an empty purchaser lists every ticket.
	List(ctx context.Context, purchaser string) ([]models.Ticket, error)
}

type UserStore interface {
	// Create fails with Conflict when the email is already registered.
	Create(ctx context.Context, u models.User) (models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Stores bundles one implementation of every port.
type Stores struct {
	Products ProductStore
	Carts    CartStore
	Tickets  TicketStore
	Users    UserStore
}
