// models.go

// Package models holds the documents stored by the shop and the shapes returned to clients.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Code        string             `bson:"code" json:"code"`
	Price       float64            `bson:"price" json:"price"`
	Status      bool               `bson:"status" json:"status"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	Thumbnails  []string           `bson:"thumbnails" json:"thumbnails"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductPatch carries the recognized fields of a partial product update.
// Nil fields are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Code        *string
	Price       *float64
	Status      *bool
	Stock       *int
	Category    *string
	Thumbnails  *[]string
}

func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Code == nil && p.Price == nil &&
		p.Status == nil && p.Stock == nil && p.Category == nil && p.Thumbnails == nil
}

// Apply copies the set fields onto prod.
func (p ProductPatch) Apply(prod *Product) {
	if p.Title != nil {
		prod.Title = *p.Title
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Code != nil {
		prod.Code = *p.Code
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Status != nil {
		prod.Status = *p.Status
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Thumbnails != nil {
		prod.Thumbnails = append([]string{}, (*p.Thumbnails)...)
	}
}

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Products  []CartItem         `bson:"products" json:"products"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartLine is a cart item with its product resolved. Product is nil when the
// referenced product no longer exists.
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

type CartView struct {
	ID        primitive.ObjectID `json:"id"`
	Products  []CartLine         `json:"products"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type Ticket struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code             string             `bson:"code" json:"code"`
	PurchaseDatetime time.Time          `bson:"purchase_datetime" json:"purchase_datetime"`
	Amount           float64            `bson:"amount" json:"amount"`
	Purchaser        string             `bson:"purchaser" json:"purchaser"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
	Age       int                `bson:"age" json:"age"`
	Password  string             `bson:"password" json:"-"`
	Cart      primitive.ObjectID `bson:"cart" json:"cart"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch carries the mutable user fields. Email is not among them.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Age       *int
	Password  *string
	Role      *Role
}

// PublicUser is the user shape sent to clients.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Role      Role   `json:"role"`
	Cart      string `json:"cart,omitempty"`
}

func (u User) Public() PublicUser {
	pu := PublicUser{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Role:      u.Role,
	}
	if !u.Cart.IsZero() {
		pu.Cart = u.Cart.Hex()
	}
	return pu
}
