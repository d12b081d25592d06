// carts.go

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

// addItemAttempts bounds the $inc / $push alternation when another request
// adds the same product concurrently.
const addItemAttempts = 3

type CartStore struct {
	coll *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{coll: db.Collection(collCarts)}
}

func (s *CartStore) Create(ctx context.Context) (models.Cart, error) {
	now := time.Now().UTC()
	c := models.Cart{ID: primitive.NewObjectID(), Products: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return models.Cart{}, fmt.Errorf("insert cart: %w", err)
	}
	return c, nil
}

func (s *CartStore) Get(ctx context.Context, id primitive.ObjectID) (models.Cart, error) {
	var c models.Cart
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, apperr.NotFound("cart", id)
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("find cart: %w", err)
	}
	return normalizeCart(c), nil
}

func (s *CartStore) List(ctx context.Context) ([]models.Cart, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find carts: %w", err)
	}
	list := []models.Cart{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode carts: %w", err)
	}
	for i := range list {
		list[i] = normalizeCart(list[i])
	}
	return list, nil
}

func (s *CartStore) AddItem(ctx context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	for attempt := 0; attempt < addItemAttempts; attempt++ {
		var c models.Cart
		found, err := findOneAndUpdate(ctx, s.coll,
			bson.M{"_id": cartID, "products.product": productID},
			bson.M{
				"$inc": bson.M{"products.$.quantity": qty},
				"$set": bson.M{"updatedAt": time.Now().UTC()},
			}, &c)
		if err != nil {
			return models.Cart{}, fmt.Errorf("increment cart item: %w", err)
		}
		if found {
			return normalizeCart(c), nil
		}

		found, err = findOneAndUpdate(ctx, s.coll,
			bson.M{"_id": cartID, "products.product": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"products": models.CartItem{Product: productID, Quantity: qty}},
				"$set":  bson.M{"updatedAt": time.Now().UTC()},
			}, &c)
		if err != nil {
			return models.Cart{}, fmt.Errorf("push cart item: %w", err)
		}
		if found {
			return normalizeCart(c), nil
		}

		ok, err := exists(ctx, s.coll, bson.M{"_id": cartID})
		if err != nil {
			return models.Cart{}, fmt.Errorf("add cart item: %w", err)
		}
		if !ok {
			return models.Cart{}, apperr.NotFound("cart", cartID)
		}
	}
	return models.Cart{}, fmt.Errorf("add cart item: contention on cart %s", cartID.Hex())
}

func (s *CartStore) RemoveItem(ctx context.Context, cartID, productID primitive.ObjectID) (models.Cart, error) {
	var c models.Cart
	found, err := findOneAndUpdate(ctx, s.coll,
		bson.M{"_id": cartID, "products.product": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"product": productID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		}, &c)
	if err != nil {
		return models.Cart{}, fmt.Errorf("remove cart item: %w", err)
	}
	if !found {
		return models.Cart{}, s.missingLine(ctx, cartID, productID)
	}
	return normalizeCart(c), nil
}

func (s *CartStore) SetItemQuantity(ctx context.Context, cartID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	var c models.Cart
	found, err := findOneAndUpdate(ctx, s.coll,
		bson.M{"_id": cartID, "products.product": productID},
		bson.M{"$set": bson.M{"products.$.quantity": qty, "updatedAt": time.Now().UTC()}}, &c)
	if err != nil {
		return models.Cart{}, fmt.Errorf("set cart item quantity: %w", err)
	}
	if !found {
		return models.Cart{}, s.missingLine(ctx, cartID, productID)
	}
	return normalizeCart(c), nil
}

func (s *CartStore) ReplaceItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	var c models.Cart
	found, err := findOneAndUpdate(ctx, s.coll,
		bson.M{"_id": cartID},
		bson.M{"$set": bson.M{"products": items, "updatedAt": time.Now().UTC()}}, &c)
	if err != nil {
		return models.Cart{}, fmt.Errorf("replace cart items: %w", err)
	}
	if !found {
		return models.Cart{}, apperr.NotFound("cart", cartID)
	}
	return normalizeCart(c), nil
}

func (s *CartStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("cart", id)
	}
	return nil
}

func (s *CartStore) missingLine(ctx context.Context, cartID, productID primitive.ObjectID) error {
	ok, err := exists(ctx, s.coll, bson.M{"_id": cartID})
	if err != nil {
		return fmt.Errorf("find cart: %w", err)
	}
	if !ok {
		return apperr.NotFound("cart", cartID)
	}
	return apperr.NotFound("cart item", productID)
}

func normalizeCart(c models.Cart) models.Cart {
	if c.Products == nil {
		c.Products = []models.CartItem{}
	}
	return c
}
