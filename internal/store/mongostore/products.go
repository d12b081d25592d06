// products.go

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(collProducts)}
}

func (s *ProductStore) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var list []models.Product
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Thumbnails != nil {
		set["thumbnails"] = *patch.Thumbnails
	}

	var p models.Product
	found, err := findOneAndUpdate(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": set}, &p)
	if err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	if !found {
		return models.Product{}, apperr.NotFound("product", id)
	}
	return p, nil
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) List(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, bson.M{}, opts)
}

func (s *ProductStore) Count(ctx context.Context, f store.ProductFilter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (s *ProductStore) Find(ctx context.Context, f store.ProductFilter, skip, limit int, order store.SortOrder) ([]models.Product, error) {
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
	switch order {
	case store.PriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case store.PriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	}
	return s.find(ctx, filterDoc(f), opts)
}

// DecrementStock relies on a single conditional findAndModify: the stock guard
// and the $inc are evaluated by the server against the same document version.
func (s *ProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (models.Product, error) {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	var p models.Product
	found, err := findOneAndUpdate(ctx, s.coll, filter, update, &p)
	if err != nil {
		return models.Product{}, fmt.Errorf("decrement stock: %w", err)
	}
	if found {
		return p, nil
	}
	ok, err := exists(ctx, s.coll, bson.M{"_id": id})
	if err != nil {
		return models.Product{}, fmt.Errorf("decrement stock: %w", err)
	}
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	return models.Product{}, store.ErrInsufficientStock
}

func (s *ProductStore) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

func (s *ProductStore) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	list := []models.Product{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return list, nil
}

func filterDoc(f store.ProductFilter) bson.M {
	filter := bson.M{}
	switch f.Availability {
	case store.OnlyAvailable:
		filter["status"] = true
	case store.OnlyUnavailable:
		filter["status"] = false
	}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	return filter
}
