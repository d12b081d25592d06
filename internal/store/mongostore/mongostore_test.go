// mongostore_test.go

package mongostore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

const ns = "shop.products"

func TestDecrementStock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("decrements when stock suffices", func(mt *mtest.T) {
		s := NewProductStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "A"},
			{Key: "price", Value: 10.0},
			{Key: "stock", Value: 3},
		}}))
		p, err := s.DecrementStock(ctx, id, 2)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if p.ID != id || p.Stock != 3 {
			mt.Fatalf("unexpected product: %+v", p)
		}
	})

	mt.Run("insufficient stock when product exists", func(mt *mtest.T) {
		s := NewProductStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: id}}),
		)
		_, err := s.DecrementStock(ctx, id, 5)
		if !errors.Is(err, store.ErrInsufficientStock) {
			mt.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
	})

	mt.Run("not found when product is gone", func(mt *mtest.T) {
		s := NewProductStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)
		_, err := s.DecrementStock(ctx, primitive.NewObjectID(), 1)
		if !apperr.IsNotFound(err) {
			mt.Fatalf("expected NotFound, got %v", err)
		}
	})
}

func TestIncrementStock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("matched product", func(mt *mtest.T) {
		s := NewProductStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		if err := s.IncrementStock(ctx, primitive.NewObjectID(), 2); err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("not found when nothing matched", func(mt *mtest.T) {
		s := NewProductStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		if err := s.IncrementStock(ctx, primitive.NewObjectID(), 2); !apperr.IsNotFound(err) {
			mt.Fatalf("expected NotFound, got %v", err)
		}
	})
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key maps to conflict", func(mt *mtest.T) {
		s := NewUserStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: shop.users index: email_1",
		}))
		_, err := s.Create(context.Background(), models.User{Email: "a@x.io"})
		if !apperr.IsConflict(err) {
			mt.Fatalf("expected Conflict, got %v", err)
		}
	})
}

func TestFilterDoc(t *testing.T) {
	f := filterDoc(store.ProductFilter{Availability: store.OnlyAvailable, Category: "a.b"})
	if f["status"] != true {
		t.Fatalf("expected status=true, got %v", f["status"])
	}
	re, ok := f["category"].(primitive.Regex)
	if !ok || re.Pattern != `a\.b` || re.Options != "i" {
		t.Fatalf("unexpected category filter: %#v", f["category"])
	}
	if len(filterDoc(store.ProductFilter{})) != 0 {
		t.Fatalf("empty filter should match everything")
	}
}
