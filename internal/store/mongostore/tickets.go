// tickets.go

package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

// TicketStore never updates or deletes tickets.
type TicketStore struct {
	coll *mongo.Collection
}

func NewTicketStore(db *mongo.Database) *TicketStore {
	return &TicketStore{coll: db.Collection(collTickets)}
}

func (s *TicketStore) Create(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Ticket{}, apperr.Conflict("ticket code already used")
		}
		return models.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

func (s *TicketStore) List(ctx context.Context, purchaser string) ([]models.Ticket, error) {
	filter := bson.M{}
	if purchaser != "" {
		filter["purchaser"] = purchaser
	}
	opts := options.Find().SetSort(bson.D{{Key: "purchase_datetime", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	list := []models.Ticket{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return list, nil
}
