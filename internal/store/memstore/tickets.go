// tickets.go

package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

// TicketStore is append-only.
type TicketStore struct {
	mu      sync.RWMutex
	tickets []models.Ticket
	codes   map[string]struct{}
}

func NewTicketStore() *TicketStore {
	return &TicketStore{codes: make(map[string]struct{})}
}

func (s *TicketStore) Create(_ context.Context, t models.Ticket) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.codes[t.Code]; dup {
		return models.Ticket{}, apperr.Conflict("ticket code already used")
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	s.tickets = append(s.tickets, t)
	s.codes[t.Code] = struct{}{}
	return t, nil
}

func (s *TicketStore) List(_ context.Context, purchaser string) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Ticket{}
	for i := len(s.tickets) - 1; i >= 0; i-- {
		if purchaser == "" || s.tickets[i].Purchaser == purchaser {
			out = append(out, s.tickets[i])
		}
	}
	return out, nil
}
