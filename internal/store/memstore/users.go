// users.go

package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

type UserStore struct {
	mu      sync.RWMutex
	m       map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

func NewUserStore() *UserStore {
	return &UserStore{
		m:       make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *UserStore) Create(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return models.User{}, apperr.Conflict("email already registered")
	}
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	s.m[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *UserStore) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.m[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, apperr.NotFoundRaw("user", email)
	}
	return s.m[id], nil
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	out := make([]models.User, 0, len(s.m))
	for _, u := range s.m {
		out = append(out, u)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) Update(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	u.UpdatedAt = time.Now().UTC()
	s.m[id] = u
	return u, nil
}

func (s *UserStore) Delete(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	delete(s.m, id)
	delete(s.byEmail, u.Email)
	return u, nil
}
