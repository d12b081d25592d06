// admin.go

package identity

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

// UpdateInput lists the fields an administrator may change. Email is immutable.
type UpdateInput struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Age       *int         `json:"age"`
	Password  *string      `json:"password"`
	Role      *models.Role `json:"role"`
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (models.User, error) {
	patch := models.UserPatch{FirstName: in.FirstName, LastName: in.LastName, Age: in.Age, Role: in.Role}
	if in.Role != nil && !in.Role.Valid() {
		return models.User{}, apperr.Invalid("role", "must be user or admin")
	}
	if in.Age != nil && *in.Age < 0 {
		return models.User{}, apperr.Invalid("age", "must be a positive number")
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		patch.Password = &hashed
	}
	return s.users.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.users.Delete(ctx, id)
}

// EnsureAccount registers in with the given role, or only rewrites the role
// when the email already exists. It reports whether a new account was created.
func (s *Service) EnsureAccount(ctx context.Context, in RegisterInput, role models.Role) (models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case err == nil:
		u, err := s.users.Update(ctx, existing.ID, models.UserPatch{Role: &role})
		return u, false, err
	case !apperr.IsNotFound(err):
		return models.User{}, false, fmt.Errorf("lookup email: %w", err)
	}

	u, err := s.Register(ctx, in)
	if err != nil {
		return models.User{}, false, err
	}
	if role != models.RoleUser {
		u, err = s.users.Update(ctx, u.ID, models.UserPatch{Role: &role})
		if err != nil {
			return models.User{}, false, err
		}
	}
	return u, true, nil
}
