// service.go

// Package identity handles registration, login, session lookup and user administration.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/auth"
	"shop-backend/internal/logging"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

type Service struct {
	users  store.UserStore
	carts  store.CartStore
	hasher *auth.Hasher
	tokens *auth.Tokens

	dummyOnce sync.Once
	dummy     string
}

func NewService(users store.UserStore, carts store.CartStore, hasher *auth.Hasher, tokens *auth.Tokens) *Service {
	return &Service{users: users, carts: carts, hasher: hasher, tokens: tokens}
}

func (s *Service) Tokens() *auth.Tokens { return s.tokens }

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
}

func (in RegisterInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(in.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if normalizeEmail(in.Email) == "" {
		missing = append(missing, "email")
	}
	if in.Age == 0 {
		missing = append(missing, "age")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apperr.Missing(missing...)
	}
	if in.Age < 0 {
		return apperr.Invalid("age", "must be a positive number")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return apperr.Invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an empty cart and a user with the unprivileged role that owns it.
// A taken email fails with Conflict and leaves no cart behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := in.validate(); err != nil {
		return models.User{}, err
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, apperr.Conflict("email already registered")
	} else if !apperr.IsNotFound(err) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, err
	}
	cart, err := s.carts.Create(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("create cart: %w", err)
	}
	u, err := s.users.Create(ctx, models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Age:       in.Age,
		Password:  hashed,
		Cart:      cart.ID,
		Role:      models.RoleUser,
	})
	if err != nil {
		// A concurrent registration won the email; drop the orphan cart.
		if derr := s.carts.Delete(ctx, cart.ID); derr != nil {
			logging.FromContext(ctx).Warn("register_cart_rollback_failed",
				zap.String("cart_id", cart.ID.Hex()),
				zap.Error(derr),
			)
		}
		if apperr.IsConflict(err) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	var missing []string
	if normalizeEmail(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return models.User{}, "", apperr.Missing(missing...)
	}

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !apperr.IsNotFound(err) {
			return models.User{}, "", fmt.Errorf("lookup email: %w", err)
		}
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Compare(s.dummyHash(), password)
		return models.User{}, "", apperr.ErrInvalidCredentials
	}
	if !s.hasher.Compare(u.Password, password) {
		return models.User{}, "", apperr.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash(primitive.NewObjectID().Hex())
	})
	return s.dummy
}

// Current resolves the user a token was issued to.
func (s *Service) Current(ctx context.Context, token string) (models.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, apperr.ErrUnauthenticated
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return models.User{}, apperr.ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}
