// service_test.go

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shop-backend/internal/apperr"
	"shop-backend/internal/auth"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
	"shop-backend/internal/store/memstore"
)

func newService(t *testing.T) (*Service, store.Stores) {
	t.Helper()
	stores := memstore.New()
	svc := NewService(stores.Users, stores.Carts, auth.NewHasher(bcrypt.MinCost), auth.NewTokens("test-secret", time.Hour))
	return svc, stores
}

func alice() RegisterInput {
	return RegisterInput{FirstName: "Alice", LastName: "Doe", Email: "Alice@Test.com ", Age: 30, Password: "123456"}
}

func TestRegisterCreatesUserWithCart(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, alice())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != models.RoleUser || u.Email != "alice@test.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Password == "123456" {
		t.Fatalf("password stored in plain text")
	}
	if _, err := stores.Carts.Get(ctx, u.Cart); err != nil {
		t.Fatalf("cart not created: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "x@test.com"})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Missing) != 4 {
		t.Fatalf("missing = %v", ve.Missing)
	}
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()
	long := strings.Repeat("p", auth.MaxPasswordBytes+1)

	in := alice()
	in.Password = long
	if _, err := svc.Register(ctx, in); !apperr.IsValidation(err) {
		t.Fatalf("register: expected validation error, got %v", err)
	}
	if users, _ := stores.Users.List(ctx); len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}

	u, err := svc.Register(ctx, alice())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Update(ctx, u.ID, UpdateInput{Password: &long}); !apperr.IsValidation(err) {
		t.Fatalf("update: expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateEmailCreatesNothing(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, alice()); err != nil {
		t.Fatalf("register: %v", err)
	}
	cartsBefore, _ := stores.Carts.List(ctx)
	usersBefore, _ := stores.Users.List(ctx)

	dup := alice()
	dup.Email = "alice@test.com"
	if _, err := svc.Register(ctx, dup); !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	cartsAfter, _ := stores.Carts.List(ctx)
	usersAfter, _ := stores.Users.List(ctx)
	if len(cartsAfter) != len(cartsBefore) || len(usersAfter) != len(usersBefore) {
		t.Fatalf("duplicate registration left records: carts %d->%d users %d->%d",
			len(cartsBefore), len(cartsAfter), len(usersBefore), len(usersAfter))
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, alice()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, wrongPassword := svc.Login(ctx, "alice@test.com", "nope")
	_, _, unknownEmail := svc.Login(ctx, "bob@test.com", "123456")
	if !errors.Is(wrongPassword, apperr.ErrInvalidCredentials) || !errors.Is(unknownEmail, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestLoginAndCurrent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, alice())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Login(ctx, "ALICE@test.com", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != registered.ID || token == "" {
		t.Fatalf("unexpected login result %+v %q", u, token)
	}

	cur, err := svc.Current(ctx, token)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.ID != registered.ID {
		t.Fatalf("current returned %s, want %s", cur.ID.Hex(), registered.ID.Hex())
	}

	for _, bad := range []string{"", "garbage", token + "x"} {
		if _, err := svc.Current(ctx, bad); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Fatalf("Current(%q): expected unauthenticated, got %v", bad, err)
		}
	}
}

func TestCurrentForDeletedUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, _ := svc.Register(ctx, alice())
	_, token, err := svc.Login(ctx, "alice@test.com", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Current(ctx, token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAdminUpdateRehashesPassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, _ := svc.Register(ctx, alice())

	pw := "new-secret"
	admin := models.RoleAdmin
	updated, err := svc.Update(ctx, u.ID, UpdateInput{Password: &pw, Role: &admin})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != models.RoleAdmin || updated.Email != u.Email {
		t.Fatalf("unexpected update %+v", updated)
	}
	if _, _, err := svc.Login(ctx, "alice@test.com", "new-secret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	bogus := models.Role("root")
	if _, err := svc.Update(ctx, u.ID, UpdateInput{Role: &bogus}); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnsureAccount(t *testing.T) {
	svc, stores := newService(t)
	ctx := context.Background()

	in := RegisterInput{FirstName: "Admin", LastName: "Test", Email: "admin@test.com", Age: 30, Password: "123456"}
	u, created, err := svc.EnsureAccount(ctx, in, models.RoleAdmin)
	if err != nil || !created || u.Role != models.RoleAdmin {
		t.Fatalf("first ensure: %+v created=%v err=%v", u, created, err)
	}

	demote := models.RoleUser
	if _, err := svc.Update(ctx, u.ID, UpdateInput{Role: &demote}); err != nil {
		t.Fatalf("demote: %v", err)
	}
	u2, created, err := svc.EnsureAccount(ctx, in, models.RoleAdmin)
	if err != nil || created || u2.ID != u.ID || u2.Role != models.RoleAdmin {
		t.Fatalf("second ensure: %+v created=%v err=%v", u2, created, err)
	}
	carts, _ := stores.Carts.List(ctx)
	if len(carts) != 1 {
		t.Fatalf("expected a single cart, got %d", len(carts))
	}
}
