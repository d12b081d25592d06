// cli_test.go

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shop-backend/internal/config"
	"shop-backend/internal/models"
	"shop-backend/internal/store/memstore"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("store", "memory")
	v.Set("bcrypt_cost", 4)
	return config.Load(v)
}

func TestSeedCommandOnMemoryStore(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"seed", "--store", "memory", "--log-level", "error"})
	if err := root.Execute(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "created admin@test.com (admin)") || !strings.Contains(got, "created user@test.com (user)") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestSeedUpgradesExistingRole(t *testing.T) {
	cfg := testConfig(t)
	stores := memstore.New()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetContext(context.Background())

	accounts := defaultAccounts("123456")
	accounts[0].role = models.RoleUser
	if err := seed(root, cfg, stores, accounts); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seed(root, cfg, stores, defaultAccounts("other")); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	u, err := stores.Users.GetByEmail(context.Background(), "admin@test.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want admin", u.Role)
	}
	if !strings.Contains(out.String(), "updated admin@test.com (admin)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestUnknownStoreRejected(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"seed", "--store", "sqlite", "--log-level", "error"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}

func TestNewServerServesHealth(t *testing.T) {
	cfg := testConfig(t)
	s := newServer(cfg, memstore.New(), zap.NewNop())
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"serve", "--store", "memory", "--http-addr", "127.0.0.1:0", "--log-level", "error"})
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("serve did not stop")
	}
}
