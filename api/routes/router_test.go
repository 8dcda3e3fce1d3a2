package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/warungku-app/warungku-backend/internal/cart"
	pkgauth "github.com/warungku-app/warungku-backend/pkg/auth"
	"github.com/warungku-app/warungku-backend/pkg/config"
	"github.com/warungku-app/warungku-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubGateway struct {
	lines []types.CartLine
}

func (g *stubGateway) FetchLines(context.Context, uuid.UUID) ([]types.CartLine, error) {
	return g.lines, nil
}

func (g *stubGateway) SetQuantity(context.Context, uuid.UUID, string, int) error {
	return nil
}

func (g *stubGateway) DeleteLine(context.Context, uuid.UUID, string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		Cart: config.CartConfig{
			SessionIdleTTL:  time.Hour,
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	mgr, err := cartsvc.NewManager(&stubGateway{lines: []types.CartLine{
		{ProductID: "nasi-goreng", RestaurantID: "warung-1", Name: "Nasi Goreng", BasePrice: 20000, Quantity: 1},
	}}, nil, nil, cfg.Cart.SessionIdleTTL)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return NewRouter(cfg, nil, stubPinger{}, nil, mgr, nil)
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(t, testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if env := resp.Header().Get("X-Warungku-Env"); env != "test" {
			t.Fatalf("%s: expected env header, got %q", path, env)
		}
	}
}

func TestPublicPing(t *testing.T) {
	handler := newTestHandler(t, testConfig())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRoutesRequireAuth(t *testing.T) {
	handler := newTestHandler(t, testConfig())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartFetchWithToken(t *testing.T) {
	cfg := testConfig()
	handler := newTestHandler(t, cfg)

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			State    string `json:"state"`
			Subtotal int64  `json:"subtotal"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.State != "ready" || envelope.Data.Subtotal != 20000 {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}
