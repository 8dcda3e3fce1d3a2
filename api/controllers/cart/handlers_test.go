package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warungku-app/warungku-backend/api/middleware"
	cartsvc "github.com/warungku-app/warungku-backend/internal/cart"
	"github.com/warungku-app/warungku-backend/pkg/types"
)

type stubGateway struct {
	lines    []types.CartLine
	fetchErr error
	setErr   error
	delErr   error
}

func (g *stubGateway) FetchLines(_ context.Context, _ uuid.UUID) ([]types.CartLine, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	out := make([]types.CartLine, len(g.lines))
	copy(out, g.lines)
	return out, nil
}

func (g *stubGateway) SetQuantity(_ context.Context, _ uuid.UUID, _ string, _ int) error {
	return g.setErr
}

func (g *stubGateway) DeleteLine(_ context.Context, _ uuid.UUID, _ string) error {
	return g.delErr
}

func newTestRouter(t *testing.T, gateway *stubGateway) (chi.Router, uuid.UUID) {
	t.Helper()

	mgr, err := cartsvc.NewManager(gateway, nil, nil, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	userID := uuid.New()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID.String())))
		})
	})
	r.Get("/api/v1/cart", CartFetch(mgr, nil))
	r.Post("/api/v1/cart/refresh", CartRefresh(mgr, nil))
	r.Patch("/api/v1/cart/items/{productId}", CartChangeQuantity(mgr, nil))
	r.Delete("/api/v1/cart/items/{productId}", CartRemoveItem(mgr, nil))
	return r, userID
}

func decodeCartView(t *testing.T, resp *httptest.ResponseRecorder) CartView {
	t.Helper()

	var envelope struct {
		Data CartView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope.Error.Code
}

func sampleLines() []types.CartLine {
	return []types.CartLine{
		{ProductID: "nasi-goreng", RestaurantID: "warung-1", Name: "Nasi Goreng", BasePrice: 20000, Quantity: 2},
		{ProductID: "es-teh", RestaurantID: "warung-1", Name: "Es Teh", BasePrice: 5000, Quantity: 1,
			Promotion: &types.Promotion{DiscountLabel: "20% off", DiscountedPrice: 4000}},
	}
}

func TestCartFetchLoadsAndPrices(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{lines: sampleLines()})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeCartView(t, resp)
	if view.State != string(cartsvc.StateReady) {
		t.Fatalf("expected ready state got %s", view.State)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(view.Lines))
	}
	if view.Subtotal != 44000 {
		t.Fatalf("expected subtotal 44000 got %d", view.Subtotal)
	}
	if view.FormattedSubtotal != "Rp44.000" {
		t.Fatalf("expected Rp44.000 got %s", view.FormattedSubtotal)
	}
	promoLine := view.Lines[1]
	if promoLine.EffectiveUnitPrice != 4000 || promoLine.LineSavings != 1000 {
		t.Fatalf("promotion pricing wrong: %+v", promoLine)
	}
}

func TestCartFetchSurfacesLoadFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{fetchErr: fmt.Errorf("backend down")})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "FETCH_FAILED" {
		t.Fatalf("unexpected error code %s", code)
	}
}

func TestCartChangeQuantity(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{lines: sampleLines()})

	// Prime the store.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/nasi-goreng", strings.NewReader(`{"delta":1}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeCartView(t, resp)
	if view.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 got %d", view.Lines[0].Quantity)
	}
	if view.Lines[0].LineTotal != 60000 {
		t.Fatalf("expected line total 60000 got %d", view.Lines[0].LineTotal)
	}
}

func TestCartChangeQuantityAbsorbsZeroDelta(t *testing.T) {
	gateway := &stubGateway{lines: sampleLines()}
	router, _ := newTestRouter(t, gateway)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	// Trip any gateway write; the no-op must never reach it.
	gateway.setErr = fmt.Errorf("gateway must not be called")

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/nasi-goreng", strings.NewReader(`{"delta":0}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeCartView(t, resp)
	if view.Lines[0].Quantity != 2 {
		t.Fatalf("expected unchanged quantity 2 got %d", view.Lines[0].Quantity)
	}
}

func TestCartChangeQuantityRollbackSurfaces(t *testing.T) {
	gateway := &stubGateway{lines: sampleLines(), setErr: fmt.Errorf("conflict")}
	router, _ := newTestRouter(t, gateway)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/nasi-goreng", strings.NewReader(`{"delta":2}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "UPDATE_FAILED" {
		t.Fatalf("unexpected error code %s", code)
	}

	// State rolled back: a follow-up fetch shows the original quantity.
	fetch := httptest.NewRecorder()
	router.ServeHTTP(fetch, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	view := decodeCartView(t, fetch)
	if view.Lines[0].Quantity != 2 {
		t.Fatalf("expected rolled-back quantity 2 got %d", view.Lines[0].Quantity)
	}
}

func TestCartRemoveItem(t *testing.T) {
	router, _ := newTestRouter(t, &stubGateway{lines: sampleLines()})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/es-teh", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeCartView(t, resp)
	if len(view.Lines) != 1 {
		t.Fatalf("expected 1 line got %d", len(view.Lines))
	}
	if view.Subtotal != 40000 {
		t.Fatalf("expected subtotal 40000 got %d", view.Subtotal)
	}
}

func TestCartRefreshReplacesLocalState(t *testing.T) {
	gateway := &stubGateway{lines: sampleLines()}
	router, _ := newTestRouter(t, gateway)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	gateway.lines = []types.CartLine{
		{ProductID: "sate-ayam", RestaurantID: "warung-2", Name: "Sate Ayam", BasePrice: 25000, Quantity: 1},
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/cart/refresh", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCartView(t, resp)
	if len(view.Lines) != 1 || view.Lines[0].ProductID != "sate-ayam" {
		t.Fatalf("refresh did not replace state: %+v", view.Lines)
	}
}

func TestCartRequiresUserContext(t *testing.T) {
	mgr, err := cartsvc.NewManager(&stubGateway{}, nil, nil, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	resp := httptest.NewRecorder()
	CartFetch(mgr, nil)(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
