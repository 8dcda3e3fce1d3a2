package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warungku-app/warungku-backend/api/middleware"
	"github.com/warungku-app/warungku-backend/api/responses"
	"github.com/warungku-app/warungku-backend/api/validators"
	cartsvc "github.com/warungku-app/warungku-backend/internal/cart"
	pkgerrors "github.com/warungku-app/warungku-backend/pkg/errors"
	"github.com/warungku-app/warungku-backend/pkg/logger"
)

// CartFetch returns the current cart snapshot, loading it from the gateway
// on first access.
func CartFetch(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(mgr, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if store.Generation() == 0 {
			if err := store.Load(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		state, lines := store.Snapshot()
		responses.WriteSuccess(w, newCartView(state, lines))
	}
}

// CartRefresh forces a reload from the gateway and returns the fresh cart.
func CartRefresh(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(mgr, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Load(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, lines := store.Snapshot()
		responses.WriteSuccess(w, newCartView(state, lines))
	}
}

// CartChangeQuantity applies a signed delta to one line's quantity.
func CartChangeQuantity(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(mgr, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		var payload ChangeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, productID)
		}

		if err := store.ChangeQuantity(ctx, productID, payload.Delta); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, lines := store.Snapshot()
		responses.WriteSuccess(w, newCartView(state, lines))
	}
}

// CartRemoveItem deletes one line from the cart.
func CartRemoveItem(mgr *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(mgr, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, productID)
		}

		if err := store.RemoveItem(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, lines := store.Snapshot()
		responses.WriteSuccess(w, newCartView(state, lines))
	}
}

func storeFromRequest(mgr *cartsvc.Manager, r *http.Request) (*cartsvc.Store, error) {
	if mgr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager unavailable")
	}
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing user context")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "invalid user id")
	}
	return mgr.StoreFor(userID)
}
