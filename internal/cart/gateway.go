package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/warungku-app/warungku-backend/pkg/types"
)

// Gateway is the remote cart backend. Each call is atomic on its own; the
// store never assumes two calls succeed or fail together.
type Gateway interface {
	// FetchLines returns every line in the user's cart. An empty cart is a
	// nil or empty slice, not an error.
	FetchLines(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error)

	// SetQuantity overwrites the quantity of an existing line.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) error

	// DeleteLine removes a line. Deleting a line that is already gone is
	// not an error.
	DeleteLine(ctx context.Context, userID uuid.UUID, productID string) error
}
