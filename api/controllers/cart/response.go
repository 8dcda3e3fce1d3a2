package cart

import (
	cartsvc "github.com/warungku-app/warungku-backend/internal/cart"
	"github.com/warungku-app/warungku-backend/internal/pricing"
	"github.com/warungku-app/warungku-backend/pkg/types"
)

// CartView is the wire shape of a cart snapshot with derived pricing.
type CartView struct {
	State             string     `json:"state"`
	Lines             []LineView `json:"lines"`
	Subtotal          int64      `json:"subtotal"`
	FormattedSubtotal string     `json:"formatted_subtotal"`
}

type LineView struct {
	ProductID          string           `json:"product_id"`
	RestaurantID       string           `json:"restaurant_id"`
	Name               string           `json:"name"`
	Image              string           `json:"image,omitempty"`
	Quantity           int              `json:"quantity"`
	BasePrice          int64            `json:"base_price"`
	Promotion          *types.Promotion `json:"promotion,omitempty"`
	EffectiveUnitPrice int64            `json:"effective_unit_price"`
	LineSavings        int64            `json:"line_savings"`
	LineTotal          int64            `json:"line_total"`
	FormattedUnitPrice string           `json:"formatted_unit_price"`
	FormattedLineTotal string           `json:"formatted_line_total"`
}

func newCartView(state cartsvc.State, lines []types.CartLine) CartView {
	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, newLineView(line))
	}
	subtotal := pricing.Subtotal(lines)
	return CartView{
		State:             string(state),
		Lines:             views,
		Subtotal:          subtotal,
		FormattedSubtotal: pricing.FormatCurrency(subtotal),
	}
}

func newLineView(line types.CartLine) LineView {
	quote := pricing.Resolve(line)
	return LineView{
		ProductID:          line.ProductID,
		RestaurantID:       line.RestaurantID,
		Name:               line.Name,
		Image:              line.Image,
		Quantity:           line.Quantity,
		BasePrice:          line.BasePrice,
		Promotion:          line.Promotion,
		EffectiveUnitPrice: quote.EffectiveUnitPrice,
		LineSavings:        quote.LineSavings,
		LineTotal:          quote.LineTotal,
		FormattedUnitPrice: pricing.FormatCurrency(quote.EffectiveUnitPrice),
		FormattedLineTotal: pricing.FormatCurrency(quote.LineTotal),
	}
}
