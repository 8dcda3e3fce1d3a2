package types

// Promotion is an optional discount descriptor attached to a cart line. A
// promotion with a discounted price above the base price is treated as
// invalid by the pricing resolver and ignored.
type Promotion struct {
	Title           string `json:"title,omitempty"`
	DiscountLabel   string `json:"discount_label"`
	DiscountedPrice int64  `json:"discounted_price"`
}

// CartLine is one product's presence in a user's cart. ProductID is the
// line's key: no two lines in a cart share a product id.
type CartLine struct {
	ProductID    string     `json:"product_id"`
	RestaurantID string     `json:"restaurant_id"`
	Name         string     `json:"name"`
	Image        string     `json:"image"`
	BasePrice    int64      `json:"base_price"`
	Quantity     int        `json:"quantity"`
	Promotion    *Promotion `json:"promotion,omitempty"`
}

// Clone returns a deep copy so undo records stay untouched by later mutations.
func (l CartLine) Clone() CartLine {
	out := l
	if l.Promotion != nil {
		promo := *l.Promotion
		out.Promotion = &promo
	}
	return out
}
