package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is the durable row backing one product entry in a user's cart.
// (user_id, product_id) is unique: a repeated add increments quantity on the
// existing row instead of creating a second one.
type CartLine struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       string    `gorm:"column:user_id;not null;index:idx_cart_lines_user_product,unique"`
	ProductID    string    `gorm:"column:product_id;not null;index:idx_cart_lines_user_product,unique"`
	RestaurantID string    `gorm:"column:restaurant_id;not null"`
	Name         string    `gorm:"column:name;not null"`
	Image        string    `gorm:"column:image"`
	BasePrice    int64     `gorm:"column:base_price;not null"`
	Quantity     int       `gorm:"column:quantity;not null;default:1"`
	PromoTitle   *string   `gorm:"column:promo_title"`
	PromoLabel   *string   `gorm:"column:promo_label"`
	PromoPrice   *int64    `gorm:"column:promo_price"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table to the legacy name used by the mobile clients.
func (CartLine) TableName() string {
	return "cart_lines"
}
