package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warungku-app/warungku-backend/pkg/db/models"
	"github.com/warungku-app/warungku-backend/pkg/types"
)

// Repository is the gorm-backed Gateway. Each method is a single statement,
// so one call either lands fully or not at all.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &Repository{db: db}, nil
}

var _ Gateway = (*Repository)(nil)

// FetchLines returns the user's cart lines in insertion order.
func (r *Repository) FetchLines(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error) {
	var rows []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	lines := make([]types.CartLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, toCartLine(rows[i]))
	}
	return lines, nil
}

// SetQuantity overwrites the quantity of an existing line. Updating a line
// that does not exist is an error so the caller can roll back.
func (r *Repository) SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ?", userID.String(), productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLine removes a line if it exists.
func (r *Repository) DeleteLine(ctx context.Context, userID uuid.UUID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID.String(), productID).
		Delete(&models.CartLine{}).
		Error
}

// UpsertLine inserts a line or bumps the quantity of the existing row when
// the user adds the same product again.
func (r *Repository) UpsertLine(ctx context.Context, userID uuid.UUID, line types.CartLine) error {
	row := toModel(userID, line)
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO cart_lines (id, user_id, product_id, restaurant_id, name, image, base_price, quantity, promo_title, promo_label, promo_price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_lines.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
			uuid.New(), row.UserID, row.ProductID, row.RestaurantID, row.Name, row.Image,
			row.BasePrice, row.Quantity, row.PromoTitle, row.PromoLabel, row.PromoPrice).
		Error
}

func toCartLine(row models.CartLine) types.CartLine {
	line := types.CartLine{
		ProductID:    row.ProductID,
		RestaurantID: row.RestaurantID,
		Name:         row.Name,
		Image:        row.Image,
		BasePrice:    row.BasePrice,
		Quantity:     row.Quantity,
	}
	if row.PromoLabel != nil && row.PromoPrice != nil {
		promo := types.Promotion{
			DiscountLabel:   *row.PromoLabel,
			DiscountedPrice: *row.PromoPrice,
		}
		if row.PromoTitle != nil {
			promo.Title = *row.PromoTitle
		}
		line.Promotion = &promo
	}
	return line
}

func toModel(userID uuid.UUID, line types.CartLine) models.CartLine {
	row := models.CartLine{
		UserID:       userID.String(),
		ProductID:    line.ProductID,
		RestaurantID: line.RestaurantID,
		Name:         line.Name,
		Image:        line.Image,
		BasePrice:    line.BasePrice,
		Quantity:     line.Quantity,
	}
	if line.Promotion != nil {
		title := line.Promotion.Title
		label := line.Promotion.DiscountLabel
		price := line.Promotion.DiscountedPrice
		if title != "" {
			row.PromoTitle = &title
		}
		row.PromoLabel = &label
		row.PromoPrice = &price
	}
	return row
}
