package coursemodel

import (
	"time"

	"github.com/shopspring/decimal"

	"course-checkout-api/internal/utils"
)

// Course represents the `courses` table in the data store
type Course struct {
	ID            utils.StringOrNumber `json:"id"`
	Title         string               `json:"title"`
	Description   *string              `json:"description"`
	Pilar         string               `json:"pilar"`
	Level         *string              `json:"level"`
	DurationHours *int                 `json:"duration_hours"`
	Price         decimal.Decimal      `json:"price"`
	OriginalPrice *decimal.Decimal     `json:"original_price"`
	ImageURL      *string              `json:"image_url"`
	Status        string               `json:"status"`
	CreatedAt     *time.Time           `json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}
