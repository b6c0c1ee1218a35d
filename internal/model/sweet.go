package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryChocolate Category = "chocolate"
	CategoryCandy     Category = "candy"
	CategoryPastry    Category = "pastry"
	CategoryIceCream  Category = "ice_cream"
	CategoryCake      Category = "cake"
	CategoryCookie    Category = "cookie"
	CategoryOther     Category = "other"
)

var Categories = []Category{
	CategoryChocolate,
	CategoryCandy,
	CategoryPastry,
	CategoryIceCream,
	CategoryCake,
	CategoryCookie,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MaxQuantity bounds a stock level and a single stock movement. It is the
// largest value a postgres integer column holds.
const MaxQuantity = 2147483647

// Sweet is a catalog item and its stock level.
type Sweet struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null;index" json:"name" validate:"required,max=200"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	Category    Category        `gorm:"type:varchar(50);not null;default:other;index" json:"category" validate:"oneof=chocolate candy pastry ice_cream cake cookie other"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price" validate:"money"`
	Quantity    int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity" validate:"gte=0,lte=2147483647"`
	Image       string          `gorm:"type:varchar(500);not null;default:''" json:"image" validate:"max=500"`
}

// SweetResponse is the wire form; price always carries two decimals.
type SweetResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Sweet) ToResponse() SweetResponse {
	return SweetResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Price:       s.Price.StringFixed(2),
		Quantity:    s.Quantity,
		Image:       s.Image,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func ToSweetResponses(sweets []Sweet) []SweetResponse {
	out := make([]SweetResponse, len(sweets))
	for i := range sweets {
		out[i] = sweets[i].ToResponse()
	}
	return out
}
