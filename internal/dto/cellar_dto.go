package dto

import (
	"time"

	"github.com/google/uuid"
)

type WineListItem struct {
	Id             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Producer       string     `json:"producer,omitempty"`
	Region         string     `json:"region,omitempty"`
	Country        string     `json:"country,omitempty"`
	Vintage        *int       `json:"vintage,omitempty"`
	Type           string     `json:"type,omitempty"`
	GrapeVarieties []string   `json:"grape_varieties,omitempty"`
	BottleCount    int        `json:"bottle_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type ListWinesRequest struct {
	Search string `query:"search"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type ListWinesResponse struct {
	Wines []WineListItem `json:"wines"`
	Total int64          `json:"total"`
}

type BottleView struct {
	Id            uuid.UUID  `json:"id"`
	Size          string     `json:"size"`
	Location      *string    `json:"location,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	Quantity      int        `json:"quantity"`
}

type UpdateWineRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1"`
	Vintage        *int     `json:"vintage" validate:"omitempty,min=1800,max=2100"`
	Type           *string  `json:"type" validate:"omitempty,oneof=red white rose sparkling fortified dessert"`
	GrapeVarieties []string `json:"grape_varieties"`
	Appellation    *string  `json:"appellation"`
}

type UpdateBottleRequest struct {
	Size          *string    `json:"size" validate:"omitempty,min=1"`
	Location      *string    `json:"location"`
	PurchasePrice *float64   `json:"purchase_price" validate:"omitempty,min=0"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Quantity      *int       `json:"quantity" validate:"omitempty,min=1"`
}

type ShowWineResponse struct {
	WineListItem
	Appellation *string                `json:"appellation,omitempty"`
	Enrichment  map[string]interface{} `json:"enrichment,omitempty"`
	Bottles     []BottleView           `json:"bottles"`
}
