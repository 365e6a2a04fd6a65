package entity

import (
	"time"

	"github.com/google/uuid"
)

type WineType string

const (
	WineTypeRed       WineType = "red"
	WineTypeWhite     WineType = "white"
	WineTypeRose      WineType = "rose"
	WineTypeSparkling WineType = "sparkling"
	WineTypeFortified WineType = "fortified"
	WineTypeDessert   WineType = "dessert"
)

type Region struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Producer struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	RegionId  *uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Wine struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ProducerId     *uuid.UUID
	RegionId       *uuid.UUID
	Name           string
	Vintage        *int // nil means non-vintage
	Type           WineType
	GrapeVarieties []string
	Appellation    *string
	Enrichment     map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Bottle struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	WineId        uuid.UUID
	Size          string
	Location      *string
	PurchasePrice *float64
	PurchaseDate  *time.Time
	Quantity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
