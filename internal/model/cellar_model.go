package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Region struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name      string         `gorm:"type:varchar(255);not null;index"`
	Country   string         `gorm:"type:varchar(100)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Region) TableName() string {
	return "regions"
}

type Producer struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	RegionId  *uuid.UUID     `gorm:"type:uuid;index"`
	Name      string         `gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Producer) TableName() string {
	return "producers"
}

type Wine struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProducerId     *uuid.UUID                  `gorm:"type:uuid;index"`
	RegionId       *uuid.UUID                  `gorm:"type:uuid;index"`
	Name           string                      `gorm:"type:varchar(255);not null;index"`
	Vintage        *int                        `gorm:"index"`
	Type           string                      `gorm:"type:varchar(50)"`
	GrapeVarieties datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Appellation    *string                     `gorm:"type:varchar(255)"`
	Enrichment     datatypes.JSON              `gorm:"type:jsonb"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt              `gorm:"index"`
}

func (Wine) TableName() string {
	return "wines"
}

type Bottle struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	WineId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Size          string         `gorm:"type:varchar(50);not null;default:'750ml'"`
	Location      *string        `gorm:"type:varchar(255)"`
	PurchasePrice *float64       `gorm:"type:numeric(12,2)"`
	PurchaseDate  *time.Time     `gorm:"type:date"`
	Quantity      int            `gorm:"not null;default:1"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Bottle) TableName() string {
	return "bottles"
}
