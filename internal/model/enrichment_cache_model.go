package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EnrichmentCacheEntry struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LookupKey string         `gorm:"type:varchar(512);uniqueIndex;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	Source    string         `gorm:"type:varchar(50);not null"`
	FetchedAt time.Time      `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (EnrichmentCacheEntry) TableName() string {
	return "enrichment_cache_entries"
}
