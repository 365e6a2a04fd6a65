package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByWineID struct {
	WineID uuid.UUID
}

func (s ByWineID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("wine_id = ?", s.WineID)
}

type ByProducerID struct {
	ProducerID uuid.UUID
}

func (s ByProducerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("producer_id = ?", s.ProducerID)
}

type ByRegionID struct {
	RegionID uuid.UUID
}

func (s ByRegionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("region_id = ?", s.RegionID)
}

// ByNameExact matches the name column case-insensitively.
type ByNameExact struct {
	Name string
}

func (s ByNameExact) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) = LOWER(?)", s.Name)
}

// ByNameILike matches names containing the given fragment, case-insensitively.
type ByNameILike struct {
	Name string
}

func (s ByNameILike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Name+"%")
}

// ByVintage matches a wine's vintage year. A nil vintage matches
// non-vintage rows.
type ByVintage struct {
	Vintage *int
}

func (s ByVintage) Apply(db *gorm.DB) *gorm.DB {
	if s.Vintage == nil {
		return db.Where("vintage IS NULL")
	}
	return db.Where("vintage = ?", *s.Vintage)
}

type ByLookupKey struct {
	LookupKey string
}

func (s ByLookupKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("lookup_key = ?", s.LookupKey)
}

// ByLookupKeyPrefix matches cache entries whose key starts with the given
// producer|wine prefix, used for near-miss vintage lookups.
type ByLookupKeyPrefix struct {
	Prefix string
}

func (s ByLookupKeyPrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("lookup_key LIKE ?", s.Prefix+"%")
}
