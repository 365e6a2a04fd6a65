// Package scope holds reusable gorm scopes applied by the repository
// implementations as query defaults.
package scope

import "gorm.io/gorm"

// OrderByCreatedDesc lists the newest records first; the wine list
// default.
func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// OrderByCreatedAsc lists records in acquisition order; the bottle list
// default.
func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
