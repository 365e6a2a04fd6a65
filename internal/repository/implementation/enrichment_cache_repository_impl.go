package implementation

import (
	"context"
	"errors"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/mapper"
	"wine-cellar-be/internal/model"
	"wine-cellar-be/internal/repository/contract"
	"wine-cellar-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrichmentCacheRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EnrichmentCacheMapper
}

func NewEnrichmentCacheRepository(db *gorm.DB) contract.EnrichmentCacheRepository {
	return &EnrichmentCacheRepositoryImpl{
		db:     db,
		mapper: mapper.NewEnrichmentCacheMapper(),
	}
}

func (r *EnrichmentCacheRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EnrichmentCacheRepositoryImpl) Upsert(ctx context.Context, entry *entity.EnrichmentCacheEntry) error {
	m := r.mapper.ToModel(entry)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lookup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "source", "fetched_at", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *EnrichmentCacheRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EnrichmentCacheEntry, error) {
	var m model.EnrichmentCacheEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EnrichmentCacheRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EnrichmentCacheEntry, error) {
	var models []*model.EnrichmentCacheEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EnrichmentCacheRepositoryImpl) DeleteByLookupKey(ctx context.Context, lookupKey string) error {
	return r.db.WithContext(ctx).Where("lookup_key = ?", lookupKey).Delete(&model.EnrichmentCacheEntry{}).Error
}
