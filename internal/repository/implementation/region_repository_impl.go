package implementation

import (
	"context"
	"errors"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/mapper"
	"wine-cellar-be/internal/model"
	"wine-cellar-be/internal/repository/contract"
	"wine-cellar-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellarMapper
}

func NewRegionRepository(db *gorm.DB) contract.RegionRepository {
	return &RegionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellarMapper(),
	}
}

func (r *RegionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RegionRepositoryImpl) Create(ctx context.Context, region *entity.Region) error {
	m := r.mapper.RegionToModel(region)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*region = *r.mapper.RegionToEntity(m)
	return nil
}

func (r *RegionRepositoryImpl) Update(ctx context.Context, region *entity.Region) error {
	m := r.mapper.RegionToModel(region)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*region = *r.mapper.RegionToEntity(m)
	return nil
}

func (r *RegionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Region{}, id).Error
}

func (r *RegionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Region, error) {
	var m model.Region
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RegionToEntity(&m), nil
}

func (r *RegionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Region, error) {
	var models []*model.Region
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.RegionsToEntities(models), nil
}

func (r *RegionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Region{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
