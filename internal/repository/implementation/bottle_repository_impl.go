package implementation

import (
	"context"
	"errors"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/mapper"
	"wine-cellar-be/internal/model"
	"wine-cellar-be/internal/repository/contract"
	"wine-cellar-be/internal/repository/scope"
	"wine-cellar-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BottleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellarMapper
}

func NewBottleRepository(db *gorm.DB) contract.BottleRepository {
	return &BottleRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellarMapper(),
	}
}

func (r *BottleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BottleRepositoryImpl) Create(ctx context.Context, bottle *entity.Bottle) error {
	m := r.mapper.BottleToModel(bottle)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*bottle = *r.mapper.BottleToEntity(m)
	return nil
}

func (r *BottleRepositoryImpl) Update(ctx context.Context, bottle *entity.Bottle) error {
	m := r.mapper.BottleToModel(bottle)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*bottle = *r.mapper.BottleToEntity(m)
	return nil
}

func (r *BottleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Bottle{}, id).Error
}

func (r *BottleRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bottle, error) {
	var m model.Bottle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.BottleToEntity(&m), nil
}

func (r *BottleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bottle, error) {
	var models []*model.Bottle
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.BottlesToEntities(models), nil
}

func (r *BottleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Bottle{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BottleRepositoryImpl) SumQuantity(ctx context.Context, specs ...specification.Specification) (int, error) {
	var total *int
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Bottle{}), specs...)
	if err := query.Select("SUM(quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
