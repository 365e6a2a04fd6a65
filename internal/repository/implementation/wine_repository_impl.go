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

type WineRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellarMapper
}

func NewWineRepository(db *gorm.DB) contract.WineRepository {
	return &WineRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellarMapper(),
	}
}

func (r *WineRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WineRepositoryImpl) Create(ctx context.Context, wine *entity.Wine) error {
	m := r.mapper.WineToModel(wine)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*wine = *r.mapper.WineToEntity(m)
	return nil
}

func (r *WineRepositoryImpl) Update(ctx context.Context, wine *entity.Wine) error {
	m := r.mapper.WineToModel(wine)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*wine = *r.mapper.WineToEntity(m)
	return nil
}

func (r *WineRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Wine{}, id).Error
}

func (r *WineRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error) {
	var m model.Wine
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.WineToEntity(&m), nil
}

func (r *WineRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error) {
	var models []*model.Wine
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.WinesToEntities(models), nil
}

func (r *WineRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Wine{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
