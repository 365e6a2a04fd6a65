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

type ProducerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CellarMapper
}

func NewProducerRepository(db *gorm.DB) contract.ProducerRepository {
	return &ProducerRepositoryImpl{
		db:     db,
		mapper: mapper.NewCellarMapper(),
	}
}

func (r *ProducerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProducerRepositoryImpl) Create(ctx context.Context, producer *entity.Producer) error {
	m := r.mapper.ProducerToModel(producer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*producer = *r.mapper.ProducerToEntity(m)
	return nil
}

func (r *ProducerRepositoryImpl) Update(ctx context.Context, producer *entity.Producer) error {
	m := r.mapper.ProducerToModel(producer)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*producer = *r.mapper.ProducerToEntity(m)
	return nil
}

func (r *ProducerRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Producer{}, id).Error
}

func (r *ProducerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Producer, error) {
	var m model.Producer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProducerToEntity(&m), nil
}

func (r *ProducerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Producer, error) {
	var models []*model.Producer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ProducersToEntities(models), nil
}

func (r *ProducerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Producer{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
