package unitofwork

import (
	"context"
	"fmt"

	"wine-cellar-be/internal/repository/contract"
	"wine-cellar-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RegionRepository() contract.RegionRepository {
	return implementation.NewRegionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProducerRepository() contract.ProducerRepository {
	return implementation.NewProducerRepository(u.getDB())
}

func (u *UnitOfWorkImpl) WineRepository() contract.WineRepository {
	return implementation.NewWineRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BottleRepository() contract.BottleRepository {
	return implementation.NewBottleRepository(u.getDB())
}

func (u *UnitOfWorkImpl) EnrichmentCacheRepository() contract.EnrichmentCacheRepository {
	return implementation.NewEnrichmentCacheRepository(u.getDB())
}
