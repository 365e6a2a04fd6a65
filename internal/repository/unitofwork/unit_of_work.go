package unitofwork

import (
	"context"

	"wine-cellar-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	RegionRepository() contract.RegionRepository
	ProducerRepository() contract.ProducerRepository
	WineRepository() contract.WineRepository
	BottleRepository() contract.BottleRepository
	EnrichmentCacheRepository() contract.EnrichmentCacheRepository
}
