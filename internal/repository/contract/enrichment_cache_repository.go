package contract

import (
	"context"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/repository/specification"
)

type EnrichmentCacheRepository interface {
	Upsert(ctx context.Context, entry *entity.EnrichmentCacheEntry) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EnrichmentCacheEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EnrichmentCacheEntry, error)
	DeleteByLookupKey(ctx context.Context, lookupKey string) error
}
