package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/repository/specification"
	"wine-cellar-be/internal/repository/unitofwork"
	"wine-cellar-be/pkg/sommelier"
	"wine-cellar-be/pkg/sommelier/gemini"

	"github.com/google/uuid"
)

type IEnrichmentCacheService interface {
	gemini.CacheReader

	// Warm writes a fetched enrichment payload into the shared cache.
	Warm(ctx context.Context, lookupKey string, res *sommelier.EnrichResult) error
}

type enrichmentCacheService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewEnrichmentCacheService(uowFactory unitofwork.RepositoryFactory) IEnrichmentCacheService {
	return &enrichmentCacheService{
		uowFactory: uowFactory,
	}
}

func (c *enrichmentCacheService) Exact(ctx context.Context, lookupKey string) (*sommelier.EnrichResult, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	entry, err := uow.EnrichmentCacheRepository().FindOne(ctx, specification.ByLookupKey{LookupKey: lookupKey})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return payloadToResult(entry)
}

// Near looks for a cached entry of the same producer and wine under a
// different vintage. The lookup key is producer|wine|vintage, so the
// prefix search strips the last segment.
func (c *enrichmentCacheService) Near(ctx context.Context, lookupKey string) (string, *sommelier.EnrichResult, error) {
	idx := strings.LastIndex(lookupKey, "|")
	if idx < 0 {
		return "", nil, nil
	}
	prefix := lookupKey[:idx+1]

	uow := c.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.EnrichmentCacheRepository().FindAll(ctx,
		specification.ByLookupKeyPrefix{Prefix: prefix},
		specification.OrderBy{Field: "fetched_at", Desc: true},
		specification.Pagination{Limit: 5, Offset: 0},
	)
	if err != nil {
		return "", nil, err
	}
	for _, entry := range entries {
		if entry.LookupKey == lookupKey {
			continue
		}
		res, err := payloadToResult(entry)
		if err != nil {
			return "", nil, err
		}
		return entry.LookupKey, res, nil
	}
	return "", nil, nil
}

func (c *enrichmentCacheService) Warm(ctx context.Context, lookupKey string, res *sommelier.EnrichResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	entry := entity.EnrichmentCacheEntry{
		Id:        uuid.New(),
		LookupKey: lookupKey,
		Payload:   payload,
		Source:    entity.EnrichmentSource(res.Source),
		FetchedAt: time.Now(),
	}
	return uow.EnrichmentCacheRepository().Upsert(ctx, &entry)
}

func payloadToResult(entry *entity.EnrichmentCacheEntry) (*sommelier.EnrichResult, error) {
	raw, err := json.Marshal(entry.Payload)
	if err != nil {
		return nil, err
	}
	var res sommelier.EnrichResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	res.LookupKey = entry.LookupKey
	res.Source = sommelier.SourceCache
	return &res, nil
}
