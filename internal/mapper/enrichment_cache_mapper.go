package mapper

import (
	"encoding/json"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/model"

	"gorm.io/datatypes"
)

type EnrichmentCacheMapper struct{}

func NewEnrichmentCacheMapper() *EnrichmentCacheMapper {
	return &EnrichmentCacheMapper{}
}

func (m *EnrichmentCacheMapper) ToEntity(e *model.EnrichmentCacheEntry) *entity.EnrichmentCacheEntry {
	if e == nil {
		return nil
	}
	var payload map[string]interface{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}
	return &entity.EnrichmentCacheEntry{
		Id:        e.Id,
		LookupKey: e.LookupKey,
		Payload:   payload,
		Source:    entity.EnrichmentSource(e.Source),
		FetchedAt: e.FetchedAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *EnrichmentCacheMapper) ToModel(e *entity.EnrichmentCacheEntry) *model.EnrichmentCacheEntry {
	if e == nil {
		return nil
	}
	var payload datatypes.JSON
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err == nil {
			payload = raw
		}
	}
	return &model.EnrichmentCacheEntry{
		Id:        e.Id,
		LookupKey: e.LookupKey,
		Payload:   payload,
		Source:    string(e.Source),
		FetchedAt: e.FetchedAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *EnrichmentCacheMapper) ToEntities(entries []*model.EnrichmentCacheEntry) []*entity.EnrichmentCacheEntry {
	entities := make([]*entity.EnrichmentCacheEntry, len(entries))
	for i, e := range entries {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
