package mapper

import (
	"encoding/json"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/model"

	"gorm.io/datatypes"
)

type CellarMapper struct{}

func NewCellarMapper() *CellarMapper {
	return &CellarMapper{}
}

func (m *CellarMapper) RegionToEntity(r *model.Region) *entity.Region {
	if r == nil {
		return nil
	}
	return &entity.Region{
		Id:        r.Id,
		UserId:    r.UserId,
		Name:      r.Name,
		Country:   r.Country,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *CellarMapper) RegionToModel(r *entity.Region) *model.Region {
	if r == nil {
		return nil
	}
	return &model.Region{
		Id:        r.Id,
		UserId:    r.UserId,
		Name:      r.Name,
		Country:   r.Country,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *CellarMapper) RegionsToEntities(regions []*model.Region) []*entity.Region {
	entities := make([]*entity.Region, len(regions))
	for i, r := range regions {
		entities[i] = m.RegionToEntity(r)
	}
	return entities
}

func (m *CellarMapper) ProducerToEntity(p *model.Producer) *entity.Producer {
	if p == nil {
		return nil
	}
	return &entity.Producer{
		Id:        p.Id,
		UserId:    p.UserId,
		RegionId:  p.RegionId,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *CellarMapper) ProducerToModel(p *entity.Producer) *model.Producer {
	if p == nil {
		return nil
	}
	return &model.Producer{
		Id:        p.Id,
		UserId:    p.UserId,
		RegionId:  p.RegionId,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *CellarMapper) ProducersToEntities(producers []*model.Producer) []*entity.Producer {
	entities := make([]*entity.Producer, len(producers))
	for i, p := range producers {
		entities[i] = m.ProducerToEntity(p)
	}
	return entities
}

func (m *CellarMapper) WineToEntity(w *model.Wine) *entity.Wine {
	if w == nil {
		return nil
	}
	var enrichment map[string]interface{}
	if len(w.Enrichment) > 0 {
		_ = json.Unmarshal(w.Enrichment, &enrichment)
	}
	return &entity.Wine{
		Id:             w.Id,
		UserId:         w.UserId,
		ProducerId:     w.ProducerId,
		RegionId:       w.RegionId,
		Name:           w.Name,
		Vintage:        w.Vintage,
		Type:           entity.WineType(w.Type),
		GrapeVarieties: w.GrapeVarieties,
		Appellation:    w.Appellation,
		Enrichment:     enrichment,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func (m *CellarMapper) WineToModel(w *entity.Wine) *model.Wine {
	if w == nil {
		return nil
	}
	var enrichment datatypes.JSON
	if w.Enrichment != nil {
		raw, err := json.Marshal(w.Enrichment)
		if err == nil {
			enrichment = raw
		}
	}
	return &model.Wine{
		Id:             w.Id,
		UserId:         w.UserId,
		ProducerId:     w.ProducerId,
		RegionId:       w.RegionId,
		Name:           w.Name,
		Vintage:        w.Vintage,
		Type:           string(w.Type),
		GrapeVarieties: datatypes.NewJSONSlice(w.GrapeVarieties),
		Appellation:    w.Appellation,
		Enrichment:     enrichment,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func (m *CellarMapper) WinesToEntities(wines []*model.Wine) []*entity.Wine {
	entities := make([]*entity.Wine, len(wines))
	for i, w := range wines {
		entities[i] = m.WineToEntity(w)
	}
	return entities
}

func (m *CellarMapper) BottleToEntity(b *model.Bottle) *entity.Bottle {
	if b == nil {
		return nil
	}
	return &entity.Bottle{
		Id:            b.Id,
		UserId:        b.UserId,
		WineId:        b.WineId,
		Size:          b.Size,
		Location:      b.Location,
		PurchasePrice: b.PurchasePrice,
		PurchaseDate:  b.PurchaseDate,
		Quantity:      b.Quantity,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (m *CellarMapper) BottleToModel(b *entity.Bottle) *model.Bottle {
	if b == nil {
		return nil
	}
	return &model.Bottle{
		Id:            b.Id,
		UserId:        b.UserId,
		WineId:        b.WineId,
		Size:          b.Size,
		Location:      b.Location,
		PurchasePrice: b.PurchasePrice,
		PurchaseDate:  b.PurchaseDate,
		Quantity:      b.Quantity,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (m *CellarMapper) BottlesToEntities(bottles []*model.Bottle) []*entity.Bottle {
	entities := make([]*entity.Bottle, len(bottles))
	for i, b := range bottles {
		entities[i] = m.BottleToEntity(b)
	}
	return entities
}
