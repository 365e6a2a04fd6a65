package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wine-cellar-be/internal/dto"
	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/repository/specification"
	"wine-cellar-be/internal/repository/unitofwork"
	"wine-cellar-be/pkg/agent/handler"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/events"
	pktNats "wine-cellar-be/pkg/nats"

	"github.com/google/uuid"
)

type ICellarService interface {
	handler.Cellar

	ListWines(ctx context.Context, userId uuid.UUID, req *dto.ListWinesRequest) (*dto.ListWinesResponse, error)
	ShowWine(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowWineResponse, error)
	UpdateWine(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateWineRequest) (*dto.ShowWineResponse, error)
	UpdateBottle(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateBottleRequest) (*dto.BottleView, error)
	DeleteWine(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type cellarService struct {
	uowFactory unitofwork.RepositoryFactory
	eventBus   *pktNats.Bus
}

func NewCellarService(
	uowFactory unitofwork.RepositoryFactory,
	eventBus *pktNats.Bus,
) ICellarService {
	return &cellarService{
		uowFactory: uowFactory,
		eventBus:   eventBus,
	}
}

// CheckDuplicate looks for a wine with the same producer, name and vintage
// already in the user's cellar.
func (c *cellarService) CheckDuplicate(ctx context.Context, userID uuid.UUID, producer, name, vintage string) (*handler.DuplicateMatch, error) {
	if name == "" {
		return nil, nil
	}
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ByUserID{UserID: userID},
		specification.ByNameExact{Name: name},
		specification.ByVintage{Vintage: parseVintage(vintage)},
	}
	wines, err := uow.WineRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	for _, w := range wines {
		if producer != "" {
			p, err := c.producerName(ctx, uow, w.ProducerId)
			if err != nil {
				return nil, err
			}
			if !strings.EqualFold(p, producer) {
				continue
			}
		}
		count, err := uow.BottleRepository().SumQuantity(ctx,
			specification.ByUserID{UserID: userID},
			specification.ByWineID{WineID: w.Id},
		)
		if err != nil {
			return nil, err
		}
		return &handler.DuplicateMatch{WineID: w.Id, BottleCount: count}, nil
	}
	return nil, nil
}

// SearchEntities fuzzy-matches catalog names for one entity kind. An exact
// case-insensitive hit is flagged so the caller can auto-select it.
func (c *cellarService) SearchEntities(ctx context.Context, userID uuid.UUID, kind store.EntityKind, name string) ([]store.Candidate, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{
		specification.ByUserID{UserID: userID},
		specification.ByNameILike{Name: name},
		specification.Pagination{Limit: 10, Offset: 0},
	}

	var candidates []store.Candidate
	switch kind {
	case store.EntityRegion:
		regions, err := uow.RegionRepository().FindAll(ctx, specs...)
		if err != nil {
			return nil, err
		}
		for _, r := range regions {
			candidates = append(candidates, scoreCandidate(r.Id, r.Name, r.Country, name))
		}
	case store.EntityProducer:
		producers, err := uow.ProducerRepository().FindAll(ctx, specs...)
		if err != nil {
			return nil, err
		}
		for _, p := range producers {
			candidates = append(candidates, scoreCandidate(p.Id, p.Name, "", name))
		}
	case store.EntityWine:
		wines, err := uow.WineRepository().FindAll(ctx, specs...)
		if err != nil {
			return nil, err
		}
		for _, w := range wines {
			detail := ""
			if w.Vintage != nil {
				detail = strconv.Itoa(*w.Vintage)
			}
			candidates = append(candidates, scoreCandidate(w.Id, w.Name, detail, name))
		}
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	return candidates, nil
}

// CreateWineWithBottle runs the whole cellar write in one transaction:
// missing region and producer rows are created, then the wine, then the
// first bottle.
func (c *cellarService) CreateWineWithBottle(ctx context.Context, userID uuid.UUID, payload *store.SubmitPayload) (uuid.UUID, error) {
	if payload == nil || payload.Result == nil {
		return uuid.Nil, fmt.Errorf("submit payload is incomplete")
	}
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, err
	}
	defer uow.Rollback()

	result := payload.Result

	regionId := payload.RegionID
	if regionId == nil && (result.Region != "" || result.Country != "") {
		region := entity.Region{
			Id:      uuid.New(),
			UserId:  userID,
			Name:    firstNonEmpty(result.Region, result.Country),
			Country: result.Country,
		}
		if err := uow.RegionRepository().Create(ctx, &region); err != nil {
			return uuid.Nil, err
		}
		regionId = &region.Id
	}

	producerId := payload.ProducerID
	if producerId == nil && result.Producer != "" {
		producer := entity.Producer{
			Id:       uuid.New(),
			UserId:   userID,
			RegionId: regionId,
			Name:     result.Producer,
		}
		if err := uow.ProducerRepository().Create(ctx, &producer); err != nil {
			return uuid.Nil, err
		}
		producerId = &producer.Id
	}

	wineId := payload.WineID
	if wineId == nil {
		wine := entity.Wine{
			Id:             uuid.New(),
			UserId:         userID,
			ProducerId:     producerId,
			RegionId:       regionId,
			Name:           firstNonEmpty(result.WineName, result.Producer),
			Vintage:        parseVintage(result.Vintage),
			Type:           entity.WineType(result.WineType),
			GrapeVarieties: result.GrapeVarieties,
		}
		if payload.WithEnrichment {
			enrichment, err := c.cachedEnrichment(ctx, uow, result)
			if err != nil {
				return uuid.Nil, err
			}
			wine.Enrichment = enrichment
		}
		if err := uow.WineRepository().Create(ctx, &wine); err != nil {
			return uuid.Nil, err
		}
		wineId = &wine.Id
	}

	bottle := bottleFromDetails(userID, *wineId, payload.Bottle)
	if err := uow.BottleRepository().Create(ctx, &bottle); err != nil {
		return uuid.Nil, err
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, err
	}

	c.publish(ctx, events.TypeWineAdded, map[string]interface{}{
		"wine_id": wineId.String(),
		"user_id": userID.String(),
	})
	return *wineId, nil
}

// AddBottle appends a bottle to an existing wine and returns the new
// total bottle count.
func (c *cellarService) AddBottle(ctx context.Context, userID, wineID uuid.UUID, details store.BottleDetails) (int, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	wine, err := uow.WineRepository().FindOne(ctx,
		specification.ByID{ID: wineID},
		specification.ByUserID{UserID: userID},
	)
	if err != nil {
		return 0, err
	}
	if wine == nil {
		return 0, fmt.Errorf("wine %s not found", wineID)
	}

	bottle := bottleFromDetails(userID, wineID, details)
	if err := uow.BottleRepository().Create(ctx, &bottle); err != nil {
		return 0, err
	}

	count, err := uow.BottleRepository().SumQuantity(ctx,
		specification.ByUserID{UserID: userID},
		specification.ByWineID{WineID: wineID},
	)
	if err != nil {
		return 0, err
	}

	c.publish(ctx, events.TypeBottleAdded, map[string]interface{}{
		"wine_id": wineID.String(),
		"user_id": userID.String(),
	})
	return count, nil
}

func (c *cellarService) ListWines(ctx context.Context, userId uuid.UUID, req *dto.ListWinesRequest) (*dto.ListWinesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	specs := []specification.Specification{
		specification.ByUserID{UserID: userId},
	}
	if req.Search != "" {
		specs = append(specs, specification.ByNameILike{Name: req.Search})
	}

	total, err := uow.WineRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	specs = append(specs, specification.Pagination{Limit: limit, Offset: req.Offset})
	wines, err := uow.WineRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WineListItem, 0, len(wines))
	for _, w := range wines {
		item, err := c.wineListItem(ctx, uow, w)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &dto.ListWinesResponse{Wines: items, Total: total}, nil
}

func (c *cellarService) ShowWine(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowWineResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	wine, err := uow.WineRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if wine == nil {
		return nil, nil
	}

	item, err := c.wineListItem(ctx, uow, wine)
	if err != nil {
		return nil, err
	}

	bottles, err := uow.BottleRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByWineID{WineID: id},
	)
	if err != nil {
		return nil, err
	}

	views := make([]dto.BottleView, 0, len(bottles))
	for _, b := range bottles {
		views = append(views, dto.BottleView{
			Id:            b.Id,
			Size:          b.Size,
			Location:      b.Location,
			PurchasePrice: b.PurchasePrice,
			PurchaseDate:  b.PurchaseDate,
			Quantity:      b.Quantity,
		})
	}

	return &dto.ShowWineResponse{
		WineListItem: item,
		Appellation:  wine.Appellation,
		Enrichment:   wine.Enrichment,
		Bottles:      views,
	}, nil
}

func (c *cellarService) UpdateWine(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateWineRequest) (*dto.ShowWineResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	wine, err := uow.WineRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if wine == nil {
		return nil, nil
	}

	if req.Name != nil {
		wine.Name = *req.Name
	}
	if req.Vintage != nil {
		wine.Vintage = req.Vintage
	}
	if req.Type != nil {
		wine.Type = entity.WineType(*req.Type)
	}
	if req.GrapeVarieties != nil {
		wine.GrapeVarieties = req.GrapeVarieties
	}
	if req.Appellation != nil {
		wine.Appellation = req.Appellation
	}

	if err := uow.WineRepository().Update(ctx, wine); err != nil {
		return nil, err
	}
	return c.ShowWine(ctx, userId, id)
}

func (c *cellarService) UpdateBottle(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateBottleRequest) (*dto.BottleView, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	bottle, err := uow.BottleRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if bottle == nil {
		return nil, nil
	}

	if req.Size != nil {
		bottle.Size = *req.Size
	}
	if req.Location != nil {
		bottle.Location = req.Location
	}
	if req.PurchasePrice != nil {
		bottle.PurchasePrice = req.PurchasePrice
	}
	if req.PurchaseDate != nil {
		bottle.PurchaseDate = req.PurchaseDate
	}
	if req.Quantity != nil {
		bottle.Quantity = *req.Quantity
	}

	if err := uow.BottleRepository().Update(ctx, bottle); err != nil {
		return nil, err
	}
	return &dto.BottleView{
		Id:            bottle.Id,
		Size:          bottle.Size,
		Location:      bottle.Location,
		PurchasePrice: bottle.PurchasePrice,
		PurchaseDate:  bottle.PurchaseDate,
		Quantity:      bottle.Quantity,
	}, nil
}

func (c *cellarService) DeleteWine(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	wine, err := uow.WineRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return err
	}
	if wine == nil {
		return fmt.Errorf("wine %s not found", id)
	}

	bottles, err := uow.BottleRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByWineID{WineID: id},
	)
	if err != nil {
		return err
	}
	for _, b := range bottles {
		if err := uow.BottleRepository().Delete(ctx, b.Id); err != nil {
			return err
		}
	}
	return uow.WineRepository().Delete(ctx, id)
}

func (c *cellarService) wineListItem(ctx context.Context, uow unitofwork.UnitOfWork, w *entity.Wine) (dto.WineListItem, error) {
	item := dto.WineListItem{
		Id:             w.Id,
		Name:           w.Name,
		Vintage:        w.Vintage,
		Type:           string(w.Type),
		GrapeVarieties: w.GrapeVarieties,
		CreatedAt:      w.CreatedAt,
	}

	producer, err := c.producerName(ctx, uow, w.ProducerId)
	if err != nil {
		return item, err
	}
	item.Producer = producer

	if w.RegionId != nil {
		region, err := uow.RegionRepository().FindOne(ctx, specification.ByID{ID: *w.RegionId})
		if err != nil {
			return item, err
		}
		if region != nil {
			item.Region = region.Name
			item.Country = region.Country
		}
	}

	count, err := uow.BottleRepository().SumQuantity(ctx,
		specification.ByUserID{UserID: w.UserId},
		specification.ByWineID{WineID: w.Id},
	)
	if err != nil {
		return item, err
	}
	item.BottleCount = count
	return item, nil
}

func (c *cellarService) producerName(ctx context.Context, uow unitofwork.UnitOfWork, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	producer, err := uow.ProducerRepository().FindOne(ctx, specification.ByID{ID: *id})
	if err != nil {
		return "", err
	}
	if producer == nil {
		return "", nil
	}
	return producer.Name, nil
}

func (c *cellarService) cachedEnrichment(ctx context.Context, uow unitofwork.UnitOfWork, result *store.IdentificationResult) (map[string]interface{}, error) {
	key := store.LookupKey(result.Producer, result.WineName, result.Vintage)
	entry, err := uow.EnrichmentCacheRepository().FindOne(ctx, specification.ByLookupKey{LookupKey: key})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return entry.Payload, nil
}

func (c *cellarService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.eventBus == nil {
		return
	}
	_ = c.eventBus.Publish(ctx, events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	})
}

func bottleFromDetails(userID, wineID uuid.UUID, d store.BottleDetails) entity.Bottle {
	size := d.Size
	if size == "" {
		size = "750ml"
	}
	quantity := d.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	bottle := entity.Bottle{
		Id:           uuid.New(),
		UserId:       userID,
		WineId:       wineID,
		Size:         size,
		PurchaseDate: d.PurchaseDate,
		Quantity:     quantity,
	}
	if d.Location != "" {
		loc := d.Location
		bottle.Location = &loc
	}
	if d.PurchasePrice != "" {
		if price, err := strconv.ParseFloat(strings.TrimPrefix(d.PurchasePrice, "$"), 64); err == nil {
			bottle.PurchasePrice = &price
		}
	}
	return bottle
}

func scoreCandidate(id uuid.UUID, name, detail, query string) store.Candidate {
	cand := store.Candidate{ID: id, Name: name, Detail: detail}
	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	switch {
	case lowerName == lowerQuery:
		cand.Score = 1.0
		cand.Exact = true
	case strings.HasPrefix(lowerName, lowerQuery):
		cand.Score = 0.9
	default:
		cand.Score = 0.7
	}
	return cand
}

func parseVintage(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "NV") {
		return nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &year
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
