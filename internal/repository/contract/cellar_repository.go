package contract

import (
	"context"

	"wine-cellar-be/internal/entity"
	"wine-cellar-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RegionRepository interface {
	Create(ctx context.Context, region *entity.Region) error
	Update(ctx context.Context, region *entity.Region) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Region, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Region, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ProducerRepository interface {
	Create(ctx context.Context, producer *entity.Producer) error
	Update(ctx context.Context, producer *entity.Producer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Producer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Producer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type WineRepository interface {
	Create(ctx context.Context, wine *entity.Wine) error
	Update(ctx context.Context, wine *entity.Wine) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type BottleRepository interface {
	Create(ctx context.Context, bottle *entity.Bottle) error
	Update(ctx context.Context, bottle *entity.Bottle) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bottle, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bottle, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SumQuantity totals bottle quantities for the matching rows.
	SumQuantity(ctx context.Context, specs ...specification.Specification) (int, error)
}
