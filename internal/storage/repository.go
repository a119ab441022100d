package storage

import (
	"context"

	"points-service/internal/domain"
)

// Repository описывает абстракцию слоя хранения точек измерений.
type Repository interface {
	Create(ctx context.Context, input domain.PointInput) (domain.Point, error)
	CreateBatch(ctx context.Context, inputs []domain.PointInput) (int, error)
	List(ctx context.Context) ([]domain.Point, error)
	GetByID(ctx context.Context, homeID int64) (domain.Point, error)
	GetByNum(ctx context.Context, homeNum int64) (domain.Point, error)
	Update(ctx context.Context, homeID int64, patch domain.PointPatch) (domain.Point, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Closer описывает репозиторий, который может корректно завершать работу.
type Closer interface {
	Close() error
}
