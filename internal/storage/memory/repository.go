// Package memory provides an in-memory points repository with the same
// semantics as the Postgres implementation. It backs unit tests and the
// "memory" storage driver.
package memory

import (
	"context"
	"sort"
	"sync"

	"points-service/internal/domain"
)

type Repository struct {
	mu     sync.RWMutex
	nextID int64
	points map[int64]domain.Point
}

func NewRepository() *Repository {
	return &Repository{nextID: 1, points: make(map[int64]domain.Point)}
}

// Seed replaces the stored points with the provided sample data.
func (r *Repository) Seed(points []domain.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.points = make(map[int64]domain.Point, len(points))
	for _, p := range points {
		r.points[p.HomeID] = p
		if p.HomeID >= r.nextID {
			r.nextID = p.HomeID + 1
		}
	}
}

func (r *Repository) Create(_ context.Context, input domain.PointInput) (domain.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	point := domain.Point{
		HomeID:     r.nextID,
		HomeNum:    input.HomeNum,
		Volts:      input.Volts,
		Ampers:     input.Ampers,
		Power:      input.Power,
		Resistance: input.Resistance,
	}
	r.points[point.HomeID] = point
	r.nextID++

	return point, nil
}

func (r *Repository) CreateBatch(ctx context.Context, inputs []domain.PointInput) (int, error) {
	for _, input := range inputs {
		if _, err := r.Create(ctx, input); err != nil {
			return 0, err
		}
	}
	return len(inputs), nil
}

func (r *Repository) List(_ context.Context) ([]domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	points := make([]domain.Point, 0, len(r.points))
	for _, p := range r.points {
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].HomeNum < points[j].HomeNum
	})

	return points, nil
}

func (r *Repository) GetByID(_ context.Context, homeID int64) (domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	point, ok := r.points[homeID]
	if !ok {
		return domain.Point{}, domain.ErrNotFound
	}
	return point, nil
}

func (r *Repository) GetByNum(_ context.Context, homeNum int64) (domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.points {
		if p.HomeNum == homeNum {
			return p, nil
		}
	}
	return domain.Point{}, domain.ErrNotFound
}

func (r *Repository) Update(_ context.Context, homeID int64, patch domain.PointPatch) (domain.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	point, ok := r.points[homeID]
	if !ok {
		return domain.Point{}, domain.ErrNotFound
	}

	if patch.HomeNum != nil {
		point.HomeNum = *patch.HomeNum
	}
	if patch.Volts != nil {
		point.Volts = *patch.Volts
	}
	if patch.Ampers != nil {
		point.Ampers = *patch.Ampers
	}
	if patch.Power != nil {
		point.Power = *patch.Power
	}
	if patch.Resistance != nil {
		point.Resistance = *patch.Resistance
	}

	r.points[homeID] = point
	return point, nil
}

func (r *Repository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.points))
	if deleted == 0 {
		return 0, domain.ErrNotFound
	}

	r.points = make(map[int64]domain.Point)
	return deleted, nil
}
