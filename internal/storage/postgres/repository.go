// Package postgres implements the points repository on database/sql with the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"points-service/internal/domain"
)

const (
	createTableStatement = `
CREATE TABLE IF NOT EXISTS points (
    home_id BIGSERIAL PRIMARY KEY,
    home_num BIGINT NOT NULL,
    volts DOUBLE PRECISION NOT NULL,
    ampers DOUBLE PRECISION NOT NULL,
    power DOUBLE PRECISION NOT NULL,
    resistance DOUBLE PRECISION NOT NULL
)`
	homeNumIndexStatement = `
CREATE INDEX IF NOT EXISTS points_home_num_idx
ON points (home_num)`

	selectColumns = `home_id, home_num, volts, ampers, power, resistance`
)

// Repository persists points in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository pings the database, bootstraps the schema and returns a ready
// repository.
func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("postgres repository requires db instance")
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTableStatement, homeNumIndexStatement} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres repository: ensure schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a point and returns it with the assigned identifier.
func (r *Repository) Create(ctx context.Context, input domain.PointInput) (domain.Point, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO points (home_num, volts, ampers, power, resistance)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+selectColumns,
		input.HomeNum, input.Volts, input.Ampers, input.Power, input.Resistance,
	)

	point, err := scanPoint(row)
	if err != nil {
		return domain.Point{}, fmt.Errorf("postgres repository: create: %w", err)
	}
	return point, nil
}

// CreateBatch inserts all inputs in a single multi-row statement and returns
// the number of created points.
func (r *Repository) CreateBatch(ctx context.Context, inputs []domain.PointInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	query, args := buildBatchInsert(inputs)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres repository: create batch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return len(inputs), nil
	}
	return int(affected), nil
}

func buildBatchInsert(inputs []domain.PointInput) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO points (home_num, volts, ampers, power, resistance) VALUES ")

	args := make([]any, 0, len(inputs)*5)
	for i, input := range inputs {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i*5 + 1
		sb.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4))
		args = append(args, input.HomeNum, input.Volts, input.Ampers, input.Power, input.Resistance)
	}

	return sb.String(), args
}

// List returns every point ordered by position along the line.
func (r *Repository) List(ctx context.Context) ([]domain.Point, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM points ORDER BY home_num`)
	if err != nil {
		return nil, fmt.Errorf("postgres repository: list: %w", err)
	}
	defer rows.Close()

	var points []domain.Point
	for rows.Next() {
		var p domain.Point
		if err := rows.Scan(&p.HomeID, &p.HomeNum, &p.Volts, &p.Ampers, &p.Power, &p.Resistance); err != nil {
			return nil, fmt.Errorf("postgres repository: list scan: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres repository: list rows: %w", err)
	}

	return points, nil
}

// GetByID returns the point with the given identifier.
func (r *Repository) GetByID(ctx context.Context, homeID int64) (domain.Point, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM points WHERE home_id = $1`, homeID)

	point, err := scanPoint(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Point{}, err
		}
		return domain.Point{}, fmt.Errorf("postgres repository: get by id: %w", err)
	}
	return point, nil
}

// GetByNum returns the point at the given line position.
func (r *Repository) GetByNum(ctx context.Context, homeNum int64) (domain.Point, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM points WHERE home_num = $1`, homeNum)

	point, err := scanPoint(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Point{}, err
		}
		return domain.Point{}, fmt.Errorf("postgres repository: get by num: %w", err)
	}
	return point, nil
}

// Update applies the non-nil patch fields to the point with the given
// identifier and returns the updated row.
func (r *Repository) Update(ctx context.Context, homeID int64, patch domain.PointPatch) (domain.Point, error) {
	assignments := make([]string, 0, 5)
	args := make([]any, 0, 6)

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.HomeNum != nil {
		appendSet("home_num", *patch.HomeNum)
	}
	if patch.Volts != nil {
		appendSet("volts", *patch.Volts)
	}
	if patch.Ampers != nil {
		appendSet("ampers", *patch.Ampers)
	}
	if patch.Power != nil {
		appendSet("power", *patch.Power)
	}
	if patch.Resistance != nil {
		appendSet("resistance", *patch.Resistance)
	}

	if len(assignments) == 0 {
		return r.GetByID(ctx, homeID)
	}

	args = append(args, homeID)
	query := fmt.Sprintf(
		"UPDATE points SET %s WHERE home_id = $%d RETURNING %s",
		strings.Join(assignments, ", "), len(args), selectColumns,
	)

	point, err := scanPoint(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Point{}, err
		}
		return domain.Point{}, fmt.Errorf("postgres repository: update: %w", err)
	}
	return point, nil
}

// DeleteAll removes every point and returns how many were deleted.
// Deleting from an empty table reports domain.ErrNotFound.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM points`)
	if err != nil {
		return 0, fmt.Errorf("postgres repository: delete all: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres repository: delete all rows affected: %w", err)
	}
	if affected == 0 {
		return 0, domain.ErrNotFound
	}

	return affected, nil
}

func scanPoint(row *sql.Row) (domain.Point, error) {
	var p domain.Point
	if err := row.Scan(&p.HomeID, &p.HomeNum, &p.Volts, &p.Ampers, &p.Power, &p.Resistance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Point{}, domain.ErrNotFound
		}
		return domain.Point{}, err
	}
	return p, nil
}
