package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	testcontainers "github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"points-service/internal/domain"
	"points-service/internal/storage/postgres"
)

// TestPostgresRepositoryIntegration проверяет корректность CRUD операций на реальной базе PostgreSQL.
func TestPostgresRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgrescontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgrescontainer.WithDatabase("testdb"),
		postgrescontainer.WithUsername("postgres"),
		postgrescontainer.WithPassword("postgres"),
	)
	if err != nil {
		t.Fatalf("run container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Fatalf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	repo, err := postgres.NewRepository(ctx, db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Fatalf("close repository: %v", err)
		}
	})

	created, err := repo.Create(ctx, domain.PointInput{
		HomeNum: 2, Volts: 228.732, Ampers: 7.15, Power: 1635, Resistance: 0.015,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.HomeID == 0 {
		t.Fatal("expected assigned home_id")
	}

	if _, err := repo.CreateBatch(ctx, []domain.PointInput{
		{HomeNum: 1, Volts: 230.0, Ampers: 84.49, Power: 19002, Resistance: 0},
		{HomeNum: 3, Volts: 227.572, Ampers: 6.15, Power: 1635, Resistance: 0.015},
	}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	points, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].HomeNum > points[i].HomeNum {
			t.Fatalf("list is not ordered by home_num: %+v", points)
		}
	}

	byNum, err := repo.GetByNum(ctx, 1)
	if err != nil {
		t.Fatalf("get by num: %v", err)
	}
	if byNum.Volts != 230.0 {
		t.Fatalf("unexpected point for num 1: %+v", byNum)
	}

	volts := 228.0
	updated, err := repo.Update(ctx, created.HomeID, domain.PointPatch{Volts: &volts})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Volts != volts || updated.Ampers != created.Ampers {
		t.Fatalf("partial update changed unexpected fields: %+v", updated)
	}

	deleted, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	if _, err := repo.DeleteAll(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty table, got %v", err)
	}
}
