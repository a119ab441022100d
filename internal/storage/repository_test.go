package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"points-service/internal/domain"
	pg "points-service/internal/storage/postgres"
)

const pointColumns = "home_id, home_num, volts, ampers, power, resistance"

func newMockRepository(t *testing.T) (*pg.Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS points").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS points_home_num_idx").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo, err := pg.NewRepository(context.Background(), db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	return repo, mock, func() { _ = db.Close() }
}

func pointRow(p domain.Point) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"home_id", "home_num", "volts", "ampers", "power", "resistance"}).
		AddRow(p.HomeID, p.HomeNum, p.Volts, p.Ampers, p.Power, p.Resistance)
}

// TestPostgresRepositoryCreate проверяет вставку с возвратом присвоенного идентификатора.
func TestPostgresRepositoryCreate(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	want := domain.Point{HomeID: 7, HomeNum: 3, Volts: 227.5, Ampers: 6.1, Power: 1388, Resistance: 0.015}

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO points (home_num, volts, ampers, power, resistance)")).
		WithArgs(want.HomeNum, want.Volts, want.Ampers, want.Power, want.Resistance).
		WillReturnRows(pointRow(want))

	got, err := repo.Create(context.Background(), domain.PointInput{
		HomeNum: want.HomeNum, Volts: want.Volts, Ampers: want.Ampers,
		Power: want.Power, Resistance: want.Resistance,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected point: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresRepositoryCreateBatch проверяет многострочную вставку одним запросом.
func TestPostgresRepositoryCreateBatch(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO points (home_num, volts, ampers, power, resistance) VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)")).
		WithArgs(
			int64(1), 230.0, 84.49, 19002.0, 0.0,
			int64(2), 228.732, 7.15, 1635.0, 0.015,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	created, err := repo.CreateBatch(context.Background(), []domain.PointInput{
		{HomeNum: 1, Volts: 230.0, Ampers: 84.49, Power: 19002.0, Resistance: 0.0},
		{HomeNum: 2, Volts: 228.732, Ampers: 7.15, Power: 1635.0, Resistance: 0.015},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 created, got %d", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresRepositoryListOrdered проверяет, что выборка упорядочена по позиции на линии.
func TestPostgresRepositoryListOrdered(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"home_id", "home_num", "volts", "ampers", "power", "resistance"}).
		AddRow(int64(2), int64(1), 230.0, 84.49, 19002.0, 0.0).
		AddRow(int64(1), int64(2), 228.732, 7.15, 1635.0, 0.015)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT " + pointColumns + " FROM points ORDER BY home_num")).
		WillReturnRows(rows)

	points, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].HomeNum != 1 || points[1].HomeNum != 2 {
		t.Fatalf("unexpected ordering: %+v", points)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresRepositoryGetByIDNotFound проверяет маппинг sql.ErrNoRows в доменную ошибку.
func TestPostgresRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT " + pointColumns + " FROM points WHERE home_id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"home_id", "home_num", "volts", "ampers", "power", "resistance"}))

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresRepositoryUpdatePartial проверяет, что обновляются только заданные поля.
func TestPostgresRepositoryUpdatePartial(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	volts := 221.4
	want := domain.Point{HomeID: 5, HomeNum: 5, Volts: volts, Ampers: 4.18, Power: 941, Resistance: 0.015}

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE points SET volts = $1 WHERE home_id = $2 RETURNING "+pointColumns)).
		WithArgs(volts, int64(5)).
		WillReturnRows(pointRow(want))

	got, err := repo.Update(context.Background(), 5, domain.PointPatch{Volts: &volts})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected point: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// TestPostgresRepositoryDeleteAllEmpty проверяет, что удаление из пустой таблицы возвращает ErrNotFound.
func TestPostgresRepositoryDeleteAllEmpty(t *testing.T) {
	repo, mock, closeDB := newMockRepository(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM points")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.DeleteAll(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
