package repository

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	"github.com/Prashantkhobragade/CRUD-ops/internal/database"
	"github.com/Prashantkhobragade/CRUD-ops/internal/model"
	"github.com/Prashantkhobragade/CRUD-ops/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
)

var employeeColumns = []string{"employee_id", "name", "age", "department"}

func newMockRepository(t *testing.T) (*EmployeeRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	logger := zerolog.Nop()
	db := database.NewWithPool(mock, &logger, config.DefaultConfig())
	return NewEmployeeRepository(db), mock
}

func TestCreateReturnsGeneratedID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees (name, age, department)")).
		WithArgs("Ada", 34, "Engineering").
		WillReturnRows(pgxmock.NewRows([]string{"employee_id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), model.NewEmployee{Name: "Ada", Age: 34, Department: "Engineering"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &model.Employee{ID: 1, Name: "Ada", Age: 34, Department: "Engineering"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateIntegrityFailure(t *testing.T) {
	tests := []struct {
		name  string
		pgErr *pgconn.PgError
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", TableName: "employees", ConstraintName: "employees_pkey"}},
		{"value too long", &pgconn.PgError{Code: "22001", Message: "value too long for type character varying(50)"}},
		{"not null", &pgconn.PgError{Code: "23502", TableName: "employees", ColumnName: "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees")).
				WithArgs("Ada", 34, "Engineering").
				WillReturnError(tt.pgErr)
			mock.ExpectRollback()

			got, err := repo.Create(context.Background(), model.NewEmployee{Name: "Ada", Age: 34, Department: "Engineering"})
			if got != nil {
				t.Fatalf("expected no employee, got %+v", got)
			}
			if !sqlerr.IsIntegrity(err) {
				t.Fatalf("expected an integrity error, got %v", err)
			}

			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) || pgErr.Code != tt.pgErr.Code {
				t.Fatal("the driver error must stay reachable")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCreateConnectionFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.Create(context.Background(), model.NewEmployee{Name: "Ada", Age: 34, Department: "Engineering"})
	if !sqlerr.IsConnection(err) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}

func TestListOrderedByID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY employee_id ASC")).
		WillReturnRows(pgxmock.NewRows(employeeColumns).
			AddRow(int64(1), "Ada", 34, "Engineering").
			AddRow(int64(2), "Grace", 45, "Research"))
	mock.ExpectCommit()

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.Employee{
		{ID: 1, Name: "Ada", Age: 34, Department: "Engineering"},
		{ID: 2, Name: "Grace", Age: 45, Department: "Research"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListEmptyTable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT employee_id, name, age, department")).
		WillReturnRows(pgxmock.NewRows(employeeColumns))
	mock.ExpectCommit()

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", got)
	}
}

func TestListConnectionFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT employee_id")).
		WillReturnError(errors.New("unexpected EOF"))
	mock.ExpectRollback()

	got, err := repo.List(context.Background())
	if got != nil {
		t.Fatalf("expected no rows, got %+v", got)
	}
	if !sqlerr.IsConnection(err) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}
