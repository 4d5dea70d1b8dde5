package repository

import (
	"context"

	"github.com/Prashantkhobragade/CRUD-ops/internal/database"
	"github.com/Prashantkhobragade/CRUD-ops/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	opCreateEmployee = "employees.create"
	opListEmployees  = "employees.list"

	insertEmployeeSQL = `INSERT INTO employees (name, age, department)
VALUES ($1, $2, $3)
RETURNING employee_id`

	listEmployeesSQL = `SELECT employee_id, name, age, department
FROM employees
ORDER BY employee_id ASC`
)

// EmployeeRepository reads and writes rows of the employees table.
type EmployeeRepository struct {
	db *database.Database
}

func NewEmployeeRepository(db *database.Database) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts one employee and returns it with the identifier the store
// assigned. The insert is committed before Create returns; on failure nothing
// is persisted.
//
// Errors: connection failures, and integrity failures when the store rejects
// the values (constraint violation, value too long, ...).
func (r *EmployeeRepository) Create(ctx context.Context, in model.NewEmployee) (*model.Employee, error) {
	employee := model.Employee{
		Name:       in.Name,
		Age:        in.Age,
		Department: in.Department,
	}

	err := r.db.WithTx(ctx, opCreateEmployee, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, insertEmployeeSQL, in.Name, in.Age, in.Department).Scan(&employee.ID)
	})
	if err != nil {
		return nil, err
	}

	return &employee, nil
}

// List returns every employee ordered by identifier. An empty table yields an
// empty, non-nil slice.
func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee

	err := r.db.WithTx(ctx, opListEmployees, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, listEmployeesSQL)
		if err != nil {
			return err
		}

		employees, err = pgx.CollectRows(rows, scanEmployee)
		return err
	})
	if err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []model.Employee{}
	}
	return employees, nil
}

func scanEmployee(row pgx.CollectableRow) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Age, &e.Department)
	return e, err
}
