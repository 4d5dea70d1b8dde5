package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	"github.com/Prashantkhobragade/CRUD-ops/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const opEnsureSchema = "schema.ensure"

// EmployeesTableDDL renders the CREATE TABLE statement for the employees
// table. Column widths come from the configured limits.
func EmployeesTableDDL(limits config.EmployeeConfig) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS employees (
	employee_id SERIAL PRIMARY KEY,
	name VARCHAR(%d) NOT NULL,
	age INT NOT NULL,
	department VARCHAR(%d) NOT NULL
)`, limits.NameMaxLength, limits.DepartmentMaxLength)
}

// EnsureSchema creates the employees table if it does not exist.
//
// Behavior:
//   - Runs the DDL in its own transaction on one pooled connection
//   - An existing table is left untouched (rows and layout)
//   - Losing a creation race to another session counts as success
//   - A statement rejected by the server is a schema error; failing to reach
//     the server is a connection error
//
// It is safe to call any number of times.
func (db *Database) EnsureSchema(ctx context.Context) error {
	ddl := EmployeesTableDDL(db.employee)

	err := db.WithTx(ctx, opEnsureSchema, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, ddl)
		if err == nil || sqlerr.IsAlreadyExists(err) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return sqlerr.Schema(opEnsureSchema, err)
		}
		return sqlerr.Connection(opEnsureSchema, err)
	})

	if sqlerr.IsAlreadyExists(err) {
		db.log.Info().Msg("employees table created concurrently by another session")
		return nil
	}
	if err != nil {
		db.log.Error().Err(err).Msg("failed to ensure employees table")
		return err
	}

	db.log.Info().
		Int("name_max_length", db.employee.NameMaxLength).
		Int("department_max_length", db.employee.DepartmentMaxLength).
		Msg("employees table is ready")

	return nil
}
