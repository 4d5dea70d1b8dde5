package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	"github.com/Prashantkhobragade/CRUD-ops/internal/model"
	"github.com/Prashantkhobragade/CRUD-ops/internal/validation"
	"github.com/rs/zerolog"
)

// EmployeeStore persists and lists employees.
type EmployeeStore interface {
	Create(ctx context.Context, in model.NewEmployee) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
}

// SchemaInitializer makes sure the employees table exists.
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

type EmployeeService struct {
	store  EmployeeStore
	schema SchemaInitializer
	limits config.EmployeeConfig
	logger *zerolog.Logger
}

func NewEmployeeService(store EmployeeStore, schema SchemaInitializer, limits config.EmployeeConfig, logger *zerolog.Logger) *EmployeeService {
	return &EmployeeService{
		store:  store,
		schema: schema,
		limits: limits,
		logger: logger,
	}
}

// CreateEmployee checks the column limits and stores the employee.
// Values are stored exactly as given.
func (s *EmployeeService) CreateEmployee(ctx context.Context, req *model.CreateEmployeeRequest) (*model.Employee, error) {
	if err := s.checkLimits(req); err != nil {
		return nil, err
	}

	employee, err := s.store.Create(ctx, req.ToNewEmployee())
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().
		Int64("employee_id", employee.ID).
		Str("department", employee.Department).
		Msg("employee created")

	return employee, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.store.List(ctx)
}

func (s *EmployeeService) EnsureSchema(ctx context.Context) error {
	return s.schema.EnsureSchema(ctx)
}

// log prefers the request-scoped logger carried by ctx.
func (s *EmployeeService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// checkLimits rejects values longer than the table columns, counted in
// characters the way VARCHAR(n) counts them.
func (s *EmployeeService) checkLimits(req *model.CreateEmployeeRequest) error {
	var violations validation.CustomValidationErrors

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", req.Name, s.limits.NameMaxLength},
		{"department", req.Department, s.limits.DepartmentMaxLength},
	}

	for _, f := range fields {
		switch {
		case strings.ContainsRune(f.value, 0):
			// Postgres text columns cannot store NUL.
			violations = append(violations, validation.CustomValidationError{
				Field:   f.name,
				Message: "must not contain NUL characters",
			})
		case utf8.RuneCountInString(f.value) > f.max:
			violations = append(violations, validation.CustomValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("must not exceed %d characters", f.max),
			})
		}
	}

	if len(violations) > 0 {
		return validation.NewError(violations)
	}
	return nil
}
