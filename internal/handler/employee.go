package handler

import (
	"github.com/Prashantkhobragade/CRUD-ops/internal/model"
	"github.com/Prashantkhobragade/CRUD-ops/internal/server"
	"github.com/Prashantkhobragade/CRUD-ops/internal/service"
	"github.com/labstack/echo/v4"
)

// EmployeeHandler serves the employee endpoints.
type EmployeeHandler struct {
	Handler
	employees *service.EmployeeService
}

func NewEmployeeHandler(s *server.Server, employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		Handler:   NewHandler(s),
		employees: employees,
	}
}

// CreateTable makes sure the employees table exists.
func (h *EmployeeHandler) CreateTable(c echo.Context, _ *model.EnsureSchemaRequest) (*model.MessageResponse, error) {
	if err := h.employees.EnsureSchema(c.Request().Context()); err != nil {
		return nil, err
	}
	return &model.MessageResponse{Message: "employees table is ready"}, nil
}

func (h *EmployeeHandler) CreateEmployee(c echo.Context, req *model.CreateEmployeeRequest) (*model.Employee, error) {
	return h.employees.CreateEmployee(c.Request().Context(), req)
}

func (h *EmployeeHandler) ListEmployees(c echo.Context, _ *model.ListEmployeesRequest) ([]model.Employee, error) {
	return h.employees.ListEmployees(c.Request().Context())
}
