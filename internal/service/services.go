package service

import (
	"github.com/Prashantkhobragade/CRUD-ops/internal/repository"
	"github.com/Prashantkhobragade/CRUD-ops/internal/server"
)

type Services struct {
	Employee *EmployeeService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	employeeService := NewEmployeeService(repos.Employee, s.DB, s.Config.Employee, s.Logger)

	return &Services{
		Employee: employeeService,
	}, nil
}
