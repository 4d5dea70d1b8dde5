package repository

import (
	"github.com/Prashantkhobragade/CRUD-ops/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Employee *EmployeeRepository
}

// NewRepositories builds every repository on top of the server's database.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Employee: NewEmployeeRepository(s.DB),
	}
}
