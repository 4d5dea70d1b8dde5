// Package model holds the employee record and the request/response shapes
// exchanged with API clients.
package model

import (
	"github.com/Prashantkhobragade/CRUD-ops/internal/validation"
)

// Employee is a persisted employee record.
//
// ID is assigned by the store on insert and never changes afterwards.
type Employee struct {
	ID         int64  `json:"employee_id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Department string `json:"department"`
}

// NewEmployee carries the caller-supplied fields of an insert.
// It has no ID: the store generates one on insert.
type NewEmployee struct {
	Name       string
	Age        int
	Department string
}

// CreateEmployeeRequest is the body of POST /employee/.
//
// Age is a pointer so an absent age is distinguishable from zero. Its upper
// bound is the range of the INT column.
// Any employee_id sent by the client is ignored.
type CreateEmployeeRequest struct {
	Name       string `json:"name" validate:"required"`
	Age        *int   `json:"age" validate:"required,min=0,max=2147483647"`
	Department string `json:"department" validate:"required"`
}

func (r *CreateEmployeeRequest) Validate() error {
	return validation.Struct(r)
}

// ToNewEmployee converts a validated request into insert input.
func (r *CreateEmployeeRequest) ToNewEmployee() NewEmployee {
	return NewEmployee{
		Name:       r.Name,
		Age:        *r.Age,
		Department: r.Department,
	}
}

// ListEmployeesRequest is the (empty) input of GET /employees/.
type ListEmployeesRequest struct{}

func (r *ListEmployeesRequest) Validate() error { return nil }

// EnsureSchemaRequest is the (empty) input of POST /create_table/.
type EnsureSchemaRequest struct{}

func (r *EnsureSchemaRequest) Validate() error { return nil }

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
