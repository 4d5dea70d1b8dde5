package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func intPtr(v int) *int { return &v }

func TestCreateEmployeeRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateEmployeeRequest
		wantField string
	}{
		{"valid", CreateEmployeeRequest{Name: "Ada", Age: intPtr(34), Department: "Engineering"}, ""},
		{"zero age is allowed", CreateEmployeeRequest{Name: "Ada", Age: intPtr(0), Department: "Engineering"}, ""},
		{"missing name", CreateEmployeeRequest{Age: intPtr(34), Department: "Engineering"}, "Name"},
		{"missing age", CreateEmployeeRequest{Name: "Ada", Department: "Engineering"}, "Age"},
		{"negative age", CreateEmployeeRequest{Name: "Ada", Age: intPtr(-1), Department: "Engineering"}, "Age"},
		{"age at int column limit", CreateEmployeeRequest{Name: "Ada", Age: intPtr(2147483647), Department: "Engineering"}, ""},
		{"age beyond int column", CreateEmployeeRequest{Name: "Ada", Age: intPtr(2147483648), Department: "Engineering"}, "Age"},
		{"missing department", CreateEmployeeRequest{Name: "Ada", Age: intPtr(34)}, "Department"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				t.Fatalf("expected validator errors, got %v", err)
			}
			if validationErrors[0].Field() != tt.wantField {
				t.Fatalf("expected %s to fail, got %s", tt.wantField, validationErrors[0].Field())
			}
		})
	}
}

func TestEmployeeJSONShape(t *testing.T) {
	raw, err := json.Marshal(Employee{ID: 1, Name: "Ada", Age: 34, Department: "Engineering"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"employee_id":1,"name":"Ada","age":34,"department":"Engineering"}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestCreateRequestIgnoresEmployeeID(t *testing.T) {
	var req CreateEmployeeRequest
	body := `{"employee_id":99,"name":"Ada","age":34,"department":"Engineering"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in := req.ToNewEmployee()
	if in.Name != "Ada" || in.Age != 34 || in.Department != "Engineering" {
		t.Fatalf("unexpected insert input %+v", in)
	}
}
