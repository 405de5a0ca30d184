// internal/app/system/backend/employees.go
package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// EmployeeByUserID returns the employee record of a user account. It fails
// with a 404 *APIError when the user has not started onboarding.
func (c *Client) EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	var out models.Employee
	if err := c.call(ctx, http.MethodGet, "/employees/user/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmployeeByID returns one employee.
func (c *Client) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	var out models.Employee
	if err := c.call(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Employees lists employees, optionally filtered by a name fragment.
func (c *Client) Employees(ctx context.Context, name string) ([]models.Employee, error) {
	var q url.Values
	if name = strings.TrimSpace(name); name != "" {
		q = url.Values{"name": {name}}
	}
	var out []models.Employee
	if err := c.call(ctx, http.MethodGet, "/employees", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateEmployee saves the editable personal-info fields.
func (c *Client) UpdateEmployee(ctx context.Context, e models.Employee) (*models.Employee, error) {
	var out models.Employee
	if err := c.call(ctx, http.MethodPut, "/employees/"+url.PathEscape(e.ID), nil, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
