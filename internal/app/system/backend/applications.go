// internal/app/system/backend/applications.go
package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// ApplicationsByEmployeeID lists the applications of one employee. The order
// is whatever the backend returns; callers sort when order matters.
func (c *Client) ApplicationsByEmployeeID(ctx context.Context, employeeID string) ([]models.Application, error) {
	var out []models.Application
	if err := c.call(ctx, http.MethodGet, "/applications/employee/"+url.PathEscape(employeeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Applications lists applications of a type, optionally by status.
func (c *Client) Applications(ctx context.Context, typ models.ApplicationType, status models.ApplicationStatus) ([]models.Application, error) {
	q := url.Values{"type": {string(typ)}}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []models.Application
	if err := c.call(ctx, http.MethodGet, "/applications", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateApplication submits an onboarding form and returns the new
// application.
func (c *Client) CreateApplication(ctx context.Context, form models.OnboardingForm) (*models.Application, error) {
	var out models.Application
	if err := c.call(ctx, http.MethodPost, "/applications", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveApplication approves an application. The backend sends the
// employee notification.
func (c *Client) ApproveApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error) {
	return c.review(ctx, id, "approve", req)
}

// RejectApplication rejects an application with HR feedback.
func (c *Client) RejectApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error) {
	return c.review(ctx, id, "reject", req)
}

func (c *Client) review(ctx context.Context, id, action string, req models.ReviewRequest) (*models.ReviewResult, error) {
	var out models.ReviewResult
	if err := c.call(ctx, http.MethodPost, "/applications/"+url.PathEscape(id)+"/"+action, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateApplication patches the mutable fields of an application.
func (c *Client) UpdateApplication(ctx context.Context, id string, upd models.ApplicationUpdate) (*models.Application, error) {
	var out models.Application
	if err := c.call(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id), nil, upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
