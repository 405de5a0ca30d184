// internal/app/system/backend/houses.go
package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// Houses lists all company houses (HR).
func (c *Client) Houses(ctx context.Context) ([]models.House, error) {
	var out []models.House
	if err := c.call(ctx, http.MethodGet, "/houses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// House returns one house with its residents.
func (c *Client) House(ctx context.Context, id string) (*models.House, error) {
	var out models.House
	if err := c.call(ctx, http.MethodGet, "/houses/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FacilityReports lists the maintenance reports of a house.
func (c *Client) FacilityReports(ctx context.Context, houseID string) ([]models.FacilityReport, error) {
	var out []models.FacilityReport
	if err := c.call(ctx, http.MethodGet, "/houses/"+url.PathEscape(houseID)+"/reports", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFacilityReport files a new maintenance report.
func (c *Client) CreateFacilityReport(ctx context.Context, rep models.FacilityReport) (*models.FacilityReport, error) {
	var out models.FacilityReport
	if err := c.call(ctx, http.MethodPost, "/houses/"+url.PathEscape(rep.HouseID)+"/reports", nil, rep, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
