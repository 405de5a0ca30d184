// internal/app/features/hr/houses.go
package hr

import (
	"net/http"
	"sort"
	"strings"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

type houseRow struct {
	ID        string
	Address   string
	Landlord  string
	Residents int
	Capacity  int
	Full      bool
}

type housesData struct {
	viewdata.BaseVM
	Rows []houseRow
}

// ServeHouses handles GET /hr/houses.
func (h *Handler) ServeHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := h.API.Houses(r.Context())
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr houses: load", err, "")
		return
	}
	sort.SliceStable(houses, func(i, j int) bool {
		return strings.ToLower(houses[i].Address) < strings.ToLower(houses[j].Address)
	})

	data := housesData{Rows: make([]houseRow, 0, len(houses))}
	for _, hs := range houses {
		data.Rows = append(data.Rows, houseRow{
			ID:        hs.ID,
			Address:   hs.Address,
			Landlord:  hs.Landlord,
			Residents: len(hs.Residents),
			Capacity:  hs.Capacity,
			Full:      hs.Capacity > 0 && len(hs.Residents) >= hs.Capacity,
		})
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Houses", auth.HRHome)
	templates.Render(w, r, "hr_houses", data)
}

type houseData struct {
	viewdata.BaseVM
	House     *models.House
	Residents []models.Employee
	Reports   []models.FacilityReport
}

// ServeHouse handles GET /hr/houses/{id}: residents and facility reports.
func (h *Handler) ServeHouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	house, err := h.API.House(ctx, id)
	if backend.IsNotFound(err) {
		uierrors.RenderError(w, r, h.SessionMgr, http.StatusNotFound, "Not found", "That house does not exist.")
		return
	}
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr house: load", err, "")
		return
	}
	reports, err := h.API.FacilityReports(ctx, house.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr house: load reports", err, "")
		return
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	residents := append([]models.Employee(nil), house.Residents...)
	sortEmployees(residents)

	data := houseData{House: house, Residents: residents, Reports: reports}
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, house.Address, "/hr/houses")
	templates.Render(w, r, "hr_house", data)
}
