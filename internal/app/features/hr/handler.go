// internal/app/features/hr/handler.go
package hr

import (
	"context"
	"sort"
	"strings"
	"time"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/visaflow"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"go.uber.org/zap"
)

// API is the part of the backend the HR pages use.
type API interface {
	visaflow.API

	Employees(ctx context.Context, name string) ([]models.Employee, error)
	EmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	Applications(ctx context.Context, typ models.ApplicationType, status models.ApplicationStatus) ([]models.Application, error)
	ApplicationsByEmployeeID(ctx context.Context, employeeID string) ([]models.Application, error)
	DocumentsByEmployeeID(ctx context.Context, employeeID string) ([]models.Document, error)
	Houses(ctx context.Context) ([]models.House, error)
	House(ctx context.Context, id string) (*models.House, error)
	FacilityReports(ctx context.Context, houseID string) ([]models.FacilityReport, error)
}

type Handler struct {
	API        API
	Workflow   *visaflow.Workflow
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(api API, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		Workflow:   visaflow.New(api),
		SessionMgr: sm,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

// maxCommentLen caps review comments sent to the backend.
const maxCommentLen = 1000

// employeeIndex maps employee ids to records for joining names onto
// application lists.
type employeeIndex map[string]models.Employee

func (h *Handler) employeeIndex(ctx context.Context) (employeeIndex, error) {
	emps, err := h.API.Employees(ctx, "")
	if err != nil {
		return nil, err
	}
	idx := make(employeeIndex, len(emps))
	for _, e := range emps {
		idx[e.ID] = e
	}
	return idx, nil
}

// name returns the display name for id, or the id itself when the
// employee is unknown.
func (idx employeeIndex) name(id string) string {
	if e, ok := idx[id]; ok {
		if n := e.DisplayName(); n != "" {
			return n
		}
	}
	return id
}

func sortEmployees(emps []models.Employee) {
	sort.SliceStable(emps, func(i, j int) bool {
		li, lj := strings.ToLower(emps[i].LastName), strings.ToLower(emps[j].LastName)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(emps[i].FirstName) < strings.ToLower(emps[j].FirstName)
	})
}

// newestFirst sorts applications by creation time, newest first.
func newestFirst(apps []models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
