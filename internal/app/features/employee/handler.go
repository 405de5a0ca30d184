// internal/app/features/employee/handler.go
package employee

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"go.uber.org/zap"
)

// API is the part of the backend the self-service pages use.
type API interface {
	EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error)
	EmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, e models.Employee) (*models.Employee, error)
	ApplicationsByEmployeeID(ctx context.Context, employeeID string) ([]models.Application, error)
	DocumentsByEmployeeID(ctx context.Context, employeeID string) ([]models.Document, error)
	DownloadDocument(ctx context.Context, id string) (*models.FileUpload, error)
	UploadDocument(ctx context.Context, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error)
	House(ctx context.Context, id string) (*models.House, error)
	FacilityReports(ctx context.Context, houseID string) ([]models.FacilityReport, error)
	CreateFacilityReport(ctx context.Context, rep models.FacilityReport) (*models.FacilityReport, error)
}

type Handler struct {
	API        API
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(api API, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		SessionMgr: sm,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

// employee returns the signed-in user's employee record, or nil when the
// user has none yet (HR staff, or before the first onboarding submission).
// The id stored at sign-in is used when present.
func (h *Handler) employee(ctx context.Context, u *auth.SessionUser) (*models.Employee, error) {
	var (
		emp *models.Employee
		err error
	)
	if u.EmployeeID != "" {
		emp, err = h.API.EmployeeByID(ctx, u.EmployeeID)
	} else {
		emp, err = h.API.EmployeeByUserID(ctx, u.ID)
	}
	if backend.IsNotFound(err) {
		return nil, nil
	}
	return emp, err
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
