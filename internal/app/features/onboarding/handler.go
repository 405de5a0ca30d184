// internal/app/features/onboarding/handler.go
package onboarding

import (
	"context"
	"errors"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"go.uber.org/zap"
)

// API is the part of the backend the onboarding pages use.
type API interface {
	landing.Source
	CreateApplication(ctx context.Context, form models.OnboardingForm) (*models.Application, error)
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

// employee loads the signed-in user's employee record. A missing record is
// not an error: it is created by the first onboarding submission.
func (h *Handler) employee(ctx context.Context, u *auth.SessionUser) (*models.Employee, error) {
	emp, err := h.API.EmployeeByUserID(ctx, u.ID)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return emp, nil
}

// latest returns the newest onboarding application of employeeID, or nil.
func (h *Handler) latest(ctx context.Context, employeeID string) (*models.Application, error) {
	if employeeID == "" {
		return nil, nil
	}
	apps, err := h.API.ApplicationsByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return landing.Latest(apps), nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized)
}
