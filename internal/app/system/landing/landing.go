// Package landing decides where an employee lands after signing in, based on
// the state of their most recent onboarding application.
package landing

import (
	"context"
	"sort"

	"github.com/dalemusser/hrportal/internal/domain/models"
	"go.uber.org/zap"
)

// Landing routes.
const (
	OnboardingForm      = "/onboarding/form"
	OnboardingSubmitted = "/onboarding/submitted"
	OnboardingRejected  = "/onboarding/rejected"
	PersonalInfo        = "/employee/personal-info"
)

// Source is the slice of the backend the resolver reads from.
type Source interface {
	EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error)
	ApplicationsByEmployeeID(ctx context.Context, employeeID string) ([]models.Application, error)
}

// Result is the resolved landing route plus the employee context found on
// the way, so the caller can keep it in the session.
type Result struct {
	Target      string
	EmployeeID  string
	HouseID     string
	Application *models.Application
}

// Resolver maps a signed-in employee to a landing route.
type Resolver struct {
	src Source
	log *zap.Logger
}

// NewResolver builds a Resolver over src.
func NewResolver(src Source, logger *zap.Logger) *Resolver {
	return &Resolver{src: src, log: logger}
}

// Resolve returns the landing route for userID. A non-empty redirect wins
// over the computed route; callers must have vetted it already. Backend
// failures never surface: they are logged and the employee is sent to the
// onboarding form.
func (rv *Resolver) Resolve(ctx context.Context, userID, redirect string) Result {
	res := rv.resolve(ctx, userID)
	if redirect != "" {
		res.Target = redirect
	}
	return res
}

func (rv *Resolver) resolve(ctx context.Context, userID string) Result {
	res := Result{Target: OnboardingForm}

	emp, err := rv.src.EmployeeByUserID(ctx, userID)
	if err != nil {
		rv.log.Warn("resolve landing: employee lookup failed",
			zap.String("user_id", userID), zap.Error(err))
		return res
	}
	if emp == nil || emp.ID == "" {
		return res
	}
	res.EmployeeID = emp.ID
	res.HouseID = emp.HouseID

	apps, err := rv.src.ApplicationsByEmployeeID(ctx, emp.ID)
	if err != nil {
		rv.log.Warn("resolve landing: application lookup failed",
			zap.String("employee_id", emp.ID), zap.Error(err))
		return res
	}

	latest := Latest(apps)
	if latest == nil {
		return res
	}
	res.Application = latest
	res.Target = TargetFor(latest.Status)
	return res
}

// TargetFor maps an onboarding application status to its landing route.
func TargetFor(status models.ApplicationStatus) string {
	switch status {
	case models.StatusApproved:
		return PersonalInfo
	case models.StatusRejected:
		return OnboardingRejected
	case models.StatusPending:
		return OnboardingSubmitted
	}
	return OnboardingForm
}

// Latest returns the newest onboarding application in apps, or the newest
// application of any type when there is no onboarding one. Ties on the
// creation time keep the order the backend returned. apps is not modified.
func Latest(apps []models.Application) *models.Application {
	var pool []models.Application
	for _, a := range apps {
		if a.Type == models.ApplicationOnboarding {
			pool = append(pool, a)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, apps...)
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].CreatedAt.After(pool[j].CreatedAt)
	})
	latest := pool[0]
	return &latest
}
