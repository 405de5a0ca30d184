// Package visaflow implements the staged OPT document review: the ordered
// list of required documents, the pointer stored on the application, and the
// HR approve and reject actions.
package visaflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// Sequence is the order in which visa documents are reviewed.
var Sequence = []models.VisaStep{
	models.StepI983,
	models.StepI20,
	models.StepOPTReceipt,
	models.StepSTEMEAD,
}

// ErrComplete is returned for review actions on a finished workflow.
var ErrComplete = errors.New("visaflow: workflow complete")

// ErrNotActionable is returned when the document is not the one the
// workflow is waiting for.
var ErrNotActionable = errors.New("visaflow: document is not under review")

// CurrentStep returns the step the application is waiting on. A missing or
// unrecognized stored value means the workflow has not started.
func CurrentStep(app models.Application) models.VisaStep {
	if step, ok := models.ParseVisaStep(app.VisaStep); ok {
		return step
	}
	return Sequence[0]
}

// Advance returns the step after step. The last step, Terminate and unknown
// values all advance to Terminate.
func Advance(step models.VisaStep) models.VisaStep {
	for i, s := range Sequence {
		if s == step && i+1 < len(Sequence) {
			return Sequence[i+1]
		}
	}
	return models.StepTerminate
}

// Done reports whether the application has finished its visa workflow.
func Done(app models.Application) bool {
	return CurrentStep(app) == models.StepTerminate
}

// Actionable reports whether HR may approve or reject doc for app right now.
func Actionable(app models.Application, doc models.Document) bool {
	step := CurrentStep(app)
	if step == models.StepTerminate {
		return false
	}
	docStep, ok := models.ParseVisaStep(doc.Type)
	return ok && docStep == step && doc.EmployeeID == app.EmployeeID
}

// Reviewable reports whether doc is actionable and still awaits a decision.
// A rejected document stays rejected until the employee uploads a new one.
func Reviewable(app models.Application, doc models.Document) bool {
	return Actionable(app, doc) && doc.Status != models.DocumentRejected
}

// API is the backend surface the workflow writes through.
type API interface {
	UpdateApplication(ctx context.Context, id string, upd models.ApplicationUpdate) (*models.Application, error)
	DownloadDocument(ctx context.Context, id string) (*models.FileUpload, error)
	UpdateDocument(ctx context.Context, id string, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error)
	ApproveApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error)
	RejectApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error)
}

// Workflow performs review actions against the backend. It holds no state;
// the application record is the only source of truth for the pointer.
type Workflow struct {
	api API
}

// New returns a Workflow writing through api.
func New(api API) *Workflow {
	return &Workflow{api: api}
}

// Approve accepts doc for the application's current step and moves the
// pointer to the next step. The returned step is the one now stored on the
// backend. When a later call fails the pointer is moved back so the same
// document can be reviewed again; if that also fails the returned step is
// the advanced one and the error carries both causes.
func (wf *Workflow) Approve(ctx context.Context, app models.Application, doc models.Document, comment string) (models.VisaStep, error) {
	current := CurrentStep(app)
	if current == models.StepTerminate {
		return current, ErrComplete
	}
	if !Reviewable(app, doc) {
		return current, ErrNotActionable
	}

	next := Advance(current)
	if err := wf.setStep(ctx, app.ID, next); err != nil {
		return current, fmt.Errorf("advance visa step: %w", err)
	}
	err := wf.relabel(ctx, doc, models.DocumentApproved, comment)
	if err == nil {
		if _, aerr := wf.api.ApproveApplication(ctx, app.ID, models.ReviewRequest{Comment: comment}); aerr != nil {
			err = fmt.Errorf("approve application: %w", aerr)
		}
	}
	if err == nil {
		return next, nil
	}
	// The restore runs even if the caller has gone away.
	if rerr := wf.setStep(context.WithoutCancel(ctx), app.ID, current); rerr != nil {
		return next, errors.Join(err, fmt.Errorf("restore visa step %s: %w", current, rerr))
	}
	return current, err
}

func (wf *Workflow) setStep(ctx context.Context, id string, step models.VisaStep) error {
	stored := string(step)
	_, err := wf.api.UpdateApplication(ctx, id, models.ApplicationUpdate{VisaStep: &stored})
	return err
}

// Reject marks doc as rejected and notifies the employee. The pointer does
// not move: the employee resubmits the same step.
func (wf *Workflow) Reject(ctx context.Context, app models.Application, doc models.Document, comment string) error {
	if Done(app) {
		return ErrComplete
	}
	if !Reviewable(app, doc) {
		return ErrNotActionable
	}
	if err := wf.relabel(ctx, doc, models.DocumentRejected, comment); err != nil {
		return err
	}
	if _, err := wf.api.RejectApplication(ctx, app.ID, models.ReviewRequest{Comment: comment}); err != nil {
		return fmt.Errorf("reject application: %w", err)
	}
	return nil
}

// relabel re-uploads doc with a new review status. The backend only accepts
// document updates as a full multipart submission.
func (wf *Workflow) relabel(ctx context.Context, doc models.Document, status models.DocumentStatus, comment string) error {
	file, err := wf.api.DownloadDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("download document: %w", err)
	}
	if file.Filename == "" {
		file.Filename = doc.Filename
	}
	meta := models.DocumentMetadata{
		EmployeeID: doc.EmployeeID,
		Type:       doc.Type,
		Title:      doc.Title,
		Status:     status,
		Comment:    comment,
	}
	if _, err := wf.api.UpdateDocument(ctx, doc.ID, *file, meta); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}
