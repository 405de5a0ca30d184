// internal/app/features/hr/visa.go
package hr

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/docfile"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/navigation"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/app/system/visaflow"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type visaRow struct {
	visaflow.Row
	Name      string
	VisaTitle string
	VisaEnd   string
	Comment   string
}

type visaData struct {
	viewdata.BaseVM
	Rows []visaRow
}

// visaRows loads every OPT application with the documents of its employee.
// Documents are fetched once per employee, in application order.
func (h *Handler) visaRows(ctx context.Context) ([]visaflow.Row, error) {
	apps, err := h.API.Applications(ctx, models.ApplicationOPT, "")
	if err != nil {
		return nil, err
	}
	newestFirst(apps)

	var docs []models.Document
	seen := make(map[string]bool)
	for _, a := range apps {
		if seen[a.EmployeeID] {
			continue
		}
		seen[a.EmployeeID] = true
		d, err := h.API.DocumentsByEmployeeID(ctx, a.EmployeeID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d...)
	}
	return visaflow.BuildRows(apps, docs), nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /hr/visa                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeVisa shows one row per visa workflow. Rows whose current document
// has not been uploaded stay in the table with their controls disabled.
func (h *Handler) ServeVisa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.visaRows(ctx)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr visa: load workflows", err, "")
		return
	}
	idx, err := h.employeeIndex(ctx)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr visa: load employees", err, "")
		return
	}

	data := visaData{Rows: make([]visaRow, 0, len(rows))}
	for _, row := range rows {
		e := idx[row.Application.EmployeeID]
		data.Rows = append(data.Rows, visaRow{
			Row:       row,
			Name:      idx.name(row.Application.EmployeeID),
			VisaTitle: e.VisaTitle,
			VisaEnd:   formatDate(e.VisaEnd),
			Comment:   htmlsanitize.PlainText(row.Application.Comment),
		})
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Visa workflows", auth.HRHome)
	templates.Render(w, r, "hr_visa", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /hr/visa/{id}/approve | /reject                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleVisaApprove(w http.ResponseWriter, r *http.Request) {
	h.reviewVisa(w, r, true)
}

func (h *Handler) HandleVisaReject(w http.ResponseWriter, r *http.Request) {
	h.reviewVisa(w, r, false)
}

// reviewVisa approves or rejects the document posted for an application's
// current step. The row is re-read from the backend first so a stale page
// cannot act on a step that has already moved.
func (h *Handler) reviewVisa(w http.ResponseWriter, r *http.Request, approve bool) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "hr visa review: parse", err, "Invalid form submission.", navigation.HRVisaBackURL.Fallback)
		return
	}
	back := navigation.SafeBackURL(r, navigation.HRVisaBackURL)

	comment := htmlsanitize.PlainText(r.PostFormValue("comment"))
	if !approve && comment == "" {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "Add a comment explaining why the document was rejected.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if len(comment) > maxCommentLen {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "The comment is too long.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	apps, err := h.API.Applications(ctx, models.ApplicationOPT, "")
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr visa review: load applications", err, back)
		return
	}
	var app *models.Application
	for i := range apps {
		if apps[i].ID == id {
			app = &apps[i]
			break
		}
	}
	if app == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "That visa workflow no longer exists.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	docs, err := h.API.DocumentsByEmployeeID(ctx, app.EmployeeID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr visa review: load documents", err, back)
		return
	}
	docID := r.PostFormValue("document")
	var doc *models.Document
	for i := range docs {
		if docs[i].ID == docID {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "That document no longer exists.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	step := visaflow.CurrentStep(*app)
	next := step
	if approve {
		next, err = h.Workflow.Approve(ctx, *app, *doc, comment)
	} else {
		err = h.Workflow.Reject(ctx, *app, *doc, comment)
	}
	switch {
	case errors.Is(err, visaflow.ErrComplete):
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "This visa workflow is already complete.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	case errors.Is(err, visaflow.ErrNotActionable):
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "That document is not the one awaiting review. The table has been refreshed.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.HandleAPIError(w, r, "hr visa review: submit", err, back)
		return
	}

	h.AuditLog.VisaStepReviewed(ctx, r, u.ID, app.EmployeeID, app.ID, approve, string(step), string(next))
	h.Log.Info("visa step reviewed",
		zap.String("actor_id", u.ID),
		zap.String("application_id", app.ID),
		zap.String("step", string(step)),
		zap.String("next", string(next)),
		zap.Bool("approved", approve))

	msg := string(step) + " rejected. The employee has been asked to resubmit."
	if approve {
		msg = string(step) + " approved."
		if next == models.StepTerminate {
			msg += " The visa workflow is complete."
		} else {
			msg += " Next document: " + string(next) + "."
		}
	}
	h.SessionMgr.AddNotice(w, r, auth.NoticeSuccess, msg)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /hr/documents/{id}                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDocument streams any employee document to HR.
func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, err := h.API.DownloadDocument(r.Context(), id)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr document: download", err, navigation.HRVisaBackURL.Fallback)
		return
	}
	docfile.Serve(w, *file)
}
