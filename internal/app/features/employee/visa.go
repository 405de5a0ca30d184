// internal/app/features/employee/visa.go
package employee

import (
	"net/http"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/docfile"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/app/system/visaflow"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const visaPath = "/employee/visa"

// stepHints tell the employee what to upload for each step.
var stepHints = map[models.VisaStep]string{
	models.StepI983:       "Upload your signed I-983 training plan.",
	models.StepI20:        "Upload the I-20 issued by your school after the I-983 was filed.",
	models.StepOPTReceipt: "Upload the USCIS receipt notice for your OPT application.",
	models.StepSTEMEAD:    "Upload both sides of your STEM OPT EAD card.",
}

type visaData struct {
	viewdata.BaseVM

	HasWorkflow bool
	Application *models.Application
	Current     models.VisaStep
	Done        bool
	Steps       []visaflow.StepState

	StepDocument *models.Document // newest upload for the current step
	Documents    []models.Document
	CanUpload    bool
	UploadHint   string
	HRComment    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /employee/visa                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeVisa(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "visa: load employee", err, "")
		return
	}

	var data visaData
	if emp != nil {
		apps, err := h.API.ApplicationsByEmployeeID(ctx, emp.ID)
		if err != nil {
			h.ErrLog.HandleAPIError(w, r, "visa: load applications", err, "")
			return
		}
		docs, err := h.API.DocumentsByEmployeeID(ctx, emp.ID)
		if err != nil {
			h.ErrLog.HandleAPIError(w, r, "visa: load documents", err, "")
			return
		}
		data.Documents = docs

		if app := latestOfType(apps, models.ApplicationOPT); app != nil {
			data.HasWorkflow = true
			data.Application = app
			data.Current = visaflow.CurrentStep(*app)
			data.Done = visaflow.Done(*app)
			data.Steps = visaflow.Progress(*app)
			data.StepDocument = visaflow.StepDocument(*app, docs)
			data.CanUpload = visaflow.NeedsUpload(*app, data.StepDocument)
			data.UploadHint = stepHints[data.Current]
			if data.StepDocument != nil && data.StepDocument.Status == models.DocumentRejected {
				data.HRComment = htmlsanitize.PlainText(app.Comment)
			}
		}
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Visa status", auth.EmployeeHome)
	templates.Render(w, r, "employee_visa", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /employee/visa                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleVisaUpload stores a document for the application's current step.
// Only one submission per step may wait for review at a time.
func (h *Handler) HandleVisaUpload(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "visa upload: load employee", err, visaPath)
		return
	}
	if emp == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "You do not have a visa workflow.")
		http.Redirect(w, r, visaPath, http.StatusSeeOther)
		return
	}

	apps, err := h.API.ApplicationsByEmployeeID(ctx, emp.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "visa upload: load applications", err, visaPath)
		return
	}
	app := latestOfType(apps, models.ApplicationOPT)
	if app == nil || visaflow.Done(*app) {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "There is no document to upload right now.")
		http.Redirect(w, r, visaPath, http.StatusSeeOther)
		return
	}

	docs, err := h.API.DocumentsByEmployeeID(ctx, emp.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "visa upload: load documents", err, visaPath)
		return
	}
	if !visaflow.NeedsUpload(*app, visaflow.StepDocument(*app, docs)) {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "Your document for this step is waiting for HR review.")
		http.Redirect(w, r, visaPath, http.StatusSeeOther)
		return
	}

	file, err := docfile.Read(w, r, "file")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "visa upload: read file", err, docfile.UserMessage(err), visaPath)
		return
	}

	step := visaflow.CurrentStep(*app)
	doc, err := h.API.UploadDocument(ctx, file, models.DocumentMetadata{
		EmployeeID: emp.ID,
		Type:       string(step),
		Title:      string(step),
		Status:     models.DocumentPending,
	})
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "visa upload: store document", err, visaPath)
		return
	}

	h.AuditLog.DocumentUploaded(ctx, r, u.ID, emp.ID, string(step))
	h.Log.Info("visa document uploaded",
		zap.String("employee_id", emp.ID),
		zap.String("document_id", doc.ID),
		zap.String("step", string(step)))
	h.SessionMgr.AddNotice(w, r, auth.NoticeSuccess, "Your "+string(step)+" was uploaded and is waiting for HR review.")
	http.Redirect(w, r, visaPath, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /employee/documents/{id}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDocument streams one of the signed-in employee's own documents.
func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "document: load employee", err, visaPath)
		return
	}
	if emp == nil {
		uierrors.RenderError(w, r, h.SessionMgr, http.StatusNotFound, "Not found", "That document does not exist.")
		return
	}

	docs, err := h.API.DocumentsByEmployeeID(ctx, emp.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "document: load documents", err, visaPath)
		return
	}
	var doc *models.Document
	for i := range docs {
		if docs[i].ID == id {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		uierrors.RenderError(w, r, h.SessionMgr, http.StatusNotFound, "Not found", "That document does not exist.")
		return
	}

	file, err := h.API.DownloadDocument(ctx, doc.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "document: download", err, visaPath)
		return
	}
	if file.Filename == "" {
		file.Filename = doc.Filename
	}
	docfile.Serve(w, *file)
}
