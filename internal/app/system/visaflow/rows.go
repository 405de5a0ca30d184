package visaflow

import (
	"sort"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// Row is one line of the HR visa review table.
type Row struct {
	Application models.Application
	Step        models.VisaStep
	Document    *models.Document // nil while the employee has not uploaded it
	Actionable  bool
}

// Awaiting reports whether the row is waiting for an employee upload.
func (r Row) Awaiting() bool {
	return NeedsUpload(r.Application, r.Document)
}

// Done reports whether the row's workflow is finished.
func (r Row) Done() bool { return r.Step == models.StepTerminate }

// BuildRows returns a row per OPT application in apps, in input order. The
// document shown is the newest one matching the current step; applications
// with no such document, or whose document was rejected and not yet
// replaced, stay in the table with controls disabled.
func BuildRows(apps []models.Application, docs []models.Document) []Row {
	byEmployee := make(map[string][]models.Document)
	for _, d := range docs {
		byEmployee[d.EmployeeID] = append(byEmployee[d.EmployeeID], d)
	}

	rows := make([]Row, 0, len(apps))
	for _, app := range apps {
		if app.Type != models.ApplicationOPT {
			continue
		}
		row := Row{Application: app, Step: CurrentStep(app)}
		row.Document = StepDocument(app, byEmployee[app.EmployeeID])
		row.Actionable = row.Document != nil && Reviewable(app, *row.Document)
		rows = append(rows, row)
	}
	return rows
}

// StepDocument returns a copy of the newest document in docs that is
// actionable for app, or nil. Documents with equal creation times keep
// their input order.
func StepDocument(app models.Application, docs []models.Document) *models.Document {
	if Done(app) {
		return nil
	}
	sorted := append([]models.Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	for _, d := range sorted {
		if Actionable(app, d) {
			doc := d
			return &doc
		}
	}
	return nil
}

// NeedsUpload reports whether the employee should upload a document for
// the current step: nothing was submitted yet, or the last submission was
// rejected.
func NeedsUpload(app models.Application, doc *models.Document) bool {
	if Done(app) {
		return false
	}
	return doc == nil || doc.Status == models.DocumentRejected
}

// StepState is the position of one step relative to an application.
type StepState struct {
	Step    models.VisaStep
	Done    bool
	Current bool
}

// Progress lists every step of Sequence with its state for app.
func Progress(app models.Application) []StepState {
	cur := CurrentStep(app)
	reached := cur == models.StepTerminate
	out := make([]StepState, 0, len(Sequence))
	for i := len(Sequence) - 1; i >= 0; i-- {
		s := Sequence[i]
		st := StepState{Step: s, Done: reached, Current: s == cur}
		if s == cur {
			reached = true
		}
		out = append(out, st)
	}
	// built back to front
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
