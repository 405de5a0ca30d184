package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/domain/models"
)

// FakeBackend is an in-memory stand-in for the HR REST backend. It
// implements every operation of backend.Client that features consume.
//
// Errors set in Fail are returned by the named method (e.g. "Login",
// "UpdateApplication") before any state changes.
type FakeBackend struct {
	mu sync.Mutex

	Users      map[string]FakeAccount // keyed by username
	Emps       map[string]models.Employee
	Apps       []models.Application
	Docs       []models.Document
	Files      map[string]models.FileUpload // document id → content
	HouseList  []models.House
	Reports    []models.FacilityReport
	Registered []models.Registration

	Fail  map[string]error
	Calls []string

	seq int
}

// FakeAccount is a backend user with its password and roles.
type FakeAccount struct {
	User     models.User
	Password string
	Token    string
}

// NewFakeBackend returns an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Users:     map[string]FakeAccount{},
		Emps:      map[string]models.Employee{},
		Files:     map[string]models.FileUpload{},
		Fail:      map[string]error{},
	}
}

func (f *FakeBackend) enter(method string) error {
	f.Calls = append(f.Calls, method)
	return f.Fail[method]
}

func (f *FakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// Called reports whether method was invoked.
func (f *FakeBackend) Called(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == method {
			return true
		}
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Seeding                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// AddUser registers an account that Login accepts.
func (f *FakeBackend) AddUser(id, username, password string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Users[username] = FakeAccount{
		User:     models.User{ID: id, Username: username, Email: username + "@test.com", Roles: roles},
		Password: password,
		Token:    "token-" + id,
	}
}

// AddEmployee stores an employee record.
func (f *FakeBackend) AddEmployee(e models.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Emps[e.ID] = e
}

// AddApplication stores an application.
func (f *FakeBackend) AddApplication(a models.Application) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Apps = append(f.Apps, a)
}

// AddDocument stores a document and its file body.
func (f *FakeBackend) AddDocument(d models.Document, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Docs = append(f.Docs, d)
	f.Files[d.ID] = models.FileUpload{Filename: d.Filename, ContentType: "application/pdf", Data: data}
}

// Application returns the stored application with id.
func (f *FakeBackend) Application(id string) (models.Application, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Apps {
		if a.ID == id {
			return a, true
		}
	}
	return models.Application{}, false
}

// Document returns the stored document with id.
func (f *FakeBackend) Document(id string) (models.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.Docs {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Auth                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) Login(ctx context.Context, identifier, password string) (*backend.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Login"); err != nil {
		return nil, err
	}
	acct, ok := f.Users[identifier]
	if !ok || acct.Password != password {
		return nil, &backend.APIError{Status: 400, Message: "Invalid credentials"}
	}
	return &backend.LoginResponse{
		Token:  acct.Token,
		User:   acct.User,
		Expiry: []byte(fmt.Sprint(time.Now().Add(time.Hour).Unix())),
	}, nil
}

func (f *FakeBackend) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("Logout")
}

func (f *FakeBackend) Register(ctx context.Context, reg models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Register"); err != nil {
		return err
	}
	if _, taken := f.Users[reg.Username]; taken {
		return &backend.APIError{Status: 409, Message: "Username already exists"}
	}
	f.Registered = append(f.Registered, reg)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Employees                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) EmployeeByUserID(ctx context.Context, userID string) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EmployeeByUserID"); err != nil {
		return nil, err
	}
	for _, e := range f.Emps {
		if e.UserID == userID {
			out := e
			return &out, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "Employee not found"}
}

func (f *FakeBackend) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EmployeeByID"); err != nil {
		return nil, err
	}
	e, ok := f.Emps[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Message: "Employee not found"}
	}
	return &e, nil
}

func (f *FakeBackend) Employees(ctx context.Context, name string) ([]models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Employees"); err != nil {
		return nil, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	var out []models.Employee
	for _, e := range f.Emps {
		full := strings.ToLower(e.FirstName + " " + e.LastName + " " + e.PreferredName)
		if name == "" || strings.Contains(full, name) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeBackend) UpdateEmployee(ctx context.Context, e models.Employee) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateEmployee"); err != nil {
		return nil, err
	}
	if _, ok := f.Emps[e.ID]; !ok {
		return nil, &backend.APIError{Status: 404, Message: "Employee not found"}
	}
	f.Emps[e.ID] = e
	return &e, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Applications                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) ApplicationsByEmployeeID(ctx context.Context, employeeID string) ([]models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ApplicationsByEmployeeID"); err != nil {
		return nil, err
	}
	var out []models.Application
	for _, a := range f.Apps {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeBackend) Applications(ctx context.Context, typ models.ApplicationType, status models.ApplicationStatus) ([]models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Applications"); err != nil {
		return nil, err
	}
	var out []models.Application
	for _, a := range f.Apps {
		if a.Type == typ && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateApplication creates the employee record on first submission, the
// way the backend does, and a pending onboarding application.
func (f *FakeBackend) CreateApplication(ctx context.Context, form models.OnboardingForm) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateApplication"); err != nil {
		return nil, err
	}
	var emp *models.Employee
	for _, e := range f.Emps {
		if strings.EqualFold(e.Email, form.Email) {
			emp = &e
			break
		}
	}
	if emp == nil {
		emp = &models.Employee{ID: f.nextID("emp"), Email: form.Email}
	}
	emp.FirstName, emp.LastName = form.FirstName, form.LastName
	emp.VisaTitle = form.VisaTitle
	f.Emps[emp.ID] = *emp

	app := models.Application{
		ID:         f.nextID("app"),
		EmployeeID: emp.ID,
		Type:       models.ApplicationOnboarding,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
	}
	f.Apps = append(f.Apps, app)
	return &app, nil
}

func (f *FakeBackend) ApproveApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error) {
	return f.review("ApproveApplication", id, models.StatusApproved, req)
}

func (f *FakeBackend) RejectApplication(ctx context.Context, id string, req models.ReviewRequest) (*models.ReviewResult, error) {
	return f.review("RejectApplication", id, models.StatusRejected, req)
}

func (f *FakeBackend) review(method, id string, status models.ApplicationStatus, req models.ReviewRequest) (*models.ReviewResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(method); err != nil {
		return nil, err
	}
	for i := range f.Apps {
		if f.Apps[i].ID == id {
			// OPT applications stay pending between steps.
			if f.Apps[i].Type == models.ApplicationOnboarding {
				f.Apps[i].Status = status
			}
			f.Apps[i].Comment = req.Comment
			return &models.ReviewResult{Status: status, Comment: req.Comment}, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "Application not found"}
}

func (f *FakeBackend) UpdateApplication(ctx context.Context, id string, upd models.ApplicationUpdate) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateApplication"); err != nil {
		return nil, err
	}
	for i := range f.Apps {
		if f.Apps[i].ID != id {
			continue
		}
		if upd.VisaStep != nil {
			f.Apps[i].VisaStep = *upd.VisaStep
		}
		if upd.Comment != nil {
			f.Apps[i].Comment = *upd.Comment
		}
		if upd.Status != nil {
			f.Apps[i].Status = models.ApplicationStatus(*upd.Status)
		}
		out := f.Apps[i]
		return &out, nil
	}
	return nil, &backend.APIError{Status: 404, Message: "Application not found"}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Documents                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) DocumentsByEmployeeID(ctx context.Context, employeeID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DocumentsByEmployeeID"); err != nil {
		return nil, err
	}
	var out []models.Document
	for _, d := range f.Docs {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *FakeBackend) DownloadDocument(ctx context.Context, id string) (*models.FileUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DownloadDocument"); err != nil {
		return nil, err
	}
	file, ok := f.Files[id]
	if !ok {
		return nil, &backend.APIError{Status: 404, Message: "Document not found"}
	}
	return &file, nil
}

func (f *FakeBackend) UpdateDocument(ctx context.Context, id string, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateDocument"); err != nil {
		return nil, err
	}
	for i := range f.Docs {
		if f.Docs[i].ID == id {
			f.Docs[i].Status = meta.Status
			f.Docs[i].Comment = meta.Comment
			f.Files[id] = file
			out := f.Docs[i]
			return &out, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "Document not found"}
}

func (f *FakeBackend) UploadDocument(ctx context.Context, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UploadDocument"); err != nil {
		return nil, err
	}
	d := models.Document{
		ID:          f.nextID("doc"),
		EmployeeID:  meta.EmployeeID,
		Type:        meta.Type,
		Title:       meta.Title,
		Status:      models.DocumentPending,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		CreatedAt:   time.Now(),
	}
	f.Docs = append(f.Docs, d)
	f.Files[d.ID] = file
	return &d, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Housing                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) Houses(ctx context.Context) ([]models.House, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Houses"); err != nil {
		return nil, err
	}
	return append([]models.House(nil), f.HouseList...), nil
}

func (f *FakeBackend) House(ctx context.Context, id string) (*models.House, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("House"); err != nil {
		return nil, err
	}
	for _, h := range f.HouseList {
		if h.ID == id {
			out := h
			return &out, nil
		}
	}
	return nil, &backend.APIError{Status: 404, Message: "House not found"}
}

func (f *FakeBackend) FacilityReports(ctx context.Context, houseID string) ([]models.FacilityReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FacilityReports"); err != nil {
		return nil, err
	}
	var out []models.FacilityReport
	for _, rep := range f.Reports {
		if rep.HouseID == houseID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (f *FakeBackend) CreateFacilityReport(ctx context.Context, rep models.FacilityReport) (*models.FacilityReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateFacilityReport"); err != nil {
		return nil, err
	}
	rep.ID = f.nextID("rep")
	rep.Status = "Open"
	rep.CreatedAt = time.Now()
	f.Reports = append(f.Reports, rep)
	return &rep, nil
}
