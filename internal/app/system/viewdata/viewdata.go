// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page header and title.
const SiteName = "HR Portal"

// NavLink is one entry of the role-specific navigation bar.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsHR       bool
	Role       string
	UserName   string
	Nav        []NavLink

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string // Token for form submission

	// One-shot notifications queued by earlier requests
	Notices []auth.Notice
}

var hrNav = []NavLink{
	{Label: "Home", Href: "/hr/home"},
	{Label: "Employees", Href: "/hr/employees"},
	{Label: "Onboarding", Href: "/hr/onboarding"},
	{Label: "Visa", Href: "/hr/visa"},
	{Label: "Housing", Href: "/hr/houses"},
}

var employeeNav = []NavLink{
	{Label: "Home", Href: "/employee/home"},
	{Label: "Personal info", Href: "/employee/personal-info"},
	{Label: "Visa", Href: "/employee/visa"},
	{Label: "Housing", Href: "/employee/housing"},
}

// NewBaseVM creates a fully populated BaseVM for a page. It pops pending
// notices from the session, so it must run before the response is written.
// sm may be nil (tests), in which case no notices are shown.
func NewBaseVM(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.IsHR = u.IsHR()
		vm.Role = string(u.Role)
		vm.UserName = u.Username
		vm.Nav = navFor(u.IsHR(), r.URL.Path)
	}

	if sm != nil {
		vm.Notices = sm.Notices(w, r)
	}
	return vm
}

func navFor(isHR bool, path string) []NavLink {
	src := employeeNav
	if isHR {
		src = hrNav
	}
	out := make([]NavLink, len(src))
	for i, l := range src {
		l.Active = l.Href == path
		out[i] = l
	}
	return out
}
