// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/hr/onboarding").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/approve", "/reject").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string

	// PreserveQueryParam is an optional query parameter to preserve in the fallback URL.
	// For example, "status" keeps the list filter the reviewer was looking at.
	PreserveQueryParam string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", validates
// the URL is safe (not an open redirect), optionally validates the prefix,
// and excludes specified subpaths to prevent redirect loops.
//
// Example usage:
//
//	url := navigation.SafeBackURL(r, navigation.BackURLOptions{
//	    AllowedPrefix:      "/hr/onboarding",
//	    ExcludedSubpaths:   []string{"/approve"},
//	    Fallback:           "/hr/onboarding",
//	    PreserveQueryParam: "status",
//	})
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	// Try query parameter first, then form value
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	// Validate against allowed prefix if specified
	if ret != "" {
		valid := true

		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}

		// Check excluded subpaths
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}

		if valid {
			return ret
		}
	}

	// Build fallback URL, optionally preserving a query parameter
	fallback := opts.Fallback
	if opts.PreserveQueryParam != "" {
		param := query.Get(r, opts.PreserveQueryParam)
		if param == "" {
			param = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
		}
		if param != "" && param != "all" {
			sep := "?"
			if strings.Contains(fallback, "?") {
				sep = "&"
			}
			fallback += sep + url.Values{opts.PreserveQueryParam: {param}}.Encode()
		}
	}

	return fallback
}

// Back URL configurations for the HR pages.
var (
	// HREmployeesBackURL returns options for the employee directory.
	HREmployeesBackURL = BackURLOptions{
		AllowedPrefix:      "/hr/employees",
		Fallback:           "/hr/employees",
		PreserveQueryParam: "q",
	}

	// HROnboardingBackURL returns options for the onboarding review list.
	HROnboardingBackURL = BackURLOptions{
		AllowedPrefix:      "/hr/onboarding",
		ExcludedSubpaths:   []string{"/approve", "/reject"},
		Fallback:           "/hr/onboarding",
		PreserveQueryParam: "status",
	}

	// HRVisaBackURL returns options for the visa review table.
	HRVisaBackURL = BackURLOptions{
		AllowedPrefix:    "/hr/visa",
		ExcludedSubpaths: []string{"/approve", "/reject"},
		Fallback:         "/hr/visa",
	}
)
