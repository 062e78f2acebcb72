package apiclient

import "sync"

// Page paths used for navigation side effects.
const (
	LoginPath          = "/login"
	DashboardPath      = "/dashboard"
	AdminDashboardPath = "/dashboard/admin"
)

// Navigator is the presentation layer's navigation surface. The client only
// uses it for the 401 redirect and for Logout.
type Navigator interface {
	// Location is the path currently being shown.
	Location() string
	// Redirect navigates to path.
	Redirect(path string)
}

// NopNavigator ignores redirects.
type NopNavigator struct{}

func (NopNavigator) Location() string { return "" }
func (NopNavigator) Redirect(string)  {}

// PathNavigator records redirects instead of performing them. The web server
// creates one per request and turns the recorded redirect into a response.
type PathNavigator struct {
	mu       sync.Mutex
	location string
	history  []string
}

// NewPathNavigator starts at location.
func NewPathNavigator(location string) *PathNavigator {
	return &PathNavigator{location: location}
}

func (n *PathNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *PathNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
	n.history = append(n.history, path)
}

// Redirected returns the last redirect target, if any.
func (n *PathNavigator) Redirected() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return "", false
	}
	return n.history[len(n.history)-1], true
}

// History returns every redirect in order.
func (n *PathNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
