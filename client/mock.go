package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

const (
	MockEmail    = constraints.DevAdminEmail
	MockPassword = constraints.DevAdminPassword
)

// mockDenied always reach the real backend, even in mock mode. Checked before
// mockAllowed.
var mockDenied = []string{
	"/roles",
	"/permissions",
	"/admin-management",
	"/auth/login",
	"/forgot-password",
	"/reset-password",
	"/verify-otp",
	"/change-password",
	"/password",
}

var mockAllowed = []string{
	"/auth/refresh",
	"/auth/logout",
	"/profile",
	"/dashboard",
}

// MockUser is the administrator every canned response describes.
var MockUser = v1.User{
	ID:       "1",
	Username: "admin",
	Email:    MockEmail,
	Role:     "super_admin",
	Name:     "Super Admin",
	Phone:    "+1-555-0100",
}

// MockShim answers a fixed set of endpoints from memory for offline demos.
type MockShim struct {
	basePath string
	now      func() time.Time
}

func NewMockShim(basePath string, now func() time.Time) *MockShim {
	if now == nil {
		now = time.Now
	}
	return &MockShim{basePath: strings.TrimRight(basePath, "/"), now: now}
}

// normalizePath strips the query string and the base-path prefix.
func (m *MockShim) normalizePath(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	if i := strings.Index(endpoint, "://"); i >= 0 {
		rest := endpoint[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			endpoint = rest[j:]
		} else {
			endpoint = "/"
		}
	}
	if m.basePath != "" && strings.HasPrefix(endpoint, m.basePath) {
		rest := endpoint[len(m.basePath):]
		if rest == "" || rest[0] == '/' {
			endpoint = rest
		}
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return endpoint
}

// Match returns a canned body for endpoint, or ok=false when the request must
// go to the network.
func (m *MockShim) Match(method, endpoint string) (body []byte, ok bool) {
	path := m.normalizePath(endpoint)

	for _, d := range mockDenied {
		if strings.Contains(path, d) {
			return nil, false
		}
	}
	for _, a := range mockAllowed {
		if strings.Contains(path, a) {
			return m.respond(method, path)
		}
	}
	return nil, false
}

func (m *MockShim) respond(method, path string) ([]byte, bool) {
	ts := m.now().UnixMilli()

	var payload any
	switch {
	case strings.Contains(path, "/auth/refresh"):
		payload = map[string]any{
			"statusCode": http.StatusOK,
			"message":    "Token refreshed successfully",
			"data": v1.RefreshResult{
				AccessToken:  fmt.Sprintf("mock-access-token-%d", ts),
				RefreshToken: fmt.Sprintf("mock-refresh-token-%d", ts),
			},
		}
	case strings.Contains(path, "/auth/logout"):
		payload = v1.Response[any]{Success: true, Message: "Logged out successfully"}
	case strings.Contains(path, "/profile"):
		msg := "Profile fetched successfully"
		if method != http.MethodGet {
			msg = "Profile updated successfully"
		}
		payload = v1.Response[v1.User]{Success: true, Data: MockUser, Message: msg}
	case strings.Contains(path, "/dashboard/stats"):
		payload = v1.Response[v1.DashboardStats]{Success: true, Data: v1.DashboardStats{
			TotalUsers:           1250,
			TotalAdmins:          8,
			ActiveCampaigns:      5,
			PendingEnquiries:     17,
			PendingVerifications: 4,
			Revenue:              48250.5,
		}}
	default:
		// Analytics endpoints answer with an empty series; chart loaders
		// fill it with synthetic data.
		payload = v1.Response[v1.ChartData]{Success: true, Data: v1.ChartData{Points: []v1.ChartPoint{}}}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	return b, true
}

// MockLogin checks the demo credentials. A mismatch yields an unsuccessful
// envelope, not an error, matching what the demo backend answers.
func MockLogin(email, password string, now time.Time) *v1.Response[v1.LoginResult] {
	if email != MockEmail || password != MockPassword {
		return &v1.Response[v1.LoginResult]{Success: false, Message: "Invalid email or password"}
	}
	ts := now.UnixMilli()
	user := MockUser
	return &v1.Response[v1.LoginResult]{
		Success: true,
		Data: v1.LoginResult{
			AccessToken:  fmt.Sprintf("mock-access-token-%d", ts),
			RefreshToken: fmt.Sprintf("mock-refresh-token-%d", ts),
			User:         &user,
		},
		Message: "Login successful",
	}
}

// MockLogin answers a login from the demo fixture using the client's clock.
func (c *Client) MockLogin(email, password string) *v1.Response[v1.LoginResult] {
	return MockLogin(email, password, c.now())
}
