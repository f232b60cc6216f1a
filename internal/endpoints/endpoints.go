// Package endpoints is the static map of backend paths. Paths are relative to
// the configured base URL and use ":name" placeholders for path parameters.
package endpoints

import "strings"

const (
	AuthLogin     = "/auth/login"
	AuthRefresh   = "/auth/refresh"
	AuthLogout    = "/auth/logout"
	AuthVerify2FA = "/auth/verify-2fa"

	PasswordChange = "/password/change-password"
	PasswordForgot = "/password/forgot-password"
	PasswordVerify = "/password/verify-otp"
	PasswordReset  = "/password/reset-password"

	Profile       = "/profile"
	ProfileUpdate = "/profile/update"

	DashboardStats     = "/dashboard/stats"
	DashboardRevenue   = "/dashboard/analytics/revenue"
	DashboardUsers     = "/dashboard/analytics/users"
	DashboardEnquiries = "/dashboard/analytics/enquiries"

	Admins           = "/admins"
	AdminByID        = "/admins/:id"
	AdminToggle      = "/admins/:id/toggle-status"
	AdminManagement  = "/admin-management"
	Roles            = "/roles"
	RoleByID         = "/roles/:id"
	Permissions      = "/permissions"
	PermissionByID   = "/permissions/:id"
	Plans            = "/plans"
	PlanByID         = "/plans/:id"
	Features         = "/features"
	FeatureByID      = "/features/:id"
	Campaigns        = "/campaigns"
	CampaignByID     = "/campaigns/:id"
	CampaignToggle   = "/campaigns/:id/toggle-status"
	Users            = "/users"
	UserByID         = "/users/:id"
	Reports          = "/reports"
	ReportByID       = "/reports/:id"
	ReportStatus     = "/reports/:id/status"
	FAQs             = "/faqs"
	FAQByID          = "/faqs/:id"
	Products         = "/products"
	ProductByID      = "/products/:id"
	Colleges         = "/colleges"
	CollegeByID      = "/colleges/:id"
	Courses          = "/courses"
	CourseByID       = "/courses/:id"
	Events           = "/events"
	EventByID        = "/events/:id"
	Enquiries        = "/enquiries"
	EnquiryByID      = "/enquiries/:id"
	EnquiryReply     = "/enquiries/:id/reply"
	EnquiryStatus    = "/enquiries/:id/status"
	FaceVerify       = "/face-verifications"
	FaceVerifyByID   = "/face-verifications/:id"
	FaceVerifyQueue  = "/face-verifications/pending"
	FaceVerifyAccept = "/face-verifications/:id/approve"
	FaceVerifyReject = "/face-verifications/:id/reject"

	Countries      = "/countries"
	StatesByCntry  = "/countries/:countryId/states"
	CitiesByState  = "/states/:stateId/cities"
	SiteSettings   = "/site-settings"
	IndexPage      = "/index-page"
	Investors      = "/investors"
	InvestorByID   = "/investors/:id"
	Onboarding     = "/onboarding/reference-data"
	AboutSections  = "/about-us/sections"
	AboutSection   = "/about-us/sections/:id"
	AboutSectionIm = "/about-us/sections/:id/image"
	TeamMembers    = "/about-us/team"
	TeamMember     = "/about-us/team/:id"
	TeamMemberIm   = "/about-us/team/:id/image"
)

// Path substitutes ":name" tokens in tpl with the given name/value pairs.
// An odd trailing argument is ignored.
func Path(tpl string, pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		tpl = strings.ReplaceAll(tpl, ":"+pairs[i], pairs[i+1])
	}
	return tpl
}

// ID is shorthand for Path(tpl, "id", id).
func ID(tpl, id string) string {
	return Path(tpl, "id", id)
}
