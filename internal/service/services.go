package service

import (
	"time"

	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

// Services groups one service per backend family around a shared client.
type Services struct {
	Auth              *AuthService
	Admins            *AdminService
	Roles             *Resource[v1.Role]
	Permissions       *Resource[v1.Permission]
	Plans             *Resource[v1.Plan]
	Features          *Resource[v1.Feature]
	Campaigns         *CampaignService
	Users             *Resource[v1.User]
	Reports           *ReportService
	FAQs              *Resource[v1.FAQ]
	Products          *Resource[v1.Product]
	Colleges          *Resource[v1.College]
	Courses           *Resource[v1.Course]
	Events            *Resource[v1.Event]
	Enquiries         *EnquiryService
	FaceVerifications *FaceVerificationService
	Locations         *LocationService
	Dashboard         *DashboardService
	About             *AboutService
	Site              *SiteService
}

type servicesOptions struct {
	analyticsTimeout time.Duration
}

type Option func(*servicesOptions)

// WithAnalyticsTimeout sets the per-call timeout for dashboard series and
// report calls. Non-positive values keep the default.
func WithAnalyticsTimeout(d time.Duration) Option {
	return func(o *servicesOptions) {
		if d > 0 {
			o.analyticsTimeout = d
		}
	}
}

func NewServices(api AuthAPI, opts ...Option) *Services {
	o := servicesOptions{analyticsTimeout: constraints.AnalyticsTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Services{
		Auth:              NewAuthService(api),
		Admins:            NewAdminService(api),
		Roles:             NewResource[v1.Role](api, endpoints.Roles, endpoints.RoleByID),
		Permissions:       NewResource[v1.Permission](api, endpoints.Permissions, endpoints.PermissionByID),
		Plans:             NewResource[v1.Plan](api, endpoints.Plans, endpoints.PlanByID),
		Features:          NewResource[v1.Feature](api, endpoints.Features, endpoints.FeatureByID),
		Campaigns:         NewCampaignService(api),
		Users:             NewResource[v1.User](api, endpoints.Users, endpoints.UserByID),
		Reports:           NewReportService(api, o.analyticsTimeout),
		FAQs:              NewResource[v1.FAQ](api, endpoints.FAQs, endpoints.FAQByID),
		Products:          NewResource[v1.Product](api, endpoints.Products, endpoints.ProductByID),
		Colleges:          NewResource[v1.College](api, endpoints.Colleges, endpoints.CollegeByID),
		Courses:           NewResource[v1.Course](api, endpoints.Courses, endpoints.CourseByID),
		Events:            NewResource[v1.Event](api, endpoints.Events, endpoints.EventByID),
		Enquiries:         NewEnquiryService(api),
		FaceVerifications: NewFaceVerificationService(api),
		Locations:         NewLocationService(api),
		Dashboard:         NewDashboardService(api, o.analyticsTimeout),
		About:             NewAboutService(api),
		Site:              NewSiteService(api),
	}
}
