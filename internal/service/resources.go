package service

import (
	"context"
	"encoding/json"
	"time"

	"adminpanel/client"
	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

type AdminService struct {
	*Resource[v1.Admin]
}

func NewAdminService(api API) *AdminService {
	return &AdminService{NewResource[v1.Admin](api, endpoints.Admins, endpoints.AdminByID)}
}

func (s *AdminService) ToggleStatus(ctx context.Context, id string) (*v1.Response[v1.Admin], error) {
	return s.patch(ctx, endpoints.AdminToggle, id, nil)
}

type CampaignService struct {
	*Resource[v1.Campaign]
}

func NewCampaignService(api API) *CampaignService {
	return &CampaignService{NewResource[v1.Campaign](api, endpoints.Campaigns, endpoints.CampaignByID)}
}

func (s *CampaignService) ToggleStatus(ctx context.Context, id string) (*v1.Response[v1.Campaign], error) {
	return s.patch(ctx, endpoints.CampaignToggle, id, nil)
}

// ReportService runs with the analytics timeout; report exports are slow.
type ReportService struct {
	*Resource[v1.Report]
}

func NewReportService(api API, timeout time.Duration) *ReportService {
	if timeout <= 0 {
		timeout = constraints.AnalyticsTimeout
	}
	return &ReportService{NewResource[v1.Report](api, endpoints.Reports, endpoints.ReportByID, client.Timeout(timeout))}
}

func (s *ReportService) UpdateStatus(ctx context.Context, id, status string) (*v1.Response[v1.Report], error) {
	return s.patch(ctx, endpoints.ReportStatus, id, map[string]string{"status": status})
}

type EnquiryService struct {
	*Resource[v1.Enquiry]
}

func NewEnquiryService(api API) *EnquiryService {
	return &EnquiryService{NewResource[v1.Enquiry](api, endpoints.Enquiries, endpoints.EnquiryByID)}
}

func (s *EnquiryService) Reply(ctx context.Context, id, message string) (*v1.Response[v1.Enquiry], error) {
	return client.Decode[v1.Enquiry](s.api.Post(ctx, endpoints.ID(endpoints.EnquiryReply, id), map[string]string{"reply": message}))
}

func (s *EnquiryService) UpdateStatus(ctx context.Context, id, status string) (*v1.Response[v1.Enquiry], error) {
	return s.patch(ctx, endpoints.EnquiryStatus, id, map[string]string{"status": status})
}

type FaceVerificationService struct {
	*Resource[v1.FaceVerification]
}

func NewFaceVerificationService(api API) *FaceVerificationService {
	return &FaceVerificationService{NewResource[v1.FaceVerification](api, endpoints.FaceVerify, endpoints.FaceVerifyByID)}
}

func (s *FaceVerificationService) Pending(ctx context.Context, p ListParams) (*v1.Response[v1.Page[v1.FaceVerification]], error) {
	return client.Decode[v1.Page[v1.FaceVerification]](s.api.Get(ctx, withQuery(endpoints.FaceVerifyQueue, p.Query())))
}

func (s *FaceVerificationService) Approve(ctx context.Context, id string) (*v1.Response[v1.FaceVerification], error) {
	return client.Decode[v1.FaceVerification](s.api.Post(ctx, endpoints.ID(endpoints.FaceVerifyAccept, id), nil))
}

func (s *FaceVerificationService) Reject(ctx context.Context, id, reason string) (*v1.Response[v1.FaceVerification], error) {
	return client.Decode[v1.FaceVerification](s.api.Post(ctx, endpoints.ID(endpoints.FaceVerifyReject, id), map[string]string{"reason": reason}))
}

type LocationService struct {
	api API
}

func NewLocationService(api API) *LocationService {
	return &LocationService{api: api}
}

func (s *LocationService) Countries(ctx context.Context) (*v1.Response[v1.Page[v1.Country]], error) {
	return client.Decode[v1.Page[v1.Country]](s.api.Get(ctx, endpoints.Countries))
}

func (s *LocationService) States(ctx context.Context, countryID string) (*v1.Response[v1.Page[v1.State]], error) {
	return client.Decode[v1.Page[v1.State]](s.api.Get(ctx, endpoints.Path(endpoints.StatesByCntry, "countryId", countryID)))
}

func (s *LocationService) Cities(ctx context.Context, stateID string) (*v1.Response[v1.Page[v1.City]], error) {
	return client.Decode[v1.Page[v1.City]](s.api.Get(ctx, endpoints.Path(endpoints.CitiesByState, "stateId", stateID)))
}

// SiteService covers the singleton content pages and the investor list.
type SiteService struct {
	api       API
	Investors *Resource[v1.Investor]
}

func NewSiteService(api API) *SiteService {
	return &SiteService{api: api, Investors: NewResource[v1.Investor](api, endpoints.Investors, endpoints.InvestorByID)}
}

func (s *SiteService) Settings(ctx context.Context) (*v1.Response[v1.SiteSettings], error) {
	return client.Decode[v1.SiteSettings](s.api.Get(ctx, endpoints.SiteSettings))
}

func (s *SiteService) UpdateSettings(ctx context.Context, settings v1.SiteSettings) (*v1.Response[v1.SiteSettings], error) {
	return client.Decode[v1.SiteSettings](s.api.Put(ctx, endpoints.SiteSettings, settings))
}

// IndexPage is free-form landing page content.
func (s *SiteService) IndexPage(ctx context.Context) (*v1.Response[json.RawMessage], error) {
	return s.api.Get(ctx, endpoints.IndexPage)
}

func (s *SiteService) UpdateIndexPage(ctx context.Context, content any) (*v1.Response[json.RawMessage], error) {
	return s.api.Put(ctx, endpoints.IndexPage, content)
}

func (s *SiteService) OnboardingData(ctx context.Context) (*v1.Response[json.RawMessage], error) {
	return s.api.Get(ctx, endpoints.Onboarding)
}
