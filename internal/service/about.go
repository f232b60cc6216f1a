package service

import (
	"context"

	"adminpanel/client"
	"adminpanel/internal/endpoints"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/logger"

	"go.uber.org/zap"
)

// Image is an optional file attached to a create call.
type Image struct {
	Name    string
	Content []byte
}

type AboutService struct {
	api      API
	Sections *Resource[v1.AboutSection]
	Team     *Resource[v1.TeamMember]
}

func NewAboutService(api API) *AboutService {
	return &AboutService{
		api:      api,
		Sections: NewResource[v1.AboutSection](api, endpoints.AboutSections, endpoints.AboutSection),
		Team:     NewResource[v1.TeamMember](api, endpoints.TeamMembers, endpoints.TeamMember),
	}
}

// CreateSection creates the section and then uploads img when given. A failed
// upload still returns the created section, without the image.
func (s *AboutService) CreateSection(ctx context.Context, section v1.AboutSection, img *Image) (*v1.Response[v1.AboutSection], error) {
	res, err := s.Sections.Create(ctx, section)
	if err != nil || img == nil || !res.Success || res.Data.ID == "" {
		return res, err
	}
	if url, ok := s.upload(ctx, endpoints.AboutSectionIm, res.Data.ID, img); ok {
		res.Data.Image = url
	}
	return res, nil
}

// CreateTeamMember follows the same create-then-upload flow as CreateSection.
func (s *AboutService) CreateTeamMember(ctx context.Context, member v1.TeamMember, img *Image) (*v1.Response[v1.TeamMember], error) {
	res, err := s.Team.Create(ctx, member)
	if err != nil || img == nil || !res.Success || res.Data.ID == "" {
		return res, err
	}
	if url, ok := s.upload(ctx, endpoints.TeamMemberIm, res.Data.ID, img); ok {
		res.Data.Image = url
	}
	return res, nil
}

func (s *AboutService) upload(ctx context.Context, tpl, id string, img *Image) (string, bool) {
	res, err := client.Decode[v1.UploadResult](s.api.Upload(ctx, endpoints.ID(tpl, id), client.Form{
		Files: []client.File{{Field: "image", Name: img.Name, Content: img.Content}},
	}))
	if err != nil {
		logger.Warn("image upload failed after create",
			zap.String("id", id),
			zap.String("endpoint", tpl),
			zap.Error(err))
		return "", false
	}
	if !res.Success || res.Data.URL == "" {
		logger.Warn("image upload returned no url", zap.String("id", id), zap.String("message", res.Message))
		return "", false
	}
	return res.Data.URL, true
}
