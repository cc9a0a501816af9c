package services

import (
	"context"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/credentials"
	"github.com/dmitrijs2005/yiviportal/internal/client/models"
)

// CredentialService searches the public credential catalogue. It needs no
// login.
type CredentialService interface {
	Search(ctx context.Context, query string, enabled map[models.Environment]bool) ([]models.Credential, error)
	Environments(ctx context.Context) ([]models.EnvironmentInfo, error)
}

type credentialService struct {
	client client.Client
}

func NewCredentialService(c client.Client) CredentialService {
	return &credentialService{client: c}
}

// Search fetches the catalogue and ranks it. A nil enabled map enables
// every environment.
func (s *credentialService) Search(ctx context.Context, query string, enabled map[models.Environment]bool) ([]models.Credential, error) {
	all, err := s.client.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}
	if enabled == nil {
		enabled = credentials.AllEnvironments()
	}
	return credentials.FilterAndRank(all, query, enabled), nil
}

func (s *credentialService) Environments(ctx context.Context) ([]models.EnvironmentInfo, error) {
	return s.client.ListEnvironments(ctx)
}
