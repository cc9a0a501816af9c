package services

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/dmitrijs2005/yiviportal/internal/common"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PortalService manages organizations, their maintainers and their
// relying parties. Every call needs a logged-in user; calls touching a
// single organization's members need the user to maintain it (admins
// maintain all).
type PortalService interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	GetOrganization(ctx context.Context, slug string) (*models.Organization, error)
	RegisterOrganization(ctx context.Context, req models.RegisterOrganizationRequest) (*models.Organization, error)

	ListMaintainers(ctx context.Context, orgSlug string) ([]models.Maintainer, error)
	AddMaintainer(ctx context.Context, orgSlug, email string) error
	RemoveMaintainer(ctx context.Context, orgSlug, email string) error

	ListRelyingParties(ctx context.Context, orgSlug string) ([]models.RelyingParty, error)
	CreateRelyingParty(ctx context.Context, orgSlug string, rp models.RelyingParty) error
	DeleteRelyingParty(ctx context.Context, orgSlug string, env models.Environment, rpSlug string) error
}

type portalService struct {
	client client.Client
	store  SessionStore
}

func NewPortalService(c client.Client, store SessionStore) PortalService {
	return &portalService{client: c, store: store}
}

func (p *portalService) requireLogin() error {
	if !p.store.IsAuthenticated() {
		return common.ErrUnauthorized
	}
	return nil
}

func (p *portalService) requireMaintainer(orgSlug string) error {
	if err := p.requireLogin(); err != nil {
		return err
	}
	if !p.store.IsMaintainerOf(orgSlug) {
		return common.ErrForbidden
	}
	return nil
}

func (p *portalService) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	if err := p.requireLogin(); err != nil {
		return nil, err
	}
	return p.client.ListOrganizations(ctx)
}

func (p *portalService) GetOrganization(ctx context.Context, slug string) (*models.Organization, error) {
	if err := p.requireLogin(); err != nil {
		return nil, err
	}
	return p.client.GetOrganization(ctx, slug)
}

// RegisterOrganization is open to every logged-in user; the backend makes
// the registrant the first maintainer.
func (p *portalService) RegisterOrganization(ctx context.Context, req models.RegisterOrganizationRequest) (*models.Organization, error) {
	if err := p.requireLogin(); err != nil {
		return nil, err
	}
	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	return p.client.RegisterOrganization(ctx, req)
}

func (p *portalService) ListMaintainers(ctx context.Context, orgSlug string) ([]models.Maintainer, error) {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return nil, err
	}
	return p.client.ListMaintainers(ctx, orgSlug)
}

func (p *portalService) AddMaintainer(ctx context.Context, orgSlug, email string) error {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	return p.client.AddMaintainer(ctx, orgSlug, email)
}

// RemoveMaintainer refuses to remove the current user, which would lock
// them out of the organization.
func (p *portalService) RemoveMaintainer(ctx context.Context, orgSlug, email string) error {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return err
	}
	if strings.EqualFold(email, p.store.Snapshot().Email) {
		return &client.FieldErrors{Fields: map[string][]string{"email": {"you cannot remove yourself"}}}
	}
	return p.client.DeleteMaintainer(ctx, orgSlug, email)
}

func (p *portalService) ListRelyingParties(ctx context.Context, orgSlug string) ([]models.RelyingParty, error) {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return nil, err
	}
	return p.client.ListRelyingParties(ctx, orgSlug)
}

func (p *portalService) CreateRelyingParty(ctx context.Context, orgSlug string, rp models.RelyingParty) error {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return err
	}
	if err := validateRelyingParty(rp); err != nil {
		return err
	}
	return p.client.CreateRelyingParty(ctx, orgSlug, rp)
}

func (p *portalService) DeleteRelyingParty(ctx context.Context, orgSlug string, env models.Environment, rpSlug string) error {
	if err := p.requireMaintainer(orgSlug); err != nil {
		return err
	}
	return p.client.DeleteRelyingParty(ctx, orgSlug, env, rpSlug)
}

// formErrors collects field messages and yields nil when there are none.
type formErrors map[string][]string

func (f formErrors) add(field, msg string) { f[field] = append(f[field], msg) }

func (f formErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &client.FieldErrors{Fields: f}
}

func validateEmail(email string) error {
	fe := formErrors{}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fe.add("email", "enter a valid email address")
	}
	return fe.err()
}

func validateRegistration(req models.RegisterOrganizationRequest) error {
	fe := formErrors{}
	if strings.TrimSpace(req.Name.En) == "" {
		fe.add("name.en", "this field is required")
	}
	if !slugPattern.MatchString(req.Slug) {
		fe.add("slug", "use lowercase letters, digits and single hyphens")
	}
	if req.URL != "" {
		if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fe.add("url", "enter a valid http or https URL")
		}
	}
	return fe.err()
}

func validateRelyingParty(rp models.RelyingParty) error {
	fe := formErrors{}
	if !slugPattern.MatchString(rp.Slug) {
		fe.add("rp_slug", "use lowercase letters, digits and single hyphens")
	}
	if _, err := models.ParseEnvironment(string(rp.Environment)); err != nil {
		fe.add("environment", err.Error())
	}
	if len(rp.Hostnames) == 0 {
		fe.add("hostnames", "at least one hostname is required")
	}
	for _, h := range rp.Hostnames {
		if !validHostname(h) {
			fe.add("hostnames", fmt.Sprintf("%q is not a hostname", h))
		}
	}
	for _, a := range rp.Attributes {
		if a.AttributeTag == "" {
			fe.add("attributes", "every attribute needs a tag")
			break
		}
	}
	return fe.err()
}

// validHostname accepts a bare host with an optional port, as it would
// appear in a URL: no scheme, path, credentials or whitespace.
func validHostname(h string) bool {
	if h == "" || strings.ContainsAny(h, " \t\r\n") {
		return false
	}
	u, err := url.Parse("//" + h)
	if err != nil {
		return false
	}
	return u.Host == h && u.User == nil && u.Path == "" && u.RawQuery == "" && u.Fragment == "" && u.Hostname() != ""
}
