package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/dmitrijs2005/yiviportal/internal/common"
)

func (a *App) Orgs(ctx context.Context) error {
	orgs, err := a.portal.ListOrganizations(ctx)
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		fmt.Fprintln(a.out, "No organizations")
		return nil
	}
	for _, o := range orgs {
		fmt.Fprintln(a.out, o)
	}
	return nil
}

func (a *App) Org(ctx context.Context, slug string) error {
	org, err := a.portal.GetOrganization(ctx, slug)
	if err != nil {
		return err
	}
	lang := a.language()
	fmt.Fprintf(a.out, "Slug:     %s\n", org.Slug)
	fmt.Fprintf(a.out, "Name:     %s\n", org.Name.In(lang))
	if org.URL != "" {
		fmt.Fprintf(a.out, "URL:      %s\n", org.URL)
	}
	fmt.Fprintf(a.out, "Issuer:   %s\n", yesNo(org.IsAttestationProvider))
	fmt.Fprintf(a.out, "Verifier: %s\n", yesNo(org.IsRelyingParty))
	fmt.Fprintf(a.out, "Verified: %s\n", yesNo(org.IsVerified))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) RegisterOrg(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrUnauthorized
	}

	var req models.RegisterOrganizationRequest
	var err error
	if req.Name.En, err = getSimpleText(a.scanner, "Organization name (English)", a.out); err != nil {
		return err
	}
	if req.Name.Nl, err = getSimpleText(a.scanner, "Organization name (Dutch, optional)", a.out); err != nil {
		return err
	}
	if req.Slug, err = getSimpleText(a.scanner, "Slug (lowercase, used in URLs)", a.out); err != nil {
		return err
	}
	if req.URL, err = getSimpleText(a.scanner, "Website (optional)", a.out); err != nil {
		return err
	}

	org, err := a.portal.RegisterOrganization(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s. You are its first maintainer.\n", org.Slug)
	return nil
}

func (a *App) Maintainers(ctx context.Context, slug string) error {
	ms, err := a.portal.ListMaintainers(ctx, slug)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		fmt.Fprintln(a.out, "No maintainers")
		return nil
	}
	for _, m := range ms {
		fmt.Fprintln(a.out, m.Email)
	}
	return nil
}

func (a *App) AddMaintainer(ctx context.Context, slug, email string) error {
	if err := a.portal.AddMaintainer(ctx, slug, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s now maintains %s\n", email, slug)
	return nil
}

func (a *App) RemoveMaintainer(ctx context.Context, slug, email string) error {
	if err := a.portal.RemoveMaintainer(ctx, slug, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s no longer maintains %s\n", email, slug)
	return nil
}

func (a *App) RelyingParties(ctx context.Context, slug string) error {
	rps, err := a.portal.ListRelyingParties(ctx, slug)
	if err != nil {
		return err
	}
	if len(rps) == 0 {
		fmt.Fprintln(a.out, "No relying parties")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tENVIRONMENT\tHOSTNAMES\tATTRIBUTES\tSTATUS")
	for _, rp := range rps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", rp.Slug, rp.Environment, strings.Join(rp.Hostnames, ","), len(rp.Attributes), rp.Status)
	}
	return tw.Flush()
}

func (a *App) AddRelyingParty(ctx context.Context, slug string) error {
	if !a.isLoggedIn() {
		return common.ErrUnauthorized
	}

	var rp models.RelyingParty
	var err error
	if rp.Slug, err = getSimpleText(a.scanner, "Relying party slug", a.out); err != nil {
		return err
	}
	env, err := getSimpleText(a.scanner, "Environment (production, staging, demo)", a.out)
	if err != nil {
		return err
	}
	rp.Environment = models.Environment(strings.ToLower(env))
	if rp.Hostnames, err = getList(a.scanner, "Hostnames", a.out); err != nil {
		return err
	}
	pairs, err := getPairs(a.scanner, "Requested attributes as tag=reason", a.out)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		rp.Attributes = append(rp.Attributes, models.RelyingPartyAttribute{
			AttributeTag: p[0],
			Reason:       models.TranslatedString{En: p[1]},
		})
	}

	if err := a.portal.CreateRelyingParty(ctx, slug, rp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Relying party %s created in %s\n", rp.Slug, rp.Environment)
	return nil
}

func (a *App) RemoveRelyingParty(ctx context.Context, slug, env, rpSlug string) error {
	environment, err := models.ParseEnvironment(env)
	if err != nil {
		return err
	}
	if err := a.portal.DeleteRelyingParty(ctx, slug, environment, rpSlug); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Relying party %s removed from %s\n", rpSlug, environment)
	return nil
}
