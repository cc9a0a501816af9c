package models

import "fmt"

// Organization is a registered party; it may be an attestation provider,
// a relying party, or both.
type Organization struct {
	ID                    string           `json:"id"`
	Slug                  string           `json:"slug"`
	Name                  TranslatedString `json:"name"`
	URL                   string           `json:"url,omitempty"`
	Logo                  string           `json:"logo,omitempty"`
	IsVerified            bool             `json:"is_verified"`
	IsAttestationProvider bool             `json:"is_ap"`
	IsRelyingParty        bool             `json:"is_rp"`
}

func (o Organization) String() string {
	roles := ""
	if o.IsAttestationProvider {
		roles += " AP"
	}
	if o.IsRelyingParty {
		roles += " RP"
	}
	verified := ""
	if o.IsVerified {
		verified = " (verified)"
	}
	return fmt.Sprintf("%s: %s%s%s", o.Slug, o.Name, roles, verified)
}

// RegisterOrganizationRequest is the registration form payload.
type RegisterOrganizationRequest struct {
	Name TranslatedString `json:"name"`
	Slug string           `json:"slug"`
	URL  string           `json:"url"`
}

// Maintainer is a user allowed to manage an organization.
type Maintainer struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	OrganizationSlug string `json:"organization"`
}

// RelyingPartyAttribute is a requested attribute with the reason shown to
// the user on disclosure.
type RelyingPartyAttribute struct {
	AttributeTag string           `json:"credential_attribute"`
	Reason       TranslatedString `json:"reason"`
}

// RelyingParty is a verifier configuration of an organization in one
// environment.
type RelyingParty struct {
	Slug        string                  `json:"rp_slug"`
	Environment Environment             `json:"environment"`
	Hostnames   []string                `json:"hostnames"`
	Attributes  []RelyingPartyAttribute `json:"attributes"`
	Status      string                  `json:"status,omitempty"`
}

func (rp RelyingParty) String() string {
	return fmt.Sprintf("%s [%s] hosts=%v attributes=%d %s", rp.Slug, rp.Environment, rp.Hostnames, len(rp.Attributes), rp.Status)
}
