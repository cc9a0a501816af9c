package models

import (
	"fmt"
	"strings"
	"time"
)

// Environment is the deployment tier a credential, issuer or relying party
// runs under.
type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDemo       Environment = "demo"
)

// Environments lists every known tier, most trusted first.
var Environments = []Environment{EnvironmentProduction, EnvironmentStaging, EnvironmentDemo}

// ParseEnvironment accepts the tier name case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Environments {
		if env == known {
			return env, nil
		}
	}
	return "", fmt.Errorf("unknown environment %q", s)
}

// Credential is a named bundle of attributes issued by an attestation
// provider. It is read-only on the client.
type Credential struct {
	ID              string                `json:"id"`
	Name            TranslatedString      `json:"name"`
	IssuerSlug      string                `json:"issuer"`
	Environment     Environment           `json:"environment"`
	Attributes      []CredentialAttribute `json:"attributes"`
	DeprecatedSince *time.Time            `json:"deprecated_since,omitempty"`
}

// Deprecated reports whether the credential carries a deprecation marker.
func (c Credential) Deprecated() bool {
	return c.DeprecatedSince != nil
}

func (c Credential) String() string {
	return fmt.Sprintf("%s [%s] %s (%d attributes)", c.ID, c.Environment, c.Name, len(c.Attributes))
}

// CredentialAttribute is a single disclosable field within a credential.
type CredentialAttribute struct {
	Tag          string           `json:"tag"`
	Name         TranslatedString `json:"name"`
	Description  TranslatedString `json:"description"`
	CredentialID string           `json:"credential_id"`
}

// EnvironmentInfo describes a scheme environment as served by the backend.
type EnvironmentInfo struct {
	Environment Environment      `json:"environment"`
	SchemeID    string           `json:"scheme_id"`
	Description TranslatedString `json:"description"`
}
