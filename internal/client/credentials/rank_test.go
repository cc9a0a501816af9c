package credentials

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func cred(id, nameEn string, env models.Environment, attrs ...string) models.Credential {
	c := models.Credential{
		ID:          id,
		Name:        models.TranslatedString{En: nameEn},
		Environment: env,
	}
	for _, a := range attrs {
		c.Attributes = append(c.Attributes, models.CredentialAttribute{Tag: a, Name: models.TranslatedString{En: a}, CredentialID: id})
	}
	return c
}

func ids(creds []models.Credential) []string {
	out := make([]string, 0, len(creds))
	for _, c := range creds {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterAndRank_ExactMatchBeatsSubstring(t *testing.T) {
	creds := []models.Credential{
		cred("pbdf.sidn-pbdf.email-address", "Email Address", models.EnvironmentProduction),
		cred("pbdf.sidn-pbdf.email", "Email", models.EnvironmentProduction),
	}

	got := FilterAndRank(creds, "email", AllEnvironments())

	assert.Equal(t, []string{"pbdf.sidn-pbdf.email", "pbdf.sidn-pbdf.email-address"}, ids(got))
}

func TestFilterAndRank_QueryNormalised(t *testing.T) {
	creds := []models.Credential{
		cred("a", "Email Address", models.EnvironmentProduction),
		cred("b", "Email", models.EnvironmentProduction),
	}

	got := FilterAndRank(creds, "  EMAIL ", AllEnvironments())

	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestFilterAndRank_DisabledEnvironmentsExcluded(t *testing.T) {
	creds := []models.Credential{
		cred("prod", "Email", models.EnvironmentProduction),
		cred("stag", "Email", models.EnvironmentStaging),
		cred("demo", "Email", models.EnvironmentDemo),
	}

	tests := []struct {
		name    string
		enabled map[models.Environment]bool
		want    []string
	}{
		{name: "all", enabled: AllEnvironments(), want: []string{"prod", "stag", "demo"}},
		{name: "demo off", enabled: map[models.Environment]bool{models.EnvironmentProduction: true, models.EnvironmentStaging: true, models.EnvironmentDemo: false}, want: []string{"prod", "stag"}},
		{name: "missing key is disabled", enabled: map[models.Environment]bool{models.EnvironmentDemo: true}, want: []string{"demo"}},
		{name: "nil map", enabled: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterAndRank(creds, "email", tt.enabled)))
		})
	}
}

func TestFilterAndRank_DeprecatedAlwaysExcluded(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := cred("old", "Email", models.EnvironmentProduction)
	old.DeprecatedSince = &since

	got := FilterAndRank([]models.Credential{old, cred("new", "Email", models.EnvironmentDemo)}, "email", AllEnvironments())

	assert.Equal(t, []string{"new"}, ids(got))
	assert.Empty(t, FilterAndRank([]models.Credential{old}, "", AllEnvironments()))
}

func TestFilterAndRank_EnvironmentWeighting(t *testing.T) {
	creds := []models.Credential{
		cred("demo-exact", "Email", models.EnvironmentDemo),
		cred("prod-substring", "Email Address", models.EnvironmentProduction),
		cred("stag-attr", "Contact", models.EnvironmentStaging, "email"),
	}

	got := FilterAndRank(creds, "email", AllEnvironments())

	// 50*3=150, 100*1=100, 10*2=20
	assert.Equal(t, []string{"prod-substring", "demo-exact", "stag-attr"}, ids(got))
}

func TestFilterAndRank_AttributeMatchAndZeroScore(t *testing.T) {
	creds := []models.Credential{
		cred("address", "Address", models.EnvironmentProduction, "street", "city"),
		cred("phone", "Mobile number", models.EnvironmentProduction, "mobilenumber"),
	}

	got := FilterAndRank(creds, "city", AllEnvironments())

	assert.Equal(t, []string{"address"}, ids(got))
	assert.Empty(t, FilterAndRank(creds, "passport", AllEnvironments()))
}

func TestFilterAndRank_DutchNameMatches(t *testing.T) {
	c := cred("pbdf.pbdf.mobilenumber", "Mobile number", models.EnvironmentProduction)
	c.Name.Nl = "Mobiel nummer"

	got := FilterAndRank([]models.Credential{c}, "mobiel nummer", AllEnvironments())

	assert.Equal(t, []string{"pbdf.pbdf.mobilenumber"}, ids(got))
	assert.Equal(t, ScoreExactName, Score(c, "mobiel nummer"))
}

func TestFilterAndRank_StableForTies(t *testing.T) {
	creds := []models.Credential{
		cred("c1", "Email one", models.EnvironmentProduction),
		cred("c2", "Email two", models.EnvironmentProduction),
		cred("c3", "Email three", models.EnvironmentProduction),
	}

	got := FilterAndRank(creds, "email", AllEnvironments())

	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(got))
}

func TestFilterAndRank_EmptyQueryKeepsAllOrderedByWeight(t *testing.T) {
	creds := []models.Credential{
		cred("d", "Demo thing", models.EnvironmentDemo),
		cred("p", "Prod thing", models.EnvironmentProduction),
		cred("s", "Staging thing", models.EnvironmentStaging),
	}

	assert.Equal(t, []string{"p", "s", "d"}, ids(FilterAndRank(creds, "", AllEnvironments())))
}

func TestFilterAndRank_PureAndDeterministic(t *testing.T) {
	creds := []models.Credential{
		cred("a", "Email Address", models.EnvironmentStaging),
		cred("b", "Email", models.EnvironmentProduction),
	}
	snapshot := append([]models.Credential(nil), creds...)

	first := FilterAndRank(creds, "email", AllEnvironments())
	second := FilterAndRank(creds, "email", AllEnvironments())

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, creds, "input must not be reordered")
}

func TestFilterAndRankWeighted_UnknownWeightCountsAsOne(t *testing.T) {
	creds := []models.Credential{
		cred("x", "Email", models.Environment("custom")),
		cred("y", "Email Address", models.EnvironmentProduction),
	}
	enabled := map[models.Environment]bool{"custom": true, models.EnvironmentProduction: true}

	got := FilterAndRankWeighted(creds, "email", enabled, map[models.Environment]int{models.EnvironmentProduction: 1})

	assert.Equal(t, []string{"x", "y"}, ids(got))
}
