// Package credentials ranks credentials against a free-text query.
package credentials

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
)

// Match scores before the environment weight is applied.
const (
	ScoreExactName     = 100
	ScoreNameContains  = 50
	ScoreAttributeName = 10
)

// DefaultWeights favours production credentials over staging and demo.
var DefaultWeights = map[models.Environment]int{
	models.EnvironmentProduction: 3,
	models.EnvironmentStaging:    2,
	models.EnvironmentDemo:       1,
}

// FilterAndRank is FilterAndRankWeighted with DefaultWeights.
func FilterAndRank(creds []models.Credential, query string, enabled map[models.Environment]bool) []models.Credential {
	return FilterAndRankWeighted(creds, query, enabled, DefaultWeights)
}

// FilterAndRankWeighted returns the credentials matching query, best match
// first.
//
// A credential is dropped when its environment is not enabled (absent from
// enabled counts as disabled), when it is deprecated, or when it scores
// zero. Names are compared case-insensitively in every locale. The score is
// multiplied by the environment weight; an environment without a weight
// counts as 1. Ties keep their input order. creds is not modified.
func FilterAndRankWeighted(creds []models.Credential, query string, enabled map[models.Environment]bool, weights map[models.Environment]int) []models.Credential {
	query = strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		cred  models.Credential
		score int
	}

	matches := make([]scored, 0, len(creds))
	for _, c := range creds {
		if !enabled[c.Environment] || c.Deprecated() {
			continue
		}
		score := Score(c, query)
		if score == 0 {
			continue
		}
		weight, ok := weights[c.Environment]
		if !ok {
			weight = 1
		}
		matches = append(matches, scored{cred: c, score: score * weight})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]models.Credential, len(matches))
	for i, m := range matches {
		out[i] = m.cred
	}
	return out
}

// Score is the unweighted relevance of c for a lower-cased, trimmed query.
// An empty query is a substring of every name.
func Score(c models.Credential, query string) int {
	names := c.Name.Values()

	for _, name := range names {
		if strings.ToLower(name) == query {
			return ScoreExactName
		}
	}
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), query) {
			return ScoreNameContains
		}
	}
	for _, attr := range c.Attributes {
		for _, name := range attr.Name.Values() {
			if strings.Contains(strings.ToLower(name), query) {
				return ScoreAttributeName
			}
		}
	}
	return 0
}

// AllEnvironments enables every known environment.
func AllEnvironments() map[models.Environment]bool {
	enabled := make(map[models.Environment]bool, len(models.Environments))
	for _, env := range models.Environments {
		enabled[env] = true
	}
	return enabled
}
