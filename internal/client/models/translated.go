package models

import "strings"

// TranslatedString is a text with an English and a Dutch rendering.
type TranslatedString struct {
	En string `json:"en"`
	Nl string `json:"nl"`
}

// In returns the text for lang ("en" or "nl"), falling back to the other
// locale when the requested one is empty.
func (t TranslatedString) In(lang string) string {
	if strings.EqualFold(lang, "nl") {
		if t.Nl != "" {
			return t.Nl
		}
		return t.En
	}
	if t.En != "" {
		return t.En
	}
	return t.Nl
}

// Values returns the non-empty renderings, English first.
func (t TranslatedString) Values() []string {
	out := make([]string, 0, 2)
	if t.En != "" {
		out = append(out, t.En)
	}
	if t.Nl != "" {
		out = append(out, t.Nl)
	}
	return out
}

func (t TranslatedString) String() string {
	return t.In("en")
}
