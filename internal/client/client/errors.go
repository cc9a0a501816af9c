package client

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrijs2005/yiviportal/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = common.ErrUnauthorized
	ErrForbidden    = common.ErrForbidden
	ErrNotFound     = common.ErrNotFound
)

// FieldErrors carries the per-field messages of a rejected submission.
// Messages that do not belong to a field are stored under NonFieldKey.
type FieldErrors struct {
	Fields map[string][]string
}

// NonFieldKey is the key the backend uses for form-wide messages.
const NonFieldKey = "non_field_errors"

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Unwrap() error {
	return common.ErrValidation
}

// Field returns the messages for one field.
func (e *FieldErrors) Field(name string) []string {
	return e.Fields[name]
}

// newFieldErrors flattens a decoded JSON error body. Values may be a
// string, a list of strings, or a nested object whose keys are joined
// with dots ("name.en").
func newFieldErrors(body map[string]any) *FieldErrors {
	fe := &FieldErrors{Fields: map[string][]string{}}
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch val := v.(type) {
		case string:
			fe.Fields[prefix] = append(fe.Fields[prefix], val)
		case []any:
			for _, item := range val {
				walk(prefix, item)
			}
		case map[string]any:
			for k, nested := range val {
				key := k
				if prefix != "" {
					key = prefix + "." + k
				}
				walk(key, nested)
			}
		default:
			fe.Fields[prefix] = append(fe.Fields[prefix], fmt.Sprint(val))
		}
	}
	walk("", body)
	if msgs, ok := fe.Fields["detail"]; ok {
		delete(fe.Fields, "detail")
		fe.Fields[NonFieldKey] = append(fe.Fields[NonFieldKey], msgs...)
	}
	return fe
}
