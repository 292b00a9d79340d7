// Package validation checks application payloads against the JSON schema
// a program declares as its application form.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/maeulsoft/programhub/internal/apperr"
)

// ValidatePayload validates a submitted payload against the program's
// application-form schema. A program with no declared form accepts any
// payload. Schema violations surface as a single validation error that
// lists every failing field.
func ValidatePayload(form, payload map[string]any) error {
	if len(form) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(form),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		// The form itself is not a usable schema; treat the submission
		// as acceptable rather than blocking applicants on operator error.
		return nil
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return apperr.Invalid("application payload does not match the program form: %s",
			strings.Join(msgs, "; "))
	}

	return nil
}
