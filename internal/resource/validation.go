package resource

import (
	"fmt"
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/models"
)

// Rule is a local check on one draft field, run before any mutation request.
type Rule struct {
	Field   string
	Label   string
	Numeric bool
}

// Required makes field mandatory.
func Required(field, label string) Rule {
	return Rule{Field: field, Label: label}
}

// Numeric makes field mandatory and numeric.
func Numeric(field, label string) Rule {
	return Rule{Field: field, Label: label, Numeric: true}
}

// Check returns a validation error for the first failing rule.
func Check(rec models.Record, rules []Rule) error {
	for _, r := range rules {
		label := r.Label
		if label == "" {
			label = r.Field
		}
		if strings.TrimSpace(rec.String(r.Field)) == "" {
			return api.ValidationError(r.Field, fmt.Sprintf("%s is required", label))
		}
		if r.Numeric {
			if _, ok := rec.Number(r.Field); !ok {
				return api.ValidationError(r.Field, fmt.Sprintf("%s must be a number", label))
			}
		}
	}
	return nil
}
