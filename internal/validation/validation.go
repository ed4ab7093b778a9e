// Package validation checks request payloads against declarative rule
// tables. A table maps every field to an ordered list of validator tags; all
// fields and all tags are evaluated, so a request gets the complete list of
// violations in one response.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Location string

const (
	LocationBody   Location = "body"
	LocationQuery  Location = "query"
	LocationParams Location = "params"
)

type FieldError struct {
	Type     string   `json:"type"`
	Value    any      `json:"value,omitempty"`
	Msg      string   `json:"msg"`
	Path     string   `json:"path"`
	Location Location `json:"location"`
}

type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Path, fe.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields holds decoded request input keyed by field name. A nil value is
// treated the same as a missing key.
type Fields map[string]any

func (f Fields) present(name string) bool {
	v, ok := f[name]
	return ok && v != nil
}

// Rule is one check of a field's chain, expressed as a validator tag. A
// field gets one error per failing rule.
type Rule struct {
	Tag     string
	Message string
	// Each applies Tag to every element of an array value.
	Each bool
}

type Field struct {
	Name     string
	Location Location
	// Optional fields are skipped entirely when absent.
	Optional bool
	// Trim strips surrounding whitespace from string values in place
	// before the rules run.
	Trim  bool
	Rules []Rule
}

type Schema []Field

// Validate runs every rule of every field. The whole input is passed along
// so cross-field tags can read sibling values. Absent required fields are
// checked as empty strings.
func (s Schema) Validate(engine *validator.Validate, input Fields) Errors {
	var errs Errors
	for _, field := range s {
		present := input.present(field.Name)
		if !present && field.Optional {
			continue
		}

		var value any
		if present {
			value = input[field.Name]
			if str, ok := value.(string); ok && field.Trim {
				value = strings.TrimSpace(str)
				input[field.Name] = value
			}
		}

		checked := value
		if checked == nil {
			checked = ""
		}
		for _, rule := range field.Rules {
			if rule.passes(engine, checked, input) {
				continue
			}
			errs = append(errs, FieldError{
				Type:     "field",
				Value:    value,
				Msg:      rule.Message,
				Path:     field.Name,
				Location: field.Location,
			})
		}
	}
	return errs
}

func (r Rule) passes(engine *validator.Validate, value any, input Fields) bool {
	tag := r.Tag
	if r.Each {
		if reflect.ValueOf(value).Kind() != reflect.Slice {
			return true
		}
		tag = "dive," + tag
	}
	return engine.VarWithValue(value, input, tag) == nil
}
