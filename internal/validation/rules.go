package validation

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Custom tags registered on every engine built by newEngine.
const (
	tagString      = "string"
	tagArray       = "array"
	tagInt         = "int"
	tagISODate     = "isodate"
	tagFuture      = "future"
	tagBeforeField = "beforefield"
	tagTaskID      = "taskid"
)

func newEngine(validID func(string) bool, now func() time.Time) *validator.Validate {
	engine := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(engine, tagString, func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String
	})
	mustRegister(engine, tagArray, func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Slice
	})
	mustRegister(engine, tagInt, func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Int
	})
	mustRegister(engine, tagISODate, func(fl validator.FieldLevel) bool {
		_, ok := dateValue(fl.Field())
		return ok
	})
	// Values that are not dates pass; isodate reports them.
	mustRegister(engine, tagFuture, func(fl validator.FieldLevel) bool {
		t, ok := dateValue(fl.Field())
		return !ok || t.After(now())
	})
	// beforefield=<name> compares against another field of the input. It
	// passes when either side is missing or not a date.
	mustRegister(engine, tagBeforeField, func(fl validator.FieldLevel) bool {
		t, ok := dateValue(fl.Field())
		if !ok {
			return true
		}
		all, _ := fl.Top().Interface().(Fields)
		bound, ok := dateValue(reflect.ValueOf(all[fl.Param()]))
		return !ok || t.Before(bound)
	})
	mustRegister(engine, tagTaskID, func(fl validator.FieldLevel) bool {
		field := fl.Field()
		return field.Kind() == reflect.String && validID(field.String())
	})

	return engine
}

func mustRegister(engine *validator.Validate, tag string, fn validator.Func) {
	err := engine.RegisterValidation(tag, fn)
	if err != nil {
		panic(err)
	}
}

// Tag builds a rule from a validator tag. Type guards such as "string" go
// first so the built-in checks after them only see values of that kind.
func Tag(tag, message string) Rule {
	return Rule{Tag: tag, Message: message}
}

// Each builds a rule applied to every element of an array value. Values
// that are not arrays pass.
func Each(tag, message string) Rule {
	return Rule{Tag: tag, Message: message, Each: true}
}

func oneOf[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return tagString + ",oneof=" + strings.Join(parts, " ")
}

func lengthTag(minLen, maxLen int) string {
	return tagString + ",min=" + strconv.Itoa(minLen) + ",max=" + strconv.Itoa(maxLen)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102",
}

// ParseDate accepts ISO 8601 dates and date-times in extended or basic
// format, with a Z, ±hh:mm or ±hhmm offset or none. Values without a zone
// are read as UTC. Surrounding whitespace is rejected.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func dateValue(v reflect.Value) (time.Time, bool) {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return time.Time{}, false
	}
	return ParseDate(v.String())
}
