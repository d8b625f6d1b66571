package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
}

// FieldError is one failed rule, in struct field order.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	failures := Errors(v)
	if len(failures) == 0 {
		return nil
	}

	errors := make(map[string]string, len(failures))
	for _, f := range failures {
		errors[f.Field] = f.Tag
	}
	return errors
}

// Errors returns the failed rules for v in declaration order, nil when v is valid.
func Errors(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Tag: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: fieldPath(e), Tag: e.Tag(), Param: e.Param()})
	}
	return out
}

// IsClock reports whether s is a 24h "HH:MM" time of day.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// fieldPath drops the top-level struct name from the namespace, so
// "FormValues.image_urls[1]" becomes "image_urls[1]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
