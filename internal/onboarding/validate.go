package onboarding

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"fullName":          "full name",
	"phone":             "phone",
	"location":          "location",
	"yearsOfExperience": "years of experience",
	"desiredJobTitles":  "at least one desired job title",
	"jobType":           "at least one job type",
}

// ValidationError lists the required fields missing on a step.
type ValidationError struct {
	State  State
	Fields []string // json names, in declaration order
}

func (e *ValidationError) Error() string {
	labels := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if l, ok := fieldLabels[f]; ok {
			labels = append(labels, l)
		} else {
			labels = append(labels, f)
		}
	}
	return "please fill in: " + strings.Join(labels, ", ")
}

// validateStep checks the required fields of the given step. Steps with no
// required fields always pass.
func validateStep(state State, d Draft) error {
	var targets []any
	switch state {
	case StateProfile:
		targets = []any{d.Personal, d.Professional}
	case StatePreferences, StateError:
		targets = []any{d.Preferences}
	default:
		return nil
	}

	verr := &ValidationError{State: state}
	for _, t := range targets {
		err := validate.Struct(t)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, fe := range fieldErrs {
			name := fe.Field()
			// dive errors are reported as "desiredJobTitles[0]"
			if i := strings.IndexByte(name, '['); i >= 0 {
				name = name[:i]
			}
			if !contains(verr.Fields, name) {
				verr.Fields = append(verr.Fields, name)
			}
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
