package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var validate = newValidator()

// ValidationError aggregates every field violation found on a task.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("dependencies", func(fl validator.FieldLevel) bool {
		for _, dep := range DependencyList(fl.Field().String()) {
			id, err := strconv.ParseInt(dep, 10, 64)
			if err != nil || id <= 0 {
				return false
			}
		}
		return true
	})
	v.RegisterStructValidation(validateTaskDates, Task{})
	return v
}

// validateTaskDates checks the date fields, which the tag rules cannot express.
func validateTaskDates(sl validator.StructLevel) {
	t := sl.Current().Interface().(Task)
	if t.StartDate.IsZero() {
		sl.ReportError(t.StartDate, "start_date", "StartDate", "required", "")
	}
	if t.EndDate.IsZero() {
		sl.ReportError(t.EndDate, "end_date", "EndDate", "required", "")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		sl.ReportError(t.EndDate, "end_date", "EndDate", "enddate", "start_date")
	}
}

// Validate runs every field rule on t and returns a *ValidationError listing
// all violations, or nil.
func (t Task) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Messages: []string{err.Error()}}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Messages: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if field == "progress" {
			return "progress must be between 0 and 100"
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return "progress must be between 0 and 100"
	case "rgbhex":
		return field + " must be a hex color like #RGB or #RRGGBB"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "dependencies":
		return field + " must be a comma-separated list of task ids"
	case "gt":
		return field + " must be a positive task id"
	case "enddate":
		return "end_date must be on or after start_date"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
