package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// newTopicValidator returns a validator that knows the topic enumerations and
// reports fields by their YAML names.
func newTopicValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.Department(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("risktrend", func(fl validator.FieldLevel) bool {
		return models.RiskTrend(fl.Field().String()).Valid()
	})
	return v
}

// validateTopic checks a topic's fields and returns one error listing every
// problem found.
func validateTopic(v *validator.Validate, topic *models.Topic) error {
	var errs []string

	if err := v.Struct(topic); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating topic: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describeFieldError(fe))
		}
	}
	if topic.TargetResolutionDate.IsZero() {
		errs = append(errs, "target_resolution_date is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("topic validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max":
		return fmt.Sprintf("%s %v is out of range, must be between 1 and 5", field, fe.Value())
	case "department":
		return fmt.Sprintf("%s %q is invalid, must be one of: %s", field, fe.Value(), joinEnum(models.Departments()))
	case "priority":
		return fmt.Sprintf("%s %q is invalid, must be one of: %s", field, fe.Value(), joinEnum(models.Priorities()))
	case "status":
		return fmt.Sprintf("%s %q is invalid, must be one of: %s", field, fe.Value(), joinEnum(models.Statuses()))
	case "risktrend":
		return fmt.Sprintf("%s %q is invalid, must be one of: %s", field, fe.Value(), joinEnum(models.RiskTrends()))
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
