package validator

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	initOnce  sync.Once

	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func Init() {
	initOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(fieldName)

		sanitizer = bluemonday.StrictPolicy()

		registerCustomValidations(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidations(engine)
		}
	})
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("slug", validateSlug)
	v.RegisterValidation("no_html", validateNoHTML)
}

// Validate runs struct validation on s. Field names in errors follow the form/json tags.
func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// FieldErrors converts a validation error into messages keyed by field name.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s may not have more than %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s must have at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, fe.Param())
	case "slug":
		return fmt.Sprintf("The %s may only contain lowercase letters, numbers and hyphens.", field)
	case "no_html":
		return fmt.Sprintf("The %s may not contain markup.", field)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// SanitizeString strips all markup and returns plain text; entities the
// sanitizer emits are decoded again so the value is stored unescaped.
func SanitizeString(s string) string {
	Init()
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

func NormalizeSpaces(s string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}
