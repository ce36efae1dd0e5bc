package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Neo4j database names: an ASCII letter followed by letters, digits,
	// dots and dashes.
	databasePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9.\-]*$`)

	// Labels, relation types and property keys as they appear in loader
	// scripts and CSV headers.
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// MaxIdentifierLength bounds labels, relation types and property keys.
const MaxIdentifierLength = 100

func init() {
	validate = validator.New()
	mustRegister("dbname", func(fl validator.FieldLevel) bool {
		return databasePattern.MatchString(fl.Field().String())
	})
	mustRegister("keyprefix", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return !strings.HasPrefix(p, "/") && !strings.Contains(p, "//")
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Struct validates v against its `validate` tags. Every failing field is
// reported.
func Struct(v any) error {
	if v == nil {
		return errors.New("cannot validate nil value")
	}
	return formatValidationError(validate.Struct(v))
}

// ValidateIdentifier checks a label, relation type or property key.
func ValidateIdentifier(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%s '%s' exceeds maximum length of %d characters", what, name, MaxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%s '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", what, name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: must be one of [%s]", field, param))
		case "required_if":
			errs = append(errs, fmt.Errorf("%s: field is required when %s", field, param))
		case "dbname":
			errs = append(errs, fmt.Errorf("%s: %q is not a valid database name", field, e.Value()))
		case "keyprefix":
			errs = append(errs, fmt.Errorf("%s: %q is not a valid key prefix", field, e.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
