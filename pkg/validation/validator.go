package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{4,19}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Default returns the shared validator used by application services.
func Default() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		configure(instance)
	})
	return instance
}

// Init applies the same configuration to the validator behind Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Struct validates s with the shared validator.
func Struct(s any) error {
	return Default().Struct(s)
}

// configure uses JSON tag names in errors and registers project aliases.
func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterAlias("personname", "max=64")
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		switch f := fl.Field().Interface().(type) {
		case time.Time:
			return f.Before(time.Now())
		case string:
			t, ok := helpers.ParseTimeAny(f)
			return ok && t.Before(time.Now())
		}
		return false
	})
}

// ToViolations converts binding/validation errors into a stable list of
// {field, message} pairs.
func ToViolations(err error) []Violation {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	var pe *time.ParseError
	switch {
	case errors.As(err, &ute):
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return []Violation{{Field: field, Message: "must be of type " + ute.Type.String()}}
	case errors.As(err, &pe):
		return []Violation{{Field: "payload", Message: "invalid date format, expected RFC 3339"}}
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []Violation{{Field: "payload", Message: "invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]Violation, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, Violation{Field: fe.Field(), Message: formatFieldError(fe)})
		}
		return out
	}

	return []Violation{{Field: "payload", Message: "invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.ActualTag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "pastdate":
		return "must be a valid date in the past"
	case "e164", "phone":
		return "must be a valid phone number"
	case "email":
		return "must be a valid email"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "datetime":
		return "must match datetime format: " + param
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
