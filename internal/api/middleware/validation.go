package middleware

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"sensevoice-asr/internal/api/errors"
	"sensevoice-asr/internal/app/api/provider"
	"sensevoice-asr/internal/app/asr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("asrlang", func(fl validator.FieldLevel) bool {
		return provider.IsSupportedLanguage(fl.Field().String())
	})
	_ = v.RegisterValidation("boolish", func(fl validator.FieldLevel) bool {
		_, ok := ParseBoolParam(fl.Field().String())
		return ok
	})
	return v
}

// Param returns the named parameter from the query string, falling back to
// the form body.
func Param(c *gin.Context, key string) string {
	if v, ok := c.GetQuery(key); ok {
		return v
	}
	v, _ := c.GetPostForm(key)
	return v
}

// ParseBoolParam parses 1/0, true/false, yes/no and on/off, ignoring case.
func ParseBoolParam(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// ValidateStruct validates req against its validate tags.
func ValidateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errors.NewInvalidInputError("invalid request parameters")
	}

	fieldError := validationErrs[0]
	switch fieldError.Tag() {
	case "asrlang":
		return fmt.Errorf("%w: %q", asr.ErrUnsupportedLanguage, fieldError.Value())
	case "boolish":
		return errors.NewInvalidInputError(fmt.Sprintf("invalid boolean value for %s: %q", fieldError.Field(), fieldError.Value()))
	default:
		return errors.NewInvalidInputError(fmt.Sprintf("invalid value for %s", fieldError.Field()))
	}
}

