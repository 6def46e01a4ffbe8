package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-level rules and the cross-field rules the tags cannot express.
func Validate(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		messages := make([]string, 0, len(validationErrs))
		for _, fieldError := range validationErrs {
			messages = append(messages, describeFieldError(fieldError))
		}
		sort.Strings(messages)
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}

	if s.AllowAllOrigins() && len(s.FrontendHosts) > 1 {
		return fmt.Errorf("invalid configuration: FRONTEND_HOSTS cannot mix '*' with explicit hosts")
	}
	if s.Backend == "sensevoice_server" {
		if err := ValidateURL(s.ServerURL, "SENSEVOICE_SERVER_URL"); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if s.CacheEnabled() {
		if err := ValidateTimeout(s.CacheTTL, "ASR_CACHE_TTL"); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return nil
}

func describeFieldError(fieldError validator.FieldError) string {
	field := fieldError.Field()

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s must start with http:// or https://", name)
	}

	return nil
}
