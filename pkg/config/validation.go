package config

import (
	"fmt"
	"strconv"
	"strings"

	errs "adboard/pkg/errors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator collects validation errors across all checks so the
// operator sees every problem at once instead of fixing them one by one.
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{errors: make([]ValidationError, 0)}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errors) > 0 }

func (cv *ConfigValidator) GetErrorsAsString() string {
	var errorStrings []string
	for _, err := range cv.errors {
		errorStrings = append(errorStrings, err.Error())
	}
	return strings.Join(errorStrings, "\n")
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()

	c.validateRequired(validator)
	c.validateRanges(validator)
	c.validateEnvironment(validator)

	if validator.HasErrors() {
		return errs.NewValidation("config.Validate",
			fmt.Sprintf("configuration validation failed:\n%s", validator.GetErrorsAsString()), nil)
	}
	return nil
}

func (c *Config) validateRequired(validator *ConfigValidator) {
	if c.DatabaseURL == "" {
		validator.AddError("DATABASE_URL", c.DatabaseURL, "database URL is required")
	}
	if c.JWTSecret == "" {
		validator.AddError("JWT_SECRET", "", "JWT signing secret is required")
	}
	if c.KafkaBrokers != "" && c.KafkaTopic == "" {
		validator.AddError("KAFKA_TOPIC", c.KafkaTopic, "topic is required when KAFKA_BROKERS is set")
	}
	if c.MinioEndpoint != "" {
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			validator.AddError("MINIO_ACCESS_KEY", "", "access and secret keys are required when MINIO_ENDPOINT is set")
		}
	}
}

func (c *Config) validateRanges(validator *ConfigValidator) {
	if c.DBMaxOpenConns <= 0 {
		validator.AddError("DB_MAX_OPEN_CONNS", strconv.Itoa(c.DBMaxOpenConns), "must be positive")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		validator.AddError("DB_MAX_IDLE_CONNS", strconv.Itoa(c.DBMaxIdleConns), "must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.SearchLimit <= 0 || c.SearchLimit > 100 {
		validator.AddError("SEARCH_LIMIT", strconv.Itoa(c.SearchLimit), "must be in (0, 100]")
	}
	if c.AccessTokenTTL <= 0 {
		validator.AddError("ACCESS_TOKEN_TTL", c.AccessTokenTTL.String(), "must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		validator.AddError("REFRESH_TOKEN_TTL", c.RefreshTokenTTL.String(), "must exceed ACCESS_TOKEN_TTL")
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		validator.AddError("PORT", c.Port, "must be a valid TCP port")
	}
}

func (c *Config) validateEnvironment(validator *ConfigValidator) {
	switch c.Env {
	case "development", "staging", "production":
	default:
		validator.AddError("ENV", c.Env, "must be development, staging or production")
	}
	if c.Env == "production" && len(c.JWTSecret) > 0 && len(c.JWTSecret) < 32 {
		validator.AddError("JWT_SECRET", "***", "must be at least 32 bytes in production")
	}
}
