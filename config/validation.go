package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable for its environment.
func ValidateConfig(cfg *Config) error {
	var errs []error

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required for postgres"})
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.MediaBackend {
	case MediaLocal:
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "is required for local media"})
		}
	case MediaS3:
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 media"})
		}
	default:
		errs = append(errs, ValidationError{"MEDIA_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.MediaBackend)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		errs = append(errs, ValidationError{"ACCESS_TOKEN_TTL", "token lifetimes must be positive"})
	}

	if cfg.Env == Production {
		if cfg.JWTSecret == devJWTSecret {
			errs = append(errs, ValidationError{"JWT_SECRET", "the development secret cannot be used in production"})
		}
		if cfg.DBDriver == DriverPostgres && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in production"})
		}
	}

	return errors.Join(errs...)
}
