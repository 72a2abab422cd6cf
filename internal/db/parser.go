package db

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// BuildConnectionString converts a ConnectionConfig to a PostgreSQL URI.
// Redshift speaks the PostgreSQL wire protocol, so pgx accepts it unchanged.
func BuildConnectionString(config *dwh.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	for key, value := range config.AdditionalParams {
		query.Set(key, value)
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// RedactConnectionString returns the URI for config with the password masked.
func RedactConnectionString(config *dwh.ConnectionConfig) string {
	redacted := *config
	if redacted.Password != "" {
		redacted.Password = "xxxxx"
	}
	return BuildConnectionString(&redacted)
}
