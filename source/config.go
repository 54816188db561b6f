package source

import (
	"net"
	"net/url"
	"regexp"
	"strconv"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// Supported drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// Config holds database connection parameters.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	Table    string
}

// DSN returns the connection URL for the configured driver.
func (c Config) DSN() (string, error) {
	host := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	switch c.Driver {
	case DriverSQLServer:
		q := url.Values{}
		q.Set("database", c.Database)
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     host,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case DriverPostgres:
		q := url.Values{}
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		q.Set("sslmode", sslMode)
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     host,
			Path:     "/" + c.Database,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", errors.NewValidationError("DB_DRIVER", "must be sqlserver or postgres", c.Driver)
	}
}

// Query returns the extraction statement. The table name is checked against
// a dotted identifier pattern because it is interpolated, not bound.
func (c Config) Query() (string, error) {
	if !ValidTableName(c.Table) {
		return "", errors.NewValidationError("DB_TABLE", "must be a [schema.]table identifier", c.Table)
	}
	return "SELECT * FROM " + c.Table, nil
}

// ValidTableName reports whether name is a plain or dotted SQL identifier.
func ValidTableName(name string) bool {
	return identifierRe.MatchString(name)
}
