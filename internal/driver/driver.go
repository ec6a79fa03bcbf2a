// Package driver maps a configured database engine to the dialect names
// understood by Atlas Cloud.
package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Driver identifies a database dialect.
type Driver int

const (
	Unknown Driver = iota
	SQLite
	MySQL
	Postgres
)

// Configuration errors
var (
	ErrEngineNotConfigured = errors.New("database engine is not configured")
	ErrUnsupportedDriver   = errors.New("unsupported database driver")
)

// UnsupportedError reports an engine string that matches no known driver.
type UnsupportedError struct {
	Engine string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("error reading database driver: %s", e.Engine)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedDriver
}

// engines is checked in order; the first matching substring wins.
var engines = []struct {
	marker string
	driver Driver
}{
	{"mysql", MySQL},
	{"postgresql", Postgres},
	{"sqlite3", SQLite},
}

// Detect maps an engine identifier such as "django.db.backends.postgresql"
// to a Driver.
func Detect(engine string) (Driver, error) {
	engine = strings.TrimSpace(engine)
	if engine == "" {
		return Unknown, ErrEngineNotConfigured
	}

	for _, e := range engines {
		if strings.Contains(engine, e.marker) {
			return e.driver, nil
		}
	}

	return Unknown, &UnsupportedError{Engine: engine}
}

// String returns the GraphQL enum literal of the driver.
func (d Driver) String() string {
	switch d {
	case SQLite:
		return "SQLITE"
	case MySQL:
		return "MYSQL"
	case Postgres:
		return "POSTGRES"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the driver as its enum literal so it can be used
// directly as a GraphQL variable.
func (d Driver) MarshalJSON() ([]byte, error) {
	if d == Unknown {
		return nil, fmt.Errorf("cannot encode %w", ErrUnsupportedDriver)
	}
	return json.Marshal(d.String())
}

// Transactional reports whether the dialect can roll back DDL, in which case
// rendered migrations are wrapped in BEGIN/COMMIT.
func (d Driver) Transactional() bool {
	return d != MySQL
}
