package migration

import (
	"errors"
	"fmt"
)

// ErrNoMigrations is returned when collection produced no SQL at all.
var ErrNoMigrations = errors.New("no migrations found")

// NodeNotFoundError reports a dependency on a migration that does not exist.
type NodeNotFoundError struct {
	Migration  Key
	Dependency Key
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("migration %s dependencies reference nonexistent parent node %s", e.Migration, e.Dependency)
}

// CircularDependencyError reports a cycle through the named migration.
type CircularDependencyError struct {
	Migration Key
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected involving migration %s", e.Migration)
}

// RenderError wraps a failure to render one migration to SQL.
type RenderError struct {
	Migration Key
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to get migration %s %s: %v", e.Migration.App, e.Migration.Name, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// InconsistentHistoryError reports an applied migration whose dependency is
// not applied.
type InconsistentHistoryError struct {
	Migration  Key
	Dependency Key
}

func (e *InconsistentHistoryError) Error() string {
	return fmt.Sprintf("migration %s is applied before its dependency %s", e.Migration, e.Dependency)
}
