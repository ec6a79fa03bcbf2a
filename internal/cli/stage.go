package cli

import (
	"errors"

	"github.com/eleven-am/schemaviz/internal/atlascloud"
	"github.com/eleven-am/schemaviz/internal/migration"
)

// Stage names a step of the visualize pipeline.
type Stage int

const (
	StageDriver Stage = iota
	StageHistory
	StageCollect
	StageCompute
	StageVisualize
	StageShare
)

var stageNames = map[Stage]string{
	StageDriver:    "driver",
	StageHistory:   "history",
	StageCollect:   "collect",
	StageCompute:   "compute",
	StageVisualize: "visualize",
	StageShare:     "share",
}

func (s Stage) String() string {
	return stageNames[s]
}

var stageMessages = map[Stage]string{
	StageDriver:    "failed to detect database driver",
	StageHistory:   "inconsistent migration history",
	StageCollect:   "failed to load migrations",
	StageCompute:   "failed to compute atlas schema",
	StageVisualize: "failed to visualize schema",
	StageShare:     "failed to share visualization",
}

// logicalFailures are well-formed outcomes that carry no useful detail
// beyond their own message.
var logicalFailures = []error{
	migration.ErrNoMigrations,
	atlascloud.ErrSchemaNotComputed,
	atlascloud.ErrNotCreated,
	atlascloud.ErrNotShared,
}

// StageError tags the failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Logical() {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Logical reports whether the stage got a well-formed answer lacking the
// expected result, as opposed to a protocol or transport error.
func (e *StageError) Logical() bool {
	for _, target := range logicalFailures {
		if errors.Is(e.Err, target) {
			return true
		}
	}
	return false
}

// Message is the status line printed for the failure.
func (e *StageError) Message() string {
	for _, target := range logicalFailures {
		if errors.Is(e.Err, target) {
			return target.Error()
		}
	}
	return stageMessages[e.Stage]
}
