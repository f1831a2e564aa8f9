// Package storage persists trend analysis runs. Three backends exist: a
// SQLite results database, a Postgres warehouse, and a msgpack snapshot file
// for cheap re-rendering of reports without re-analysis.
package storage

import (
	"github.com/glacioclim/albedotrend/internal/trend"
)

// ResultStore persists and retrieves analysis runs.
type ResultStore interface {
	// SaveRun persists a complete run (fraction results plus bootstrap
	// summaries).
	SaveRun(run *trend.Run) error

	// LoadRun retrieves a run by ID.
	LoadRun(id string) (*trend.Run, error)

	// LoadLatest retrieves the most recently started run.
	LoadLatest() (*trend.Run, error)

	Close() error
}
