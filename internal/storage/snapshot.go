package storage

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/glacioclim/albedotrend/internal/trend"
)

// SaveSnapshot serializes a complete run, including the per-iteration
// bootstrap arrays, to a msgpack file. Reports can be re-rendered from a
// snapshot without re-running the analysis.
func SaveSnapshot(path string, run *trend.Run) error {
	data, err := msgpack.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a run back from a msgpack snapshot file.
func LoadSnapshot(path string) (*trend.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	run := &trend.Run{}
	if err := msgpack.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if run.Bootstrap == nil {
		run.Bootstrap = make(map[string]trend.BootstrapResult)
	}
	return run, nil
}
