package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the database in one transaction: all succeed or the database stays
// empty. Lines that do not decode into a record are skipped; unknown fields
// are ignored.
func loadAllJSONL(db *sql.DB, dataDir string, logger *zap.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	boundaries, err := decodeFile[types.Boundary](dataDir, boundariesJSONL, logger)
	if err != nil {
		return err
	}
	if err := insertBoundaries(tx, boundaries); err != nil {
		return fmt.Errorf("loading %s: %w", boundariesJSONL, err)
	}

	plans, err := decodeFile[types.Plan](dataDir, plansJSONL, logger)
	if err != nil {
		return err
	}
	if err := insertPlans(tx, plans); err != nil {
		return fmt.Errorf("loading %s: %w", plansJSONL, err)
	}

	assignments, err := decodeFile[types.ColorAssignment](dataDir, assignmentsJSONL, logger)
	if err != nil {
		return err
	}
	if err := insertAssignments(tx, assignments); err != nil {
		return fmt.Errorf("loading %s: %w", assignmentsJSONL, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	logger.Debug("jsonl loaded",
		zap.Int("boundaries", len(boundaries)),
		zap.Int("plans", len(plans)),
		zap.Int("assignments", len(assignments)),
	)
	return nil
}

// decodeFile decodes every record of a JSONL file into T, skipping records
// that do not decode.
func decodeFile[T any](dataDir, file string, logger *zap.Logger) ([]T, error) {
	records, err := readJSONL(filepath.Join(dataDir, file))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	out := make([]T, 0, len(records))
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			logger.Warn("skipping undecodable record", zap.String("file", file), zap.Int("record", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
