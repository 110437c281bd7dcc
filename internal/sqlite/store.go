package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// basePalette is the boundary_colors component value of base colors.
const basePalette = ""

// SaveBoundaries replaces every stored boundary with boundaries.
func (b *Backend) SaveBoundaries(boundaries []types.Boundary) error {
	return save(b, boundariesJSONL, boundaries, insertBoundaries,
		"DELETE FROM boundary_colors", "DELETE FROM boundaries")
}

// LoadBoundaries returns every stored boundary ordered by name.
func (b *Backend) LoadBoundaries() ([]types.Boundary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return queryBoundaries(b.db)
}

// BoundariesUsingColor returns the names of boundaries whose base or override
// palettes contain color, in ascending order.
func (b *Backend) BoundariesUsingColor(color int) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	rows, err := b.db.Query(
		`SELECT DISTINCT boundary_name FROM boundary_colors WHERE color_index = ? ORDER BY boundary_name`, color)
	if err != nil {
		return nil, fmt.Errorf("querying boundary colors: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SavePlans replaces every stored plan with plans.
func (b *Backend) SavePlans(plans []types.Plan) error {
	return save(b, plansJSONL, plans, insertPlans, "DELETE FROM plans")
}

// LoadPlans returns every stored plan ordered by name.
func (b *Backend) LoadPlans() ([]types.Plan, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return queryPlans(b.db)
}

// SaveAssignments replaces every stored color assignment.
func (b *Backend) SaveAssignments(assignments []types.ColorAssignment) error {
	return save(b, assignmentsJSONL, assignments, insertAssignments, "DELETE FROM assignments")
}

// LoadAssignments returns every stored assignment ordered by color index.
func (b *Backend) LoadAssignments() ([]types.ColorAssignment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return queryAssignments(b.db)
}

// save rewrites one entity kind: the tables in a transaction, then the JSONL
// file. Values the tables skip are still written; the loader drops them again.
func save[T any](b *Backend, file string, values []T, insert func(*sql.Tx, []T) error, deletes ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range deletes {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing %s: %w", file, err)
		}
	}
	if err := insert(tx, values); err != nil {
		return err
	}

	records, err := encodeJSONL(values)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return b.persistLocked(file, records)
}

func insertBoundaries(tx *sql.Tx, boundaries []types.Boundary) error {
	bstmt, err := tx.Prepare(`INSERT OR REPLACE INTO boundaries (name, attachment_plan, active, extent) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing boundary insert: %w", err)
	}
	defer bstmt.Close()
	cstmt, err := tx.Prepare(`INSERT INTO boundary_colors (boundary_name, component, color_index, ordinal) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing color insert: %w", err)
	}
	defer cstmt.Close()

	for _, bd := range lastByKey(boundaries, func(bd types.Boundary) string { return bd.Name }) {
		if !types.ValidBoundaryName(bd.Name) {
			continue
		}
		extent, err := nullableJSON(bd.Extent, bd.Extent == nil)
		if err != nil {
			return err
		}
		if _, err := bstmt.Exec(bd.Name, bd.AttachmentPlan, bd.Active, extent); err != nil {
			return fmt.Errorf("inserting boundary %q: %w", bd.Name, err)
		}
		if err := insertPalette(cstmt, bd.Name, basePalette, bd.BaseColors); err != nil {
			return err
		}
		for ch, colors := range bd.Overrides {
			if err := insertPalette(cstmt, bd.Name, ch.String(), colors); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertPalette(stmt *sql.Stmt, boundary, component string, colors []int) error {
	for i, color := range colors {
		if _, err := stmt.Exec(boundary, component, color, i); err != nil {
			return fmt.Errorf("inserting colors of %q: %w", boundary, err)
		}
	}
	return nil
}

func queryBoundaries(db *sql.DB) ([]types.Boundary, error) {
	rows, err := db.Query(`SELECT name, attachment_plan, active, extent FROM boundaries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying boundaries: %w", err)
	}
	defer rows.Close()

	out := []types.Boundary{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			name, plan string
			active     bool
			extent     sql.NullString
		)
		if err := rows.Scan(&name, &plan, &active, &extent); err != nil {
			return nil, err
		}
		bd := types.NewBoundary(name, plan)
		bd.Active = active
		if extent.Valid {
			var e types.Extent
			if err := json.Unmarshal([]byte(extent.String), &e); err != nil {
				return nil, fmt.Errorf("decoding extent of %q: %w", name, err)
			}
			bd.Extent = &e
		}
		index[name] = len(out)
		out = append(out, *bd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := db.Query(`SELECT boundary_name, component, color_index FROM boundary_colors ORDER BY boundary_name, component, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("querying boundary colors: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var (
			name, component string
			color           int
		)
		if err := crows.Scan(&name, &component, &color); err != nil {
			return nil, err
		}
		i, ok := index[name]
		if !ok {
			continue
		}
		if component == basePalette {
			out[i].BaseColors = append(out[i].BaseColors, color)
			continue
		}
		ch, err := types.ParseComponentChar(component)
		if err != nil {
			return nil, fmt.Errorf("boundary %q: %w", name, err)
		}
		out[i].Overrides[ch] = append(out[i].Overrides[ch], color)
	}
	return out, crows.Err()
}

func insertPlans(tx *sql.Tx, plans []types.Plan) error {
	stmt, err := tx.Prepare(`INSERT INTO plans
    (name, path, elevation, loaded, scale, rotation, insert_x, insert_y, insert_z, properties, host_ref)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing plan insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range lastByKey(plans, func(p types.Plan) string { return p.Name }) {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		props, err := nullableJSON(p.Properties, len(p.Properties) == 0)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(p.Name, p.Path, p.Elevation, p.Loaded, p.Scale, p.Rotation,
			p.InsertPoint.X, p.InsertPoint.Y, p.InsertPoint.Z, props, p.HostRef)
		if err != nil {
			return fmt.Errorf("inserting plan %q: %w", p.Name, err)
		}
	}
	return nil
}

func queryPlans(db *sql.DB) ([]types.Plan, error) {
	rows, err := db.Query(`SELECT name, path, elevation, loaded, scale, rotation,
    insert_x, insert_y, insert_z, properties, host_ref FROM plans ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	out := []types.Plan{}
	for rows.Next() {
		var (
			p     types.Plan
			props sql.NullString
		)
		err := rows.Scan(&p.Name, &p.Path, &p.Elevation, &p.Loaded, &p.Scale, &p.Rotation,
			&p.InsertPoint.X, &p.InsertPoint.Y, &p.InsertPoint.Z, &props, &p.HostRef)
		if err != nil {
			return nil, err
		}
		if props.Valid {
			if err := json.Unmarshal([]byte(props.String), &p.Properties); err != nil {
				return nil, fmt.Errorf("decoding properties of %q: %w", p.Name, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func insertAssignments(tx *sql.Tx, assignments []types.ColorAssignment) error {
	stmt, err := tx.Prepare(`INSERT INTO assignments
    (color_index, material_name, measurement_types, unit_cost, cell, formula, description, active, true_color)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing assignment insert: %w", err)
	}
	defer stmt.Close()

	byColor := lastByKey(assignments, func(a types.ColorAssignment) int { return a.ColorIndex })
	for _, a := range byColor {
		if !types.ValidColorIndex(a.ColorIndex) {
			continue
		}
		measures, err := json.Marshal(measurementsOrEmpty(a.MeasurementTypes))
		if err != nil {
			return err
		}
		trueColor, err := nullableJSON(a.TrueColor, a.TrueColor == nil)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(a.ColorIndex, a.MaterialName, string(measures), a.UnitCost.String(),
			a.Cell, a.Formula, a.Description, a.Active, trueColor)
		if err != nil {
			return fmt.Errorf("inserting assignment %d: %w", a.ColorIndex, err)
		}
	}
	return nil
}

func queryAssignments(db *sql.DB) ([]types.ColorAssignment, error) {
	rows, err := db.Query(`SELECT color_index, material_name, measurement_types, unit_cost,
    cell, formula, description, active, true_color FROM assignments ORDER BY color_index`)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	out := []types.ColorAssignment{}
	for rows.Next() {
		var (
			a         types.ColorAssignment
			measures  string
			cost      string
			trueColor sql.NullString
		)
		err := rows.Scan(&a.ColorIndex, &a.MaterialName, &measures, &cost,
			&a.Cell, &a.Formula, &a.Description, &a.Active, &trueColor)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(measures), &a.MeasurementTypes); err != nil {
			return nil, fmt.Errorf("decoding measurement types of %d: %w", a.ColorIndex, err)
		}
		if a.UnitCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("decoding unit cost of %d: %w", a.ColorIndex, err)
		}
		if trueColor.Valid {
			var rgb types.RGB
			if err := json.Unmarshal([]byte(trueColor.String), &rgb); err != nil {
				return nil, fmt.Errorf("decoding true color of %d: %w", a.ColorIndex, err)
			}
			a.TrueColor = &rgb
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// lastByKey drops earlier values that share a key with a later one, keeping
// the order of the survivors.
func lastByKey[T any, K comparable](values []T, key func(T) K) []T {
	last := make(map[K]int, len(values))
	for i, v := range values {
		last[key(v)] = i
	}
	out := make([]T, 0, len(last))
	for i, v := range values {
		if last[key(v)] == i {
			out = append(out, v)
		}
	}
	return out
}

func nullableJSON(v any, isNull bool) (sql.NullString, error) {
	if isNull {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func measurementsOrEmpty(m []types.MeasurementType) []types.MeasurementType {
	if m == nil {
		return []types.MeasurementType{}
	}
	return slices.Clone(m)
}
