package colors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// presetHeader is the first row of every preset file.
var presetHeader = []string{
	"ColorIndex", "MaterialName", "UnitCost", "ExcelCell", "ExcelFormula", "MeasurementType", "Description",
}

// SavePreset writes every assignment to a CSV preset at path. Only the first
// measurement type of each color is kept.
func (c *Catalog) SavePreset(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preset: %w", err)
	}
	if err := writePreset(f, c.All()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePreset(w io.Writer, assignments []types.ColorAssignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(presetHeader); err != nil {
		return fmt.Errorf("write preset header: %w", err)
	}
	for _, a := range assignments {
		measure := ""
		if len(a.MeasurementTypes) > 0 {
			measure = string(a.MeasurementTypes[0])
		}
		record := []string{
			strconv.Itoa(a.ColorIndex),
			a.MaterialName,
			a.UnitCost.String(),
			a.Cell,
			a.Formula,
			measure,
			a.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write preset color %d: %w", a.ColorIndex, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadPreset replaces every assignment with the contents of a CSV preset.
// Loaded colors are active. An unknown measurement type falls back to LF.
// A malformed preset leaves the catalog unchanged.
func (c *Catalog) LoadPreset(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()

	assignments, err := readPreset(f)
	if err != nil {
		return err
	}
	return c.Restore(assignments)
}

func readPreset(r io.Reader) ([]types.ColorAssignment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: preset header: %v", types.ErrInvalidData, err)
	}

	var out []types.ColorAssignment
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: preset: %v", types.ErrInvalidData, err)
		}
		line, _ := cr.FieldPos(0)
		a, err := parsePresetRecord(record)
		if err != nil {
			return nil, fmt.Errorf("preset line %d: %w", line, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func parsePresetRecord(record []string) (types.ColorAssignment, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	index, err := strconv.Atoi(field(0))
	if err != nil || !types.ValidColorIndex(index) {
		return types.ColorAssignment{}, fmt.Errorf("%w: %q", types.ErrInvalidColor, field(0))
	}
	cost := decimal.Zero
	if s := field(2); s != "" {
		cost, err = decimal.NewFromString(s)
		if err != nil {
			return types.ColorAssignment{}, fmt.Errorf("%w: unit cost %q", types.ErrInvalidData, s)
		}
	}
	measure, _ := types.ParseMeasurementType(field(5))

	return types.ColorAssignment{
		ColorIndex:       index,
		MaterialName:     field(1),
		UnitCost:         cost,
		Cell:             field(3),
		Formula:          field(4),
		MeasurementTypes: []types.MeasurementType{measure},
		Description:      field(6),
		Active:           true,
	}, nil
}
