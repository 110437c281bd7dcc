// Package feeder writes takeoff quantities into a spreadsheet workbook. Each
// color maps to a cell on a worksheet; exporting a takeoff writes the
// quantity of every mapped color into its cell.
package feeder

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/takeoff"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// DefaultWorksheet receives mappings that name no worksheet.
const DefaultWorksheet = "Feeder"

// Mapping places a color's quantity in a worksheet cell.
type Mapping struct {
	Color     int    `json:"color"`
	Cell      string `json:"cell"`
	Worksheet string `json:"worksheet"`
}

// Workbook is an open feeder workbook.
type Workbook struct {
	mu               sync.Mutex
	file             *excelize.File
	path             string
	worksheet        string
	preserveFormulas bool
	mappings         map[int]Mapping
	logger           *zap.Logger
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithWorksheet sets the default worksheet.
func WithWorksheet(name string) Option {
	return func(w *Workbook) {
		if name != "" {
			w.worksheet = name
		}
	}
}

// WithPreserveFormulas controls whether cell updates skip cells holding a
// formula. On by default.
func WithPreserveFormulas(preserve bool) Option {
	return func(w *Workbook) { w.preserveFormulas = preserve }
}

// WithLogger sets the workbook logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workbook) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Open opens the workbook at path, or starts a new one that Save will write
// there. The default worksheet is created when missing.
func Open(path string, opts ...Option) (*Workbook, error) {
	w := &Workbook{
		path:             path,
		worksheet:        DefaultWorksheet,
		preserveFormulas: true,
		mappings:         make(map[int]Mapping),
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		w.file = f
	case errors.Is(err, fs.ErrNotExist):
		w.file = excelize.NewFile()
		// A new workbook starts with Sheet1; it becomes the default sheet.
		if err := w.file.SetSheetName("Sheet1", w.worksheet); err != nil {
			return nil, fmt.Errorf("name default worksheet: %w", err)
		}
	default:
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	if err := w.ensureSheet(w.worksheet); err != nil {
		w.file.Close()
		return nil, err
	}
	w.logger.Debug("workbook opened", zap.String("path", path), zap.String("worksheet", w.worksheet))
	return w, nil
}

// Path returns the file the workbook saves to.
func (w *Workbook) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// MapColor places color at cell on worksheet ("" means the default sheet).
// The worksheet is created when missing. An existing mapping is replaced.
func (w *Workbook) MapColor(color int, cell, worksheet string) error {
	if !types.ValidColorIndex(color) {
		return fmt.Errorf("%w: %d", types.ErrInvalidColor, color)
	}
	if !ValidCellRef(cell) {
		return fmt.Errorf("%w: %q", types.ErrInvalidCell, cell)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if worksheet == "" {
		worksheet = w.worksheet
	}
	if err := w.ensureSheet(worksheet); err != nil {
		return err
	}
	w.mappings[color] = Mapping{Color: color, Cell: strings.ToUpper(cell), Worksheet: worksheet}
	return nil
}

// UnmapColor removes the mapping of color.
func (w *Workbook) UnmapColor(color int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.mappings[color]; !ok {
		return fmt.Errorf("%w: color %d is not mapped", types.ErrNotFound, color)
	}
	delete(w.mappings, color)
	return nil
}

// Mappings returns every mapping ordered by color.
func (w *Workbook) Mappings() []Mapping {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Mapping, 0, len(w.mappings))
	for _, m := range w.mappings {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Mapping) int { return a.Color - b.Color })
	return out
}

// MappingsByWorksheet groups Mappings by worksheet.
func (w *Workbook) MappingsByWorksheet() map[string][]Mapping {
	out := make(map[string][]Mapping)
	for _, m := range w.Mappings() {
		out[m.Worksheet] = append(out[m.Worksheet], m)
	}
	return out
}

// UpdateCell writes value into the cell mapped to color. It reports false
// when the cell holds a formula that is being preserved.
func (w *Workbook) UpdateCell(color int, value any) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.mappings[color]
	if !ok {
		return false, fmt.Errorf("%w: color %d is not mapped", types.ErrNotFound, color)
	}
	return w.write(m.Worksheet, m.Cell, value)
}

// UpdateCells writes each value into its color's cell and returns how many
// cells were written. Unmapped colors are skipped.
func (w *Workbook) UpdateCells(values map[int]float64) (int, error) {
	colors := make([]int, 0, len(values))
	for color := range values {
		colors = append(colors, color)
	}
	slices.Sort(colors)

	written := 0
	for _, color := range colors {
		ok, err := w.UpdateCell(color, values[color])
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// ExportRows writes the quantity of each row. A row goes to its color's
// mapping, or to the row's own cell on the default worksheet. Rows with
// neither are skipped. It returns how many cells were written.
func (w *Workbook) ExportRows(rows []takeoff.QuantityRow) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	written := 0
	for _, row := range rows {
		sheet, cell := w.worksheet, row.Cell
		if m, ok := w.mappings[row.Color]; ok {
			sheet, cell = m.Worksheet, m.Cell
		}
		if cell == "" {
			continue
		}
		if !ValidCellRef(cell) {
			return written, fmt.Errorf("color %d: %w: %q", row.Color, types.ErrInvalidCell, cell)
		}
		ok, err := w.write(sheet, cell, row.Quantity)
		if err != nil {
			return written, fmt.Errorf("color %d: %w", row.Color, err)
		}
		if ok {
			written++
		}
	}
	w.logger.Debug("rows exported", zap.Int("rows", len(rows)), zap.Int("written", written))
	return written, nil
}

// Value returns the displayed value of a cell on the default worksheet.
func (w *Workbook) Value(cell string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetCellValue(w.worksheet, cell)
}

// SetFormula stores a formula in a cell of the default worksheet. A leading
// "=" is optional.
func (w *Workbook) SetFormula(cell, formula string) error {
	if !ValidCellRef(cell) || strings.Contains(cell, ":") {
		return fmt.Errorf("%w: %q", types.ErrInvalidCell, cell)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.SetCellFormula(w.worksheet, cell, strings.TrimPrefix(formula, "="))
}

// Formula returns the formula of a cell on the default worksheet with a
// leading "=", or "" when the cell holds none.
func (w *Workbook) Formula(cell string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.file.GetCellFormula(w.worksheet, cell)
	if err != nil || f == "" {
		return "", err
	}
	return "=" + f, nil
}

// CreateSheet adds a worksheet if it does not exist.
func (w *Workbook) CreateSheet(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ensureSheet(name)
}

// CreatePlanSheet adds the worksheet for a plan and returns its name.
func (w *Workbook) CreatePlanSheet(plan string) (string, error) {
	name := "Plan_" + plan
	if err := w.CreateSheet(name); err != nil {
		return "", err
	}
	return name, nil
}

// Sheets returns the worksheet names in workbook order.
func (w *Workbook) Sheets() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetSheetList()
}

// CreateNamedRange defines a workbook-scoped name for a cell or range on the
// default worksheet.
func (w *Workbook) CreateNamedRange(name, ref string) error {
	abs, err := absoluteRef(ref)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	err = w.file.SetDefinedName(&excelize.DefinedName{
		Name:     name,
		RefersTo: "'" + w.worksheet + "'!" + abs,
	})
	if err != nil {
		return fmt.Errorf("%w: named range %q: %v", types.ErrInvalidName, name, err)
	}
	return nil
}

// NamedRanges returns name -> reference for every defined name.
func (w *Workbook) NamedRanges() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string)
	for _, dn := range w.file.GetDefinedName() {
		out[dn.Name] = dn.RefersTo
	}
	return out
}

// Save writes the workbook to its path.
func (w *Workbook) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveAs(w.path)
}

// SaveAs writes the workbook to path and makes path the save target.
func (w *Workbook) SaveAs(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.saveAs(path); err != nil {
		return err
	}
	w.path = path
	return nil
}

// Close releases the workbook. Unsaved changes are lost.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Workbook) saveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	w.logger.Debug("workbook saved", zap.String("path", path))
	return nil
}

// write must be called with w.mu held.
func (w *Workbook) write(sheet, cell string, value any) (bool, error) {
	target := cell
	if i := strings.IndexByte(cell, ':'); i >= 0 {
		target = cell[:i]
	}
	if w.preserveFormulas {
		f, err := w.file.GetCellFormula(sheet, target)
		if err != nil {
			return false, err
		}
		if f != "" {
			w.logger.Debug("formula preserved", zap.String("sheet", sheet), zap.String("cell", target))
			return false, nil
		}
	}
	if err := w.file.SetCellValue(sheet, target, value); err != nil {
		return false, err
	}
	return true, nil
}

// ensureSheet must be called with w.mu held or before w is shared.
func (w *Workbook) ensureSheet(name string) error {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("%w: worksheet %q: %v", types.ErrInvalidName, name, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("%w: worksheet %q: %v", types.ErrInvalidName, name, err)
	}
	return nil
}
