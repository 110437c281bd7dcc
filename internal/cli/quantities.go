package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/feeder"
	"github.com/mesh-intelligence/takeoff/internal/takeoff"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// quantityFlags are shared by quantities and export.
type quantityFlags struct {
	source   string
	pitch    float64
	inactive bool
}

func (q *quantityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.source, "source", "", "JSON file of measured quantities keyed by color (default: placeholder quantities)")
	cmd.Flags().Float64Var(&q.pitch, "pitch", 1, "pitch factor for LF_PITCH and SF_PITCH")
	cmd.Flags().BoolVar(&q.inactive, "include-inactive", false, "include inactive color assignments")
}

func (q *quantityFlags) options() []takeoff.Option {
	opts := []takeoff.Option{takeoff.WithPitchFactor(q.pitch)}
	if q.inactive {
		opts = append(opts, takeoff.WithInactive())
	}
	return opts
}

// quantitySource returns the measured quantities in path, or the
// placeholder source when path is empty.
func quantitySource(path string) (takeoff.QuantitySource, error) {
	if path == "" {
		return takeoff.PlaceholderSource{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quantities: %w", err)
	}
	var src takeoff.StaticSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("%w: quantities %s: %v", types.ErrInvalidData, path, err)
	}
	return src, nil
}

type takeoffReport struct {
	Boundary string                `json:"boundary,omitempty"`
	Version  string                `json:"version,omitempty"`
	Rows     []takeoff.QuantityRow `json:"rows"`
	Total    decimal.Decimal       `json:"total"`
}

func printReport(w io.Writer, r takeoffReport) {
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%d\t%s\t%.2f %s\t@ %s\t= %s\n", row.Color, row.Material,
			row.Quantity, row.Measurement, row.UnitCost.StringFixed(2), row.Total.StringFixed(2))
	}
	fmt.Fprintf(w, "Total\t%s\n", r.Total.StringFixed(2))
}

func newQuantitiesCmd(a *app) *cobra.Command {
	var q quantityFlags
	cmd := &cobra.Command{
		Use:   "quantities <boundary> <version-code>",
		Short: "Price the colors visible in a boundary for a version code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := quantitySource(q.source)
			if err != nil {
				return err
			}
			return a.run(false, func(s *session) error {
				rows, err := takeoff.BoundaryQuantities(s.registry, args[0], args[1], s.catalog, src, q.options()...)
				if err != nil {
					return err
				}
				report := takeoffReport{Boundary: args[0], Version: args[1], Rows: rows, Total: takeoff.Totals(rows)}
				return a.emit(cmd, report, func(w io.Writer) { printReport(w, report) })
			})
		},
	}
	q.register(cmd)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		q        quantityFlags
		boundary string
		version  string
	)
	cmd := &cobra.Command{
		Use:   "export <workbook>",
		Short: "Write takeoff quantities into the mapped cells of a workbook",
		Long: "Export computes quantities for one boundary and version, or for every\n" +
			"assigned color when --boundary is omitted, and writes them to the cells\n" +
			"named by the color assignments. Cells holding formulas are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if boundary != "" && version == "" {
				return fmt.Errorf("%w: --boundary requires --version", types.ErrInvalidVersionCode)
			}
			src, err := quantitySource(q.source)
			if err != nil {
				return err
			}
			return a.run(false, func(s *session) error {
				var rows []takeoff.QuantityRow
				if boundary != "" {
					rows, err = takeoff.BoundaryQuantities(s.registry, boundary, version, s.catalog, src, q.options()...)
				} else {
					all := types.NewColorSet(s.catalog.AssignedColors()...)
					rows, err = takeoff.Calculate(s.catalog, src, all, q.options()...)
				}
				if err != nil {
					return err
				}

				wb, err := feeder.Open(args[0],
					feeder.WithWorksheet(a.settings.DefaultWorksheet),
					feeder.WithLogger(a.logger))
				if err != nil {
					return systemError(err)
				}
				defer wb.Close()

				for _, p := range s.plans.All() {
					if !p.Loaded {
						continue
					}
					if _, err := wb.CreatePlanSheet(p.Name); err != nil {
						a.logger.Warn("plan sheet not created", zap.String("plan", p.Name), zap.Error(err))
					}
				}
				written, err := wb.ExportRows(rows)
				if err != nil {
					return err
				}
				if err := wb.Save(); err != nil {
					return systemError(err)
				}

				report := takeoffReport{Boundary: boundary, Version: version, Rows: rows, Total: takeoff.Totals(rows)}
				return a.emit(cmd, map[string]any{"workbook": wb.Path(), "written": written, "report": report}, func(w io.Writer) {
					printReport(w, report)
					fmt.Fprintf(w, "Wrote %d cells to %s\n", written, wb.Path())
				})
			})
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&boundary, "boundary", "", "boundary to export (default: all assigned colors)")
	cmd.Flags().StringVar(&version, "version", "", "version code used with --boundary")
	return cmd
}
