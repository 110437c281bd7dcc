package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/takeoff/internal/paths"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func newColorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color",
		Short: "Map colors to materials, measurements and costs",
	}
	cmd.AddCommand(
		newColorAssignCmd(a),
		newColorRemoveCmd(a),
		newColorListCmd(a),
		newColorCostCmd(a),
		newColorMaterialsCmd(a),
		newPresetCmd(a, "preset-save", "Write all assignments to a CSV preset", false),
		newPresetCmd(a, "preset-load", "Replace all assignments with a CSV preset", true),
	)
	return cmd
}

func newColorAssignCmd(a *app) *cobra.Command {
	var (
		measures    string
		cost        string
		cell        string
		formula     string
		description string
		inactive    bool
		rgb         string
	)
	cmd := &cobra.Command{
		Use:   "assign <index> <material>",
		Short: "Assign a material to a color",
		Long: "Assign a material to a palette color. With --rgb the index argument is\n" +
			"omitted and the nearest palette index is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignment := types.ColorAssignment{
				Cell:        strings.ToUpper(cell),
				Formula:     formula,
				Description: description,
				Active:      !inactive,
			}
			ms, err := parseMeasurements(measures)
			if err != nil {
				return err
			}
			assignment.MeasurementTypes = ms
			if cost != "" {
				if assignment.UnitCost, err = decimal.NewFromString(cost); err != nil {
					return fmt.Errorf("%w: unit cost %q", types.ErrInvalidData, cost)
				}
			}

			return a.run(true, func(s *session) error {
				var index int
				if rgb != "" {
					if len(args) != 1 {
						return fmt.Errorf("%w: --rgb takes only <material>", types.ErrInvalidData)
					}
					assignment.MaterialName = args[0]
					r, g, b, err := parseRGB(rgb)
					if err != nil {
						return err
					}
					if index, err = s.catalog.AssignTrueColor(r, g, b, assignment); err != nil {
						return err
					}
				} else {
					if len(args) != 2 {
						return fmt.Errorf("%w: expected <index> <material>", types.ErrInvalidData)
					}
					if index, err = parseColorIndex(args[0]); err != nil {
						return err
					}
					assignment.MaterialName = args[1]
					if err := s.catalog.Assign(index, assignment); err != nil {
						return err
					}
				}
				stored, err := s.catalog.Get(index)
				if err != nil {
					return err
				}
				return a.emit(cmd, stored, func(w io.Writer) {
					fmt.Fprintf(w, "Color %d -> %s\n", index, stored.MaterialName)
				})
			})
		},
	}
	cmd.Flags().StringVar(&measures, "measure", "", "comma-separated measurement types (LF, SF, EA, LF_PITCH, SF_PITCH, LF_HIP, CUSTOM)")
	cmd.Flags().StringVar(&cost, "cost", "", "unit cost")
	cmd.Flags().StringVar(&cell, "cell", "", "spreadsheet cell fed by this color")
	cmd.Flags().StringVar(&formula, "formula", "", "spreadsheet formula")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "exclude the color from takeoffs")
	cmd.Flags().StringVar(&rgb, "rgb", "", "true color r,g,b")
	return cmd
}

type removal struct {
	Color      int      `json:"color"`
	Boundaries []string `json:"boundaries"`
}

func newColorRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a color assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseColorIndex(args[0])
			if err != nil {
				return err
			}
			return a.run(true, func(s *session) error {
				if err := s.catalog.Remove(index); err != nil {
					return err
				}
				used, err := s.store.BoundariesUsingColor(index)
				if err != nil {
					return systemError(err)
				}
				res := removal{Color: index, Boundaries: used}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Removed color %d\n", index)
					if len(used) > 0 {
						fmt.Fprintf(w, "Still used by boundaries: %s\n", strings.Join(used, ", "))
					}
				})
			})
		},
	}
}

func newColorListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List color assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				list := s.catalog.All()
				return a.emit(cmd, list, func(w io.Writer) {
					for _, c := range list {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ColorIndex, c.MaterialName,
							c.PrimaryMeasurement(), c.UnitCost.StringFixed(2), c.Cell)
					}
				})
			})
		},
	}
}

type costing struct {
	Color       int                   `json:"color"`
	Measurement types.MeasurementType `json:"measurement"`
	Raw         float64               `json:"raw"`
	Quantity    float64               `json:"quantity"`
	Cost        decimal.Decimal       `json:"cost"`
	Formula     string                `json:"formula"`
}

func newColorCostCmd(a *app) *cobra.Command {
	var pitch float64
	cmd := &cobra.Command{
		Use:   "cost <index> <raw-quantity>",
		Short: "Adjust a raw quantity for the color's measurement and price it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseColorIndex(args[0])
			if err != nil {
				return err
			}
			raw, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: quantity %q", types.ErrInvalidData, args[1])
			}
			return a.run(false, func(s *session) error {
				assignment, err := s.catalog.Get(index)
				if err != nil {
					return err
				}
				m := assignment.PrimaryMeasurement()
				qty := s.catalog.CalculateQuantity(index, raw, m, pitch)
				res := costing{
					Color:       index,
					Measurement: m,
					Raw:         raw,
					Quantity:    qty,
					Cost:        s.catalog.CalculateCost(index, qty),
					Formula:     s.catalog.GenerateFormula(index, m),
				}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "%g %s = %s\n", res.Quantity, res.Measurement, res.Cost.StringFixed(2))
				})
			})
		},
	}
	cmd.Flags().Float64Var(&pitch, "pitch", 1, "pitch factor for LF_PITCH and SF_PITCH")
	return cmd
}

func newColorMaterialsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the material library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				list := s.catalog.Materials()
				return a.emit(cmd, list, func(w io.Writer) {
					for _, m := range list {
						fmt.Fprintln(w, m)
					}
				})
			})
		},
	}
}

// newPresetCmd builds preset-save and preset-load. The path defaults to the
// preset file in the data directory.
func newPresetCmd(a *app, use, short string, load bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [path]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(load, func(s *session) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				} else {
					dataDir, err := a.dataDir()
					if err != nil {
						return err
					}
					path = paths.PresetFile(dataDir)
				}

				if load {
					if err := s.catalog.LoadPreset(path); err != nil {
						return err
					}
				} else if err := s.catalog.SavePreset(path); err != nil {
					return systemError(err)
				}
				n := s.catalog.Len()
				return a.emit(cmd, map[string]any{"path": path, "assignments": n}, func(w io.Writer) {
					verb := "Saved"
					if load {
						verb = "Loaded"
					}
					fmt.Fprintf(w, "%s %d assignments (%s)\n", verb, n, path)
				})
			})
		},
	}
}

func parseMeasurements(s string) ([]types.MeasurementType, error) {
	out := []types.MeasurementType{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		m, ok := types.ParseMeasurementType(strings.ToUpper(field))
		if !ok {
			return nil, fmt.Errorf("%w: measurement type %q", types.ErrInvalidData, field)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseRGB(s string) (r, g, b int, err error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: rgb %q must be r,g,b", types.ErrInvalidColor, s)
	}
	var v [3]int
	for i, f := range fields {
		if v[i], err = strconv.Atoi(strings.TrimSpace(f)); err != nil {
			return 0, 0, 0, fmt.Errorf("%w: rgb %q", types.ErrInvalidColor, s)
		}
	}
	return v[0], v[1], v[2], nil
}
