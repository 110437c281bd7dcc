package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func newBoundaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boundary",
		Short: "Manage boundaries and their color palettes",
	}
	cmd.AddCommand(
		newBoundaryCreateCmd(a),
		a.boundaryMutation("delete <name>", "Delete a boundary", 1, func(s *session, args []string) error {
			return s.registry.Delete(args[0])
		}),
		a.boundaryMutation("activate <name>", "Mark a boundary active", 1, func(s *session, args []string) error {
			return s.registry.SetActive(args[0], true)
		}),
		a.boundaryMutation("deactivate <name>", "Mark a boundary inactive", 1, func(s *session, args []string) error {
			return s.registry.SetActive(args[0], false)
		}),
		a.boundaryMutation("base <name> <colors>", "Replace the base palette (comma-separated colors)", 2, func(s *session, args []string) error {
			colors, err := parseColors(args[1])
			if err != nil {
				return err
			}
			return s.registry.SetBaseColors(args[0], colors)
		}),
		a.boundaryMutation("assign <name> <component> <colors>", "Replace the override palette of a component character", 3, func(s *session, args []string) error {
			ch, err := types.ParseComponentChar(args[1])
			if err != nil {
				return err
			}
			colors, err := parseColors(args[2])
			if err != nil {
				return err
			}
			return s.registry.AssignOverride(args[0], ch, colors)
		}),
		a.boundaryMutation("extent <name> <min x,y,z> <max x,y,z>", "Record the drawing extent of a boundary", 3, func(s *session, args []string) error {
			minPt, err := parsePoint(args[1])
			if err != nil {
				return err
			}
			maxPt, err := parsePoint(args[2])
			if err != nil {
				return err
			}
			return s.registry.SetExtents(args[0], minPt, maxPt)
		}),
		newBoundaryResolveCmd(a),
		newBoundaryDiffCmd(a),
		newBoundaryListCmd(a),
		newBoundaryShowCmd(a),
	)
	return cmd
}

// boundaryMutation builds a subcommand that applies fn and saves.
func (a *app) boundaryMutation(use, short string, nargs int, fn func(*session, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(true, func(s *session) error {
				if err := fn(s, args); err != nil {
					return err
				}
				b, err := s.registry.Get(args[0])
				if err != nil {
					// Deleted.
					return a.emit(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) {
						fmt.Fprintf(w, "Deleted boundary %s\n", args[0])
					})
				}
				return a.emit(cmd, b, func(w io.Writer) { printBoundary(w, b) })
			})
		},
	}
}

func newBoundaryCreateCmd(a *app) *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an active boundary with empty palettes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(true, func(s *session) error {
				if err := s.registry.Create(args[0], plan); err != nil {
					return err
				}
				b, err := s.registry.Get(args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd, b, func(w io.Writer) {
					fmt.Fprintf(w, "Created boundary %s\n", b.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "", "plan the boundary is attached to")
	return cmd
}

type resolution struct {
	Boundary string `json:"boundary"`
	Version  string `json:"version"`
	Colors   []int  `json:"colors"`
}

func newBoundaryResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name> <version-code>",
		Short: "Print the colors visible in a boundary for a version code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				if !s.registry.Has(args[0]) {
					return fmt.Errorf("%w: boundary %q", types.ErrNotFound, args[0])
				}
				res := resolution{
					Boundary: args[0],
					Version:  args[1],
					Colors:   s.registry.ResolveColors(args[0], args[1]).Sorted(),
				}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintln(w, joinInts(res.Colors))
				})
			})
		},
	}
}

type difference struct {
	Boundary string `json:"boundary"`
	From     string `json:"from"`
	To       string `json:"to"`
	Colors   []int  `json:"colors"`
}

func newBoundaryDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <name> <version-a> <version-b>",
		Short: "Print the colors that differ between two version codes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				if !s.registry.Has(args[0]) {
					return fmt.Errorf("%w: boundary %q", types.ErrNotFound, args[0])
				}
				d := difference{
					Boundary: args[0],
					From:     args[1],
					To:       args[2],
					Colors:   s.registry.Diff(args[0], args[1], args[2]).Sorted(),
				}
				return a.emit(cmd, d, func(w io.Writer) {
					fmt.Fprintln(w, joinInts(d.Colors))
				})
			})
		},
	}
}

func newBoundaryListCmd(a *app) *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boundaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				var list []types.Boundary
				if plan != "" {
					list = s.registry.ListByPlan(plan)
				} else {
					list = s.registry.Snapshot()
				}
				if list == nil {
					list = []types.Boundary{}
				}
				return a.emit(cmd, list, func(w io.Writer) {
					for _, b := range list {
						fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, b.AttachmentPlan, activeLabel(b.Active))
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "", "only boundaries attached to this plan")
	return cmd
}

func newBoundaryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a boundary and its palettes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				b, err := s.registry.Get(args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd, b, func(w io.Writer) { printBoundary(w, b) })
			})
		},
	}
}

func printBoundary(w io.Writer, b types.Boundary) {
	fmt.Fprintf(w, "Name:   %s\n", b.Name)
	fmt.Fprintf(w, "Plan:   %s\n", b.AttachmentPlan)
	fmt.Fprintf(w, "State:  %s\n", activeLabel(b.Active))
	fmt.Fprintf(w, "Base:   %s\n", joinInts(b.BaseColors))

	chars := make([]types.ComponentChar, 0, len(b.Overrides))
	for ch := range b.Overrides {
		chars = append(chars, ch)
	}
	slices.Sort(chars)
	for _, ch := range chars {
		fmt.Fprintf(w, "  %s:    %s\n", ch, joinInts(b.Overrides[ch]))
	}
	if b.Extent != nil {
		fmt.Fprintf(w, "Extent: (%g,%g,%g)-(%g,%g,%g)\n",
			b.Extent.Min.X, b.Extent.Min.Y, b.Extent.Min.Z,
			b.Extent.Max.X, b.Extent.Max.Y, b.Extent.Max.Z)
	}
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
