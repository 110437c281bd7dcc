package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/takeoff/internal/plans"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage attached plans, elevations and layers",
	}
	cmd.AddCommand(
		newPlanAttachCmd(a),
		newPlanDetachCmd(a),
		newPlanToggleCmd(a),
		newPlanElevationCmd(a),
		newPlanListCmd(a),
		newPlanElevationsCmd(a),
		newPlanLayersCmd(a),
		newPlanTemplateCmd(a),
	)
	return cmd
}

func newPlanAttachCmd(a *app) *cobra.Command {
	var (
		elevation string
		scale     float64
		rotation  float64
		insert    string
	)
	cmd := &cobra.Command{
		Use:   "attach <name> <path>",
		Short: "Attach a construction plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := types.Plan{
				Name:      args[0],
				Path:      args[1],
				Elevation: elevation,
				Scale:     scale,
				Rotation:  rotation,
			}
			if insert != "" {
				pt, err := parsePoint(insert)
				if err != nil {
					return err
				}
				p.InsertPoint = pt
			}
			return a.run(true, func(s *session) error {
				attached, err := s.plans.Attach(p)
				if err != nil {
					return err
				}
				return a.emit(cmd, attached, func(w io.Writer) {
					fmt.Fprintf(w, "Attached plan %s (%s)\n", attached.Name, attached.Elevation)
				})
			})
		},
	}
	cmd.Flags().StringVar(&elevation, "elevation", "", "elevation code (default: "+types.DefaultElevation+")")
	cmd.Flags().Float64Var(&scale, "scale", 1, "insertion scale")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "insertion rotation in degrees")
	cmd.Flags().StringVar(&insert, "insert", "", "insertion point x,y,z")
	return cmd
}

func newPlanDetachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <name>",
		Short: "Detach a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(true, func(s *session) error {
				if err := s.plans.Detach(args[0]); err != nil {
					return err
				}
				return a.emit(cmd, map[string]string{"detached": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Detached plan %s\n", args[0])
				})
			})
		},
	}
}

func newPlanToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <name>",
		Short: "Load or unload a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(true, func(s *session) error {
				loaded, err := s.plans.Toggle(args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string]any{"plan": args[0], "loaded": loaded}, func(w io.Writer) {
					fmt.Fprintf(w, "%s loaded: %s\n", args[0], onOff(loaded))
				})
			})
		},
	}
}

func newPlanElevationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elevation <name> <code>",
		Short: "Select the elevation of a plan and print the layer visibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(true, func(s *session) error {
				vis, err := s.plans.ApplyElevation(args[0], args[1])
				if err != nil {
					return err
				}
				return a.emit(cmd, vis, func(w io.Writer) {
					names := make([]string, 0, len(vis))
					for name := range vis {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						fmt.Fprintf(w, "%s\t%s\n", name, onOff(vis[name]))
					}
				})
			})
		},
	}
}

func newPlanListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List attached plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(false, func(s *session) error {
				list := s.plans.All()
				return a.emit(cmd, list, func(w io.Writer) {
					for _, p := range list {
						fmt.Fprintf(w, "%s\t%s\t%s\tloaded=%s\n", p.Name, p.Path, p.Elevation, onOff(p.Loaded))
					}
				})
			})
		},
	}
}

type elevationInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func newPlanElevationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elevations",
		Short: "List the known elevation codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []elevationInfo
			for _, code := range plans.Elevations() {
				desc, _ := plans.ElevationDescription(code)
				list = append(list, elevationInfo{Code: code, Description: desc})
			}
			return a.emit(cmd, list, func(w io.Writer) {
				for _, e := range list {
					fmt.Fprintf(w, "%s\t%s\n", e.Code, e.Description)
				}
			})
		},
	}
}

func newPlanLayersCmd(a *app) *cobra.Command {
	var materials bool
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List the standard drawing layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layers := plans.StandardLayers()
			if materials {
				layers = plans.MaterialLayers()
			}
			return a.emit(cmd, layers, func(w io.Writer) {
				for _, l := range layers {
					fmt.Fprintf(w, "%s\t%d\t%s\n", l.Name, l.Color, l.Description)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&materials, "materials", false, "list the per-material boundary, fill and background layers")
	return cmd
}

func newPlanTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Load or save the plan configuration of a drawing template",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "load <template>",
			Short: "Attach the plans listed in a template configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(true, func(s *session) error {
					if err := s.plans.LoadTemplate(args[0]); err != nil {
						return err
					}
					list := s.plans.All()
					return a.emit(cmd, list, func(w io.Writer) {
						fmt.Fprintf(w, "%d plans attached\n", len(list))
					})
				})
			},
		},
		&cobra.Command{
			Use:   "save <template>",
			Short: "Write the attached plans to a template configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(false, func(s *session) error {
					if err := s.plans.SaveTemplate(args[0]); err != nil {
						return systemError(err)
					}
					path := plans.TemplateConfigPath(args[0])
					return a.emit(cmd, map[string]string{"path": path}, func(w io.Writer) {
						fmt.Fprintf(w, "Wrote %s\n", path)
					})
				})
			},
		},
	)
	return cmd
}
