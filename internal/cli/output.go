package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// emit writes v as indented JSON in --json mode, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if !a.flags.jsonMode {
		text(w)
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// parseColors parses a comma-separated list of color indexes. An empty
// string is the empty list.
func parseColors(s string) ([]int, error) {
	out := []int{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || !types.ValidColorIndex(n) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidColor, field)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseColorIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !types.ValidColorIndex(n) {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidColor, s)
	}
	return n, nil
}

// parsePoint parses "x,y,z".
func parsePoint(s string) (types.Point3D, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return types.Point3D{}, fmt.Errorf("%w: point %q must be x,y,z", types.ErrInvalidData, s)
	}
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return types.Point3D{}, fmt.Errorf("%w: point %q", types.ErrInvalidData, s)
		}
		xyz[i] = v
	}
	return types.Point3D{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
