package feeder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// ValidCellRef reports whether ref is a cell ("B15") or a range ("A1:C3").
func ValidCellRef(ref string) bool {
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if _, _, err := excelize.CellNameToCoordinates(p); err != nil {
			return false
		}
	}
	return true
}

// absoluteRef turns "B15" into "$B$15" and "A1:C3" into "$A$1:$C$3".
func absoluteRef(ref string) (string, error) {
	if !ValidCellRef(ref) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidCell, ref)
	}
	parts := strings.Split(ref, ":")
	for i, p := range parts {
		col, row, err := excelize.SplitCellName(p)
		if err != nil {
			return "", fmt.Errorf("%w: %q", types.ErrInvalidCell, ref)
		}
		parts[i] = "$" + strings.ToUpper(col) + "$" + strconv.Itoa(row)
	}
	return strings.Join(parts, ":"), nil
}
