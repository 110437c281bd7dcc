package colors

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

// DefaultMaterials seeds the material library of a new catalog.
var DefaultMaterials = []string{
	"Interior Wall", "Exterior Wall", "Framing", "Roofing",
	"Foundation", "MEP", "Siding", "Trim", "Windows", "Doors",
	"Flooring", "Electrical", "Plumbing", "HVAC", "Insulation",
	"Custom Material", "User Defined",
}

// Materials returns the material names offered for new assignments.
func (c *Catalog) Materials() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.materials)
}

// ImportMaterialLibrary replaces the material library with the non-empty
// lines of the file at path.
func (c *Catalog) ImportMaterialLibrary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open material library: %w", err)
	}
	defer f.Close()

	var materials []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			materials = append(materials, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read material library: %w", err)
	}

	c.mu.Lock()
	c.materials = materials
	c.mu.Unlock()
	return nil
}
