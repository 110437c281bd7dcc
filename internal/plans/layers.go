package plans

// Layer is a drawing layer definition handed to the CAD host.
type Layer struct {
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Description string `json:"description,omitempty"`
}

// Layers toggled by elevation codes.
const (
	LayerRoofAFrame       = "FRAMING_ROOF_AFRAME"
	LayerRoofHip          = "FRAMING_ROOF_HIP"
	LayerFoundationGarage = "FOUNDATION_GARAGE"
	LayerFramingGarage    = "FRAMING_GARAGE"
	LayerSidingStucco     = "SIDING_STUCCO"
	LayerSidingHardi      = "SIDING_HARDI"
	LayerSidingBrick      = "SIDING_BRICK"
)

var standardLayers = []Layer{
	{"FOUNDATION", 8, "Foundation elements"},
	{"FOUNDATION_SLAB", 8, "Foundation slab"},
	{"FOUNDATION_FOOTING", 251, "Foundation footings"},
	{"FRAMING", 30, "Framing elements"},
	{"FRAMING_WALL", 30, "Wall framing"},
	{"FRAMING_FLOOR", 32, "Floor framing"},
	{"FRAMING_ROOF", 34, "Roof framing"},
	{"ROOFING", 5, "Roofing materials"},
	{"ROOFING_SHINGLES", 5, "Roof shingles"},
	{"ROOFING_UNDERLAYMENT", 252, "Roof underlayment"},
	{"SIDING", 3, "Siding materials"},
	{LayerSidingHardi, 3, "Hardi board siding"},
	{LayerSidingStucco, 151, "Stucco siding"},
	{LayerSidingBrick, 1, "Brick siding"},
	{"ELECTRICAL", 1, "Electrical systems"},
	{"ELECTRICAL_ROUGH", 11, "Rough electrical"},
	{"ELECTRICAL_FINISH", 21, "Finish electrical"},
	{"PLUMBING", 4, "Plumbing systems"},
	{"PLUMBING_ROUGH", 14, "Rough plumbing"},
	{"PLUMBING_FINISH", 24, "Finish plumbing"},
	{"HVAC", 6, "HVAC systems"},
	{"HVAC_DUCT", 16, "HVAC ductwork"},
	{"HVAC_EQUIPMENT", 26, "HVAC equipment"},
	{"INSULATION", 52, "Insulation"},
	{"DRYWALL", 254, "Drywall"},
	{"FLOORING", 62, "Flooring"},
	{"CABINETS", 72, "Cabinets"},
	{"BOUNDARY", 2, "Boundary lines"},
	{"ANNOTATION", 7, "Annotations"},
	{"DIMENSION", 141, "Dimensions"},
}

// materialPalette holds the boundary, fill and background colors of one
// material.
type materialPalette struct {
	name                       string
	boundary, fill, background int
}

var materialPalettes = []materialPalette{
	{"CONCRETE", 8, 18, 251},
	{"WOOD", 30, 40, 50},
	{"STEEL", 250, 251, 252},
	{"DRYWALL", 254, 253, 252},
	{"MASONRY", 1, 11, 21},
	{"GLASS", 131, 141, 151},
	{"INSULATION", 52, 62, 72},
}

// StandardLayers returns the construction layers a new drawing starts with.
func StandardLayers() []Layer {
	out := make([]Layer, len(standardLayers))
	copy(out, standardLayers)
	return out
}

// MaterialLayers returns BOUNDARY_, FILL_ and BACKGROUND_ layers for every
// material palette.
func MaterialLayers() []Layer {
	out := make([]Layer, 0, 3*len(materialPalettes))
	for _, m := range materialPalettes {
		out = append(out,
			Layer{Name: "BOUNDARY_" + m.name, Color: m.boundary},
			Layer{Name: "FILL_" + m.name, Color: m.fill},
			Layer{Name: "BACKGROUND_" + m.name, Color: m.background},
		)
	}
	return out
}

// LayerVisibility returns the layers an elevation code turns on (true) or
// off (false). Frame and garage letters outside the AGS alphabet leave their
// layers unspecified; exactly one siding layer is on when the siding letter
// is known. Codes shorter than three characters yield an empty map.
func LayerVisibility(code string) map[string]bool {
	vis := make(map[string]bool)
	if len(code) < 3 {
		return vis
	}

	switch code[0] {
	case 'A':
		vis[LayerRoofAFrame] = true
		vis[LayerRoofHip] = false
	case 'H':
		vis[LayerRoofAFrame] = false
		vis[LayerRoofHip] = true
	}

	switch code[1] {
	case 'G':
		vis[LayerFoundationGarage] = true
		vis[LayerFramingGarage] = true
	case 'N':
		vis[LayerFoundationGarage] = false
		vis[LayerFramingGarage] = false
	}

	vis[LayerSidingStucco] = code[2] == 'S'
	vis[LayerSidingHardi] = code[2] == 'H'
	vis[LayerSidingBrick] = code[2] == 'B'
	return vis
}

// LayerStateNames lists the predefined layer states.
var LayerStateNames = []string{
	"All_Visible",
	"Foundation_Only",
	"Framing_Only",
	"Roofing_Only",
	"MEP_Systems",
	"Takeoff_View",
	"Plan_A", "Plan_B", "Plan_C", "Plan_D",
}

// LayerState is a named layer configuration; at most one is active.
type LayerState struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
