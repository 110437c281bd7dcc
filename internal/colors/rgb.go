package colors

// primaries maps the seven primary palette colors to their RGB values.
var primaries = [...]struct {
	r, g, b int
}{
	1: {255, 0, 0},     // red
	2: {255, 255, 0},   // yellow
	3: {0, 255, 0},     // green
	4: {0, 255, 255},   // cyan
	5: {0, 0, 255},     // blue
	6: {255, 0, 255},   // magenta
	7: {255, 255, 255}, // white
}

// ColorIndexFromRGB returns the palette index for a true color. The seven
// primaries map exactly; any other color packs the top bits of each channel,
// which may fall outside the palette.
func ColorIndexFromRGB(r, g, b int) int {
	for index := 1; index < len(primaries); index++ {
		p := primaries[index]
		if p.r == r && p.g == g && p.b == b {
			return index
		}
	}
	return ((r & 0xE0) >> 5) | ((g & 0xE0) >> 2) | ((b & 0xC0) << 1)
}
