package ppu

// RGBA is a packed 8-bit-per-channel opaque color, the pixel type the
// display backend consumes directly.
type RGBA struct {
	R, G, B, A byte
}

// shades holds the four monochrome tones a 2-bit color index can resolve
// to, darkest first.
var shades = [4]RGBA{
	{R: 0x34, G: 0x3D, B: 0x37, A: 0xFF},
	{R: 0x55, G: 0x64, B: 0x5A, A: 0xFF},
	{R: 0x8B, G: 0xA3, B: 0x94, A: 0xFF},
	{R: 0xE0, G: 0xF0, B: 0xE7, A: 0xFF},
}

// applyPalette maps a 2-bit color index through a palette register (BGP,
// OBP0, or OBP1): each 2-bit field of reg selects one of the four shades
// for the corresponding source index.
func applyPalette(reg byte, colorIndex byte) RGBA {
	shade := (reg >> (colorIndex * 2)) & 0x03
	return shades[shade]
}
