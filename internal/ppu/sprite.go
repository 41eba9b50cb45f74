package ppu

import "sort"

// Sprite is one decoded OAM entry, as selected for the current scanline.
type Sprite struct {
	Y, X     byte
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrPriority = 1 << 7 // 0: OBJ above BG, 1: OBJ behind BG colors 1-3
	attrFlipY    = 1 << 6
	attrFlipX    = 1 << 5
	attrPalette  = 1 << 4 // 0: OBP0, 1: OBP1
)

// searchOAM scans all 40 OAM entries and returns up to 10 that intersect
// scanline ly, in the priority order hardware uses for drawing: smallest X
// first, ties broken by OAM table order.
func searchOAM(oam [0xA0]byte, ly byte, tall bool) []Sprite {
	height := 8
	if tall {
		height = 16
	}

	var found []Sprite
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		topY := int(oam[base]) - 16
		if int(ly) < topY || int(ly) >= topY+height {
			continue
		}
		found = append(found, Sprite{
			Y:        oam[base],
			X:        oam[base+1],
			Tile:     oam[base+2],
			Attr:     oam[base+3],
			OAMIndex: i,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].X < found[j].X
	})
	return found
}

// ComposeSpriteLine overlays sprites onto a rendered background color-index
// line for scanline ly, returning sprite color indices (0 = transparent,
// sprites never contribute color 0). bgColorIndex holds the line's BG
// color indices; a non-zero entry (colors 1-3) hides the pixels of sprites
// that have the behind-BG priority bit set. tall selects 8x16 sprite mode.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly byte, bgColorIndex [160]byte, tall bool) [160]byte {
	var out [160]byte
	height := byte(8)
	if tall {
		height = 16
	}

	// Iterate in reverse draw order so the first (highest-priority) sprite
	// in `sprites` ends up winning any per-pixel conflict by being applied
	// last.
	for i := len(sprites) - 1; i >= 0; i-- {
		s := sprites[i]
		spriteTopY := int(s.Y) - 16
		row := int(ly) - spriteTopY
		if s.Attr&attrFlipY != 0 {
			row = int(height) - 1 - row
		}
		tile := s.Tile
		if tall {
			tile &^= 1
			if row >= 8 {
				tile |= 1
				row -= 8
			}
		}

		base := uint16(0x8000) + uint16(tile)*16 + uint16(row)*2
		lo := mem.Read(base)
		hi := mem.Read(base + 1)

		startX := int(s.X) - 8
		for px := 0; px < 8; px++ {
			x := startX + px
			if x < 0 || x >= 160 {
				continue
			}
			bit := px
			if s.Attr&attrFlipX == 0 {
				bit = 7 - px
			}
			ci := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
			if ci == 0 {
				continue
			}
			if s.Attr&attrPriority != 0 && bgColorIndex[x] != 0 {
				continue
			}
			out[x] = ci
			if s.Attr&attrPalette != 0 {
				out[x] |= 0x80 // high bit tags OBP1 for the caller's palette pick
			}
		}
	}
	return out
}
