package ppu

import "testing"

func TestComposeSpriteLinePriorityAndTransparency(t *testing.T) {
	mem := mockVRAM{}
	// Sprite tile with a single opaque leftmost pixel at bit7: lo=0x80, hi=0.
	base := uint16(0x8000)
	mem[base+0] = 0x80
	mem[base+1] = 0x00
	// Hardware X is offset by 8: X=18 puts the sprite's leftmost column at
	// screen x=10.
	sprites := []Sprite{{X: 18, Y: 21, Tile: 0, Attr: 0, OAMIndex: 0}}
	var bgci [160]byte
	out := ComposeSpriteLine(mem, sprites, 5, bgci, false)
	if out[10] == 0 {
		t.Fatalf("expected sprite pixel at x=10")
	}

	sprites[0].Attr = 1 << 7 // behind BG colors 1-3
	bgci[10] = 1
	out = ComposeSpriteLine(mem, sprites, 5, bgci, false)
	if out[10] != 0 {
		t.Fatalf("expected sprite pixel to be hidden behind BG")
	}
}

func TestComposeSpriteLineTieBreaker(t *testing.T) {
	mem := mockVRAM{}
	base := uint16(0x8000)
	mem[base+0] = 0xFF
	mem[base+1] = 0x00
	// The two sprites overlap at x=20..26, with s1 having the smaller X
	// (drawn on top). s0 uses OBP1 so the winner can be told apart.
	s0 := Sprite{X: 28, Y: 16, Tile: 0, Attr: attrPalette, OAMIndex: 5} // covers x=20..27
	s1 := Sprite{X: 27, Y: 16, Tile: 0, Attr: 0, OAMIndex: 3}           // covers x=19..26, smaller X wins at x=20..26
	var bgci [160]byte
	out := ComposeSpriteLine(mem, []Sprite{s1, s0}, 0, bgci, false)
	if out[20] == 0 {
		t.Fatalf("expected a sprite at x=20")
	}
	if out[20]&0x80 != 0 {
		t.Fatalf("expected s1 (smaller X) to win at x=20, got s0's OBP1 pixel")
	}
}
