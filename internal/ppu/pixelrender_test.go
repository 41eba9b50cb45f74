package ppu

import "testing"

// colorShade looks up the RGB a 2-bit index resolves to under the
// identity BGP mapping (0xE4) these tests run with.
func colorShade(ci byte) RGBA { return shades[ci] }

func TestPixelRenderingSCXOffsetAndTileWrap(t *testing.T) {
	p, _ := newTestPPU()
	// 32-tile map row at 0x9800 with sequential tile numbers 0..31.
	mapBase := uint16(0x9800)
	for tile := 0; tile < 32; tile++ {
		p.Write(mapBase+uint16(tile), byte(tile))
		base := uint16(0x8000+tile*16)
		p.Write(base, byte(tile))
		p.Write(base+1, ^byte(tile))
	}
	p.Write(0xFF43, 5)    // SCX=5: discards the first 5 pixels of tile 0
	p.Write(0xFF47, 0xE4) // identity BGP
	p.Write(0xFF40, 0x91) // LCD on, BG on, $8000 tile data

	for p.Read(0xFF44) != 1 {
		p.Tick(1)
	}
	line := p.Frame()[0]

	lo0, hi0 := byte(0), ^byte(0)
	for i := 0; i < 3; i++ {
		b := 2 - byte(i)
		ci := ((hi0>>b)&1)<<1 | ((lo0 >> b) & 1)
		if want := colorShade(ci); line[i] != want {
			t.Fatalf("px %d: got %+v want %+v", i, line[i], want)
		}
	}
	lo1, hi1 := byte(1), ^byte(1)
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		ci := ((hi1>>b)&1)<<1 | ((lo1 >> b) & 1)
		if want := colorShade(ci); line[3+i] != want {
			t.Fatalf("tile1 px %d: got %+v want %+v", i, line[3+i], want)
		}
	}
}

func TestPixelRenderingSCYRowSelect(t *testing.T) {
	p, _ := newTestPPU()
	mapBase := uint16(0x9800)
	// scy=11, ly=0 -> bgY=11, map row 1 (tiles start at offset 32), fineY=3.
	fineY := uint16(3)
	p.Write(mapBase+32+0, 0)
	p.Write(mapBase+32+1, 1)
	base0 := uint16(0x8000) + 0*16 + fineY*2
	p.Write(base0, 0x12)
	p.Write(base0+1, 0x34)
	base1 := uint16(0x8000) + 1*16 + fineY*2
	p.Write(base1, 0x56)
	p.Write(base1+1, 0x78)

	p.Write(0xFF42, 11) // SCY
	p.Write(0xFF47, 0xE4)
	p.Write(0xFF40, 0x91)

	for p.Read(0xFF44) != 1 {
		p.Tick(1)
	}
	line := p.Frame()[0]

	lo0, hi0 := byte(0x12), byte(0x34)
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		ci := ((hi0>>b)&1)<<1 | ((lo0 >> b) & 1)
		if want := colorShade(ci); line[i] != want {
			t.Fatalf("tile0 px %d: got %+v want %+v", i, line[i], want)
		}
	}
	lo1, hi1 := byte(0x56), byte(0x78)
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		ci := ((hi1>>b)&1)<<1 | ((lo1 >> b) & 1)
		if want := colorShade(ci); line[8+i] != want {
			t.Fatalf("tile1 px %d: got %+v want %+v", i, line[8+i], want)
		}
	}
}

// TestPixelRenderingWindowHandsOffMidScanline gives the background and
// window distinct tile data and distinct map bases, so a scanline that
// crosses WX must show background shading up to the hand-off column and
// window shading from there on.
func TestPixelRenderingWindowHandsOffMidScanline(t *testing.T) {
	p, _ := newTestPPU()

	// Background: tile 0 everywhere at 0x9800, color index 1 throughout.
	p.Write(0x9800, 0)
	p.Write(0x8000, 0xFF)
	p.Write(0x8001, 0x00)

	// Window: tile 1 across the whole 0x9C00 map row, color index 2 throughout.
	for col := uint16(0); col < 32; col++ {
		p.Write(0x9C00+col, 1)
	}
	p.Write(0x8000+1*16, 0x00)
	p.Write(0x8000+1*16+1, 0xFF)

	p.Write(0xFF4A, 0)  // WY=0: window visible from line 0
	p.Write(0xFF4B, 27) // WX=27 -> hand-off at screen x=20
	p.Write(0xFF47, 0xE4)
	// LCD on, BG/window enable, window enable, window map 0x9C00, tile data 0x8000.
	p.Write(0xFF40, 0x80|0x01|0x20|0x40|0x10)

	for p.Read(0xFF44) != 1 {
		p.Tick(1)
	}
	line := p.Frame()[0]

	bg := colorShade(1)
	win := colorShade(2)
	for x := 0; x < 20; x++ {
		if line[x] != bg {
			t.Fatalf("background px %d: got %+v want %+v", x, line[x], bg)
		}
	}
	for x := 20; x < 160; x++ {
		if line[x] != win {
			t.Fatalf("window px %d: got %+v want %+v", x, line[x], win)
		}
	}
}
