// Package ppu implements the pixel pipeline: a phase engine (OAM search,
// pixel rendering, HBlank, VBlank) driving a background/window fetcher
// and pixel FIFO, composited with sprites into a 160x144 RGBA frame.
// The register layout, VRAM/OAM storage, and STAT/LYC bookkeeping follow
// the hardware's own OAM-search/pixel-rendering/HBlank/VBlank phase split,
// expressed here as Go's Phase interface.
package ppu

import (
	"bytes"
	"encoding/gob"

	"github.com/Yogesh9000/gbcore/internal/interrupt"
)

const (
	addrLCDC uint16 = 0xFF40
	addrSTAT uint16 = 0xFF41
	addrSCY  uint16 = 0xFF42
	addrSCX  uint16 = 0xFF43
	addrLY   uint16 = 0xFF44
	addrLYC  uint16 = 0xFF45
	addrBGP  uint16 = 0xFF47
	addrOBP0 uint16 = 0xFF48
	addrOBP1 uint16 = 0xFF49
	addrWY   uint16 = 0xFF4A
	addrWX   uint16 = 0xFF4B
)

// PPU owns VRAM, OAM, the LCDC/STAT/scroll/palette registers, and the
// phase engine that turns them into a frame. It is a memory.Region over
// $8000-$9FFF, $FE00-$FE9F, and $FF40-$FF4B.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wy, wx byte

	dot   int
	phase Phase

	winLine     byte
	lineSprites []Sprite
	bgLine      [160]byte // raw BG/window color indices for the line being built

	frame [144][160]RGBA

	frameCount int

	ic *interrupt.Controller
}

// New returns a PPU with the LCD off and mode 0, wired to raise VBlank
// and STAT interrupts through ic.
func New(ic *interrupt.Controller) *PPU {
	p := &PPU{ic: ic, bgp: 0xE4, obp0: 0xE4, obp1: 0xE4}
	p.phase = &oamSearchPhase{}
	return p
}

// WriteOAMByte lands a single byte during OAM DMA, bypassing the normal
// CPU-facing Write so a transfer isn't blocked by PPU mode. This core
// does not model OAM/VRAM access conflicts between the CPU and PPU.
func (p *PPU) WriteOAMByte(index int, value byte) {
	if index >= 0 && index < len(p.oam) {
		p.oam[index] = value
	}
}

// Frame returns the most recently completed 160x144 frame buffer.
func (p *PPU) Frame() [144][160]RGBA { return p.frame }

func (p *PPU) Contains(addr uint16) bool {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return true
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return true
	case addr == addrLCDC, addr == addrSTAT, addr == addrSCY, addr == addrSCX,
		addr == addrLY, addr == addrLYC, addr == addrBGP, addr == addrOBP0,
		addr == addrOBP1, addr == addrWY, addr == addrWX:
		return true
	}
	return false
}

func (p *PPU) Read(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return p.oam[addr-0xFE00]
	case addr == addrLCDC:
		return p.lcdc
	case addr == addrSTAT:
		return 0x80 | p.stat
	case addr == addrSCY:
		return p.scy
	case addr == addrSCX:
		return p.scx
	case addr == addrLY:
		return p.ly
	case addr == addrLYC:
		return p.lyc
	case addr == addrBGP:
		return p.bgp
	case addr == addrOBP0:
		return p.obp0
	case addr == addrOBP1:
		return p.obp1
	case addr == addrWY:
		return p.wy
	case addr == addrWX:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) Write(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		p.oam[addr-0xFE00] = value
	case addr == addrLCDC:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly, p.dot = 0, 0
			p.stat &^= 0x03
			p.phase = &oamSearchPhase{}
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly, p.dot = 0, 0
			p.winLine = 0
			p.stat = (p.stat &^ 0x03) | byte(ModeOAM)
			p.phase = &oamSearchPhase{}
			p.phase.Enter(p)
		}
	case addr == addrSTAT:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == addrSCY:
		p.scy = value
	case addr == addrSCX:
		p.scx = value
	case addr == addrLY:
		// LY is read-only on real hardware; writes are ignored.
	case addr == addrLYC:
		p.lyc = value
		p.updateCoincidence()
	case addr == addrBGP:
		p.bgp = value
	case addr == addrOBP0:
		p.obp0 = value
	case addr == addrOBP1:
		p.obp1 = value
	case addr == addrWY:
		p.wy = value
	case addr == addrWX:
		p.wx = value
	}
}

// Tick advances the PPU by cycles dots. While the LCD is off the phase
// engine is frozen; this core does not emulate LCD-off display artifacts.
func (p *PPU) Tick(cycles int) {
	if p.lcdc&0x80 == 0 {
		return
	}
	for i := 0; i < cycles; i++ {
		p.dot++
		p.setMode(p.phase.Mode())
		next := p.phase.Tick(p)
		if next != p.phase {
			p.phase = next
			p.phase.Enter(p)
			p.setMode(p.phase.Mode())
		}
	}
}

func (p *PPU) setMode(m Mode) {
	if Mode(p.stat&0x03) == m {
		return
	}
	p.stat = (p.stat &^ 0x03) | byte(m)
	if m == ModeOAM && p.stat&(1<<5) != 0 {
		p.ic.Raise(interrupt.STAT)
	}
}

// advanceLine rolls LY over at the end of a 456-dot line and checks LYC
// coincidence; wraps LY back to 0 after line 153.
func (p *PPU) advanceLine() {
	p.dot = 0
	p.ly++
	if p.ly > 153 {
		p.ly = 0
		p.frameCount++
	}
	p.updateCoincidence()
}

// FrameCount returns the number of complete frames (154 lines each) the
// PPU has produced since construction. A driver loop can poll this to
// know when to flip the display.
func (p *PPU) FrameCount() int { return p.frameCount }

func (p *PPU) updateCoincidence() {
	if p.ly == p.lyc {
		if p.stat&(1<<2) == 0 && p.stat&(1<<6) != 0 {
			p.ic.Raise(interrupt.STAT)
		}
		p.stat |= 1 << 2
	} else {
		p.stat &^= 1 << 2
	}
}

func (p *PPU) bgWindowTileData8000() bool { return p.lcdc&0x10 != 0 }
func (p *PPU) bgMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return 0x9C00
	}
	return 0x9800
}
func (p *PPU) windowMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return 0x9C00
	}
	return 0x9800
}
func (p *PPU) windowEnabled() bool { return p.lcdc&0x20 != 0 && p.lcdc&0x01 != 0 }
func (p *PPU) bgEnabled() bool     { return p.lcdc&0x01 != 0 }
func (p *PPU) objEnabled() bool    { return p.lcdc&0x02 != 0 }

// compositeLine blends the completed bgLine with any sprites selected
// for this scanline and writes the result into the frame buffer.
func (p *PPU) compositeLine() {
	bg := p.bgLine
	if !p.bgEnabled() {
		bg = [160]byte{}
	}

	var objLine [160]byte
	if p.objEnabled() && len(p.lineSprites) > 0 {
		objLine = ComposeSpriteLine(p, p.lineSprites, p.ly, bg, p.lcdc&0x04 != 0)
	}

	for x := 0; x < 160; x++ {
		ci := objLine[x] &^ 0x80
		if ci != 0 {
			palette := p.obp0
			if objLine[x]&0x80 != 0 {
				palette = p.obp1
			}
			p.frame[p.ly][x] = applyPalette(palette, ci)
			continue
		}
		p.frame[p.ly][x] = applyPalette(p.bgp, bg[x])
	}
}

// LCDC, STAT, SCY, SCX, LY, BGP, WY and WX expose the control, scroll and
// palette registers for renderer tooling and tests that want to inspect
// PPU state directly.
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) STAT() byte { return p.stat }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) LY() byte   { return p.ly }
func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }

// state is the gob-encoded snapshot SaveState/LoadState exchange. Mid-phase
// fetcher/FIFO progress isn't captured: a restored PPU resumes at the start
// of whatever phase Mode identifies, which only ever costs a few dots of
// resync on the current scanline.
type state struct {
	VRAM       [0x2000]byte
	OAM        [0xA0]byte
	LCDC, STAT byte
	SCY, SCX   byte
	LY, LYC    byte
	BGP        byte
	OBP0, OBP1 byte
	WY, WX     byte
	Dot        int
	WinLine    byte
	FrameCount int
	Mode       Mode
}

// SaveState returns a gob-encoded snapshot of VRAM, OAM, registers, and dot
// position.
func (p *PPU) SaveState() []byte {
	s := state{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx,
		LY: p.ly, LYC: p.lyc, BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WY: p.wy, WX: p.wx, Dot: p.dot, WinLine: p.winLine,
		FrameCount: p.frameCount, Mode: p.phase.Mode(),
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores a snapshot written by SaveState. The active phase is
// reset to the start of the mode it was in rather than its exact mid-phase
// progress.
func (p *PPU) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat, p.scy, p.scx = s.LCDC, s.STAT, s.SCY, s.SCX
	p.ly, p.lyc, p.bgp, p.obp0, p.obp1 = s.LY, s.LYC, s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx, p.dot, p.winLine = s.WY, s.WX, s.Dot, s.WinLine
	p.frameCount = s.FrameCount
	switch s.Mode {
	case ModeOAM:
		p.phase = &oamSearchPhase{}
	case ModePixel:
		p.phase = &pixelRenderingPhase{}
	case ModeHBlank:
		p.phase = &hblankPhase{}
	case ModeVBlank:
		p.phase = &vblankPhase{}
	}
	p.phase.Enter(p)
}
