package ppu

import "github.com/Yogesh9000/gbcore/internal/interrupt"

// Mode is the two-bit value STAT reports: the four phases of the
// per-scanline dot clock.
type Mode byte

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModePixel  Mode = 3
)

// Phase is one state of the PPU's per-scanline dot clock. Exactly one is
// active at a time; Tick runs it for a single dot and returns the phase
// to transition to next, or itself if it isn't done yet.
type Phase interface {
	Mode() Mode
	Enter(p *PPU)
	Tick(p *PPU) Phase
}

const dotsPerLine = 456

// oamSearchPhase lasts a fixed 80 dots: it selects up to 10 sprites that
// intersect the current line, in hardware priority order.
type oamSearchPhase struct{ dot int }

func (oamSearchPhase) Mode() Mode { return ModeOAM }

func (s *oamSearchPhase) Enter(p *PPU) {
	s.dot = 0
	tall := p.lcdc&0x04 != 0
	p.lineSprites = searchOAM(p.oam, p.ly, tall)
}

func (s *oamSearchPhase) Tick(p *PPU) Phase {
	s.dot++
	if s.dot >= 80 {
		return &pixelRenderingPhase{}
	}
	return s
}

// pixelRenderingPhase drives the background/window fetcher dot by dot
// until all 160 columns of the line are populated, then composites
// sprites on top. Its duration is whatever the fetcher actually took,
// not a fixed constant, mirroring real mode-3 variability.
type pixelRenderingPhase struct {
	fetcher     bgFetcher
	fifo        fifo
	x           int
	discard     int
	windowFired bool
}

func (*pixelRenderingPhase) Mode() Mode { return ModePixel }

func (ph *pixelRenderingPhase) Enter(p *PPU) {
	bgY := uint16(p.ly) + uint16(p.scy)
	fineY := byte(bgY & 7)
	mapRow := (bgY >> 3) & 31
	mapBase := p.bgMapBase()
	startTileCol := uint16(p.scx) >> 3

	ph.fetcher = bgFetcher{mem: p}
	ph.fetcher.Reset(mapBase, p.bgWindowTileData8000(), mapBase+mapRow*32, startTileCol, fineY)
	ph.fifo.Clear()
	ph.x = 0
	ph.discard = int(p.scx & 7)
	ph.windowFired = false
}

func (ph *pixelRenderingPhase) Tick(p *PPU) Phase {
	ph.fetcher.Tick(&ph.fifo)

	for ph.fifo.Len() > 0 && ph.discard > 0 {
		ph.fifo.Pop()
		ph.discard--
	}

	if ph.discard == 0 {
		for {
			px, ok := ph.fifo.Pop()
			if !ok {
				break
			}
			p.bgLine[ph.x] = px
			ph.x++

			if !ph.windowFired && p.windowEnabled() && p.ly >= p.wy && ph.x+7 >= int(p.wx) {
				ph.windowFired = true
				winCol := p.wx
				if winCol < 7 {
					winCol = 7
				}
				wxStart := int(winCol) - 7
				for i := wxStart; i < ph.x; i++ {
					p.bgLine[i] = 0
				}
				ph.x = wxStart
				mapBase := p.windowMapBase()
				mapRow := uint16(p.winLine>>3) & 31
				ph.fetcher.Reset(mapBase, p.bgWindowTileData8000(), mapBase+mapRow*32, 0, p.winLine&7)
				ph.fifo.Clear()
			}

			if ph.x >= 160 {
				break
			}
		}
	}

	if ph.x >= 160 {
		if ph.windowFired {
			p.winLine++
		}
		p.compositeLine()
		return &hblankPhase{}
	}
	return ph
}

// hblankPhase idles for whatever dots remain in the 456-dot line.
type hblankPhase struct{}

func (*hblankPhase) Mode() Mode { return ModeHBlank }

func (h *hblankPhase) Enter(p *PPU) {
	if p.stat&(1<<3) != 0 {
		p.ic.Raise(interrupt.STAT)
	}
}

func (h *hblankPhase) Tick(p *PPU) Phase {
	if p.dot >= dotsPerLine {
		p.advanceLine()
		if p.ly >= 144 {
			return &vblankPhase{}
		}
		return &oamSearchPhase{}
	}
	return h
}

// vblankPhase covers scanlines 144-153: ten idle lines while the CPU
// sees VBlank, after which the frame restarts at line 0.
type vblankPhase struct{}

func (*vblankPhase) Mode() Mode { return ModeVBlank }

func (v *vblankPhase) Enter(p *PPU) {
	p.ic.Raise(interrupt.VBlank)
	if p.stat&(1<<4) != 0 {
		p.ic.Raise(interrupt.STAT)
	}
}

func (v *vblankPhase) Tick(p *PPU) Phase {
	if p.dot >= dotsPerLine {
		p.advanceLine()
		if p.ly == 0 {
			p.winLine = 0
			return &oamSearchPhase{}
		}
	}
	return v
}
