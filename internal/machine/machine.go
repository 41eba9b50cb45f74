// Package machine wires the memory-mapped region set, CPU, PPU, interrupt
// controller, boot ROM, and OAM DMA controller into one driver, matching
// the CLI surface `program <boot-rom-path> <cartridge-rom-path>`: load a
// boot ROM and a cartridge image, then step whole frames for a display
// back-end to present.
package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/Yogesh9000/gbcore/internal/bootrom"
	"github.com/Yogesh9000/gbcore/internal/cart"
	"github.com/Yogesh9000/gbcore/internal/cpu"
	"github.com/Yogesh9000/gbcore/internal/interrupt"
	"github.com/Yogesh9000/gbcore/internal/memory"
	"github.com/Yogesh9000/gbcore/internal/ppu"
)

// dotsPerFrame is 154 scanlines of 456 dots each.
const dotsPerFrame = 154 * 456

const (
	wramOffset = 0xC000
	wramSize   = 0x2000
	hramOffset = 0xFF80
	hramSize   = 0x7F

	// Timer, serial, and joypad are non-goals: these registers exist so the
	// CPU can read/write them without hitting the unmapped-access warning
	// path, but they carry no device behavior.
	joypadOffset = 0xFF00
	joypadSize   = 1
	serialOffset = 0xFF01
	serialSize   = 2
	timerOffset  = 0xFF04
	timerSize    = 4
)

// Machine owns every region on the address bus and the components that
// tick against it.
type Machine struct {
	mmu *memory.MMU
	cpu *cpu.CPU
	ppu *ppu.PPU
	ic  *interrupt.Controller
	dma *memory.OAMDMAController
	boot *bootrom.BootROM // nil when running without a boot ROM

	cartData []byte
	header   *cart.Header

	wram   *memory.Block
	hram   *memory.Block
	joypad *memory.Block
	serial *memory.Block
	timer  *memory.Block
}

// New constructs a Machine over a cartridge image and an optional boot ROM
// image (nil or empty to skip it and start at the documented post-boot
// register state).
func New(cartData []byte, bootData []byte) (*Machine, error) {
	m := &Machine{mmu: memory.New(), cartData: cartData}

	if len(bootData) > 0 {
		b, err := bootrom.New(bootData)
		if err != nil {
			return nil, fmt.Errorf("machine: %w", err)
		}
		m.boot = b
		m.mmu.AddRegion(b)
		m.mmu.AddRegion(bootrom.NewLatch(b))
	}
	rom, header, err := cart.New(cartData)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}
	m.header = header
	m.mmu.AddRegion(rom)

	m.ic = interrupt.New()
	m.ppu = ppu.New(m.ic)
	m.dma = memory.NewOAMDMAController(m.ppu)

	m.wram = memory.NewBlock(wramOffset, wramSize)
	m.hram = memory.NewBlock(hramOffset, hramSize)
	m.joypad = memory.NewBlock(joypadOffset, joypadSize)
	m.serial = memory.NewBlock(serialOffset, serialSize)
	m.timer = memory.NewBlock(timerOffset, timerSize)

	m.mmu.AddRegion(m.ppu)
	m.mmu.AddRegion(m.ic)
	m.mmu.AddRegion(m.dma)
	m.mmu.AddRegion(m.wram)
	m.mmu.AddRegion(m.hram)
	m.mmu.AddRegion(m.joypad)
	m.mmu.AddRegion(m.serial)
	m.mmu.AddRegion(m.timer)

	m.cpu = cpu.New(m.mmu, m.ic)
	if m.boot == nil {
		m.cpu.ResetNoBoot()
		m.initPostBootIO()
	}
	return m, nil
}

// initPostBootIO writes the documented DMG post-boot IO register defaults
// directly through the MMU, matching what the real boot ROM leaves behind
// when a session skips running it.
func (m *Machine) initPostBootIO() {
	m.mmu.Write(0xFF00, 0xCF)
	m.mmu.Write(0xFF05, 0x00) // TIMA
	m.mmu.Write(0xFF06, 0x00) // TMA
	m.mmu.Write(0xFF07, 0x00) // TAC
	m.mmu.Write(0xFF40, 0x91) // LCDC on, BG on, $8000 tile data, sprites off
	m.mmu.Write(0xFF42, 0x00) // SCY
	m.mmu.Write(0xFF43, 0x00) // SCX
	m.mmu.Write(0xFF45, 0x00) // LYC
	m.mmu.Write(0xFF47, 0xFC) // BGP
	m.mmu.Write(0xFF48, 0xFF) // OBP0
	m.mmu.Write(0xFF49, 0xFF) // OBP1
	m.mmu.Write(0xFF4A, 0x00) // WY
	m.mmu.Write(0xFF4B, 0x00) // WX
	m.mmu.Write(0xFFFF, 0x00) // IE
}

// StepFrame runs the CPU and PPU together until the PPU completes a frame,
// stepping OAM DMA one byte per dot alongside them. It also returns once
// dotsPerFrame dots have elapsed even if no frame completed, so a session
// with the LCD off (where the PPU is frozen) still makes bounded per-call
// progress instead of spinning forever.
func (m *Machine) StepFrame() {
	startFrame := m.ppu.FrameCount()
	dots := 0
	for dots < dotsPerFrame && m.ppu.FrameCount() == startFrame {
		cycles := m.cpu.Step()
		m.ppu.Tick(cycles)
		for i := 0; i < cycles; i++ {
			m.dma.Step(m.mmu.Read)
		}
		dots += cycles
	}
}

// Frame returns the most recently completed 160x144 frame buffer.
func (m *Machine) Frame() [144][160]ppu.RGBA { return m.ppu.Frame() }

// Header returns the cartridge header New() parsed while constructing
// the ROM region.
func (m *Machine) Header() *cart.Header { return m.header }

// FramebufferRGBA flattens the current frame into a packed RGBA byte
// slice, the shape image.RGBA and headless tooling (PNG dump, checksum)
// want.
func (m *Machine) FramebufferRGBA() []byte {
	frame := m.ppu.Frame()
	out := make([]byte, 160*144*4)
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			c := frame[y][x]
			i := (y*160 + x) * 4
			out[i+0], out[i+1], out[i+2], out[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return out
}

// Run drains frames to a display back-end until quit reports true between
// frames, the shape spec's external-interfaces section describes: the
// driver polls a quit signal at loop boundaries, nothing mid-frame is
// interruptible.
func (m *Machine) Run(present func(frame [144][160]ppu.RGBA), quit func() bool) {
	for !quit() {
		m.StepFrame()
		present(m.Frame())
	}
}

// machineState is the gob-encoded top-level snapshot; PPU, CPU, interrupt
// controller, and OAM DMA state are appended as their own encoded blobs.
type machineState struct {
	WRAM       [wramSize]byte
	HRAM       [hramSize]byte
	Joypad     [joypadSize]byte
	Serial     [serialSize]byte
	Timer      [timerSize]byte
	BootActive bool
}

// SaveState returns a gob-encoded snapshot of the whole machine: RAM,
// stub IO, the CPU register file, PPU VRAM/OAM/registers, the interrupt
// controller, and in-flight OAM DMA. Cartridge ROM is not included — it is
// immutable and the caller already has the image on disk.
func (m *Machine) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	s := machineState{}
	copy(s.WRAM[:], m.wram.Data)
	copy(s.HRAM[:], m.hram.Data)
	copy(s.Joypad[:], m.joypad.Data)
	copy(s.Serial[:], m.serial.Data)
	copy(s.Timer[:], m.timer.Data)
	if m.boot != nil {
		s.BootActive = m.boot.SaveState()
	}
	_ = enc.Encode(s)
	_ = enc.Encode(m.cpu.SaveState())
	_ = enc.Encode(m.ic.SaveState())
	_ = enc.Encode(m.dma.SaveState())
	_ = enc.Encode(m.ppu.SaveState())
	return buf.Bytes()
}

// LoadState restores a snapshot written by SaveState. It returns an error
// if any part can't be decoded; parts decoded before the failing one have
// already been applied.
func (m *Machine) LoadState(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))

	var s machineState
	if err := dec.Decode(&s); err != nil {
		return fmt.Errorf("machine: decode state: %w", err)
	}
	copy(m.wram.Data, s.WRAM[:])
	copy(m.hram.Data, s.HRAM[:])
	copy(m.joypad.Data, s.Joypad[:])
	copy(m.serial.Data, s.Serial[:])
	copy(m.timer.Data, s.Timer[:])
	if m.boot != nil {
		m.boot.LoadState(s.BootActive)
	}

	var cpuState cpu.State
	if err := dec.Decode(&cpuState); err != nil {
		return fmt.Errorf("machine: decode cpu state: %w", err)
	}
	m.cpu.LoadState(cpuState)

	var icState interrupt.State
	if err := dec.Decode(&icState); err != nil {
		return fmt.Errorf("machine: decode interrupt state: %w", err)
	}
	m.ic.LoadState(icState)

	var dmaState memory.DMAState
	if err := dec.Decode(&dmaState); err != nil {
		return fmt.Errorf("machine: decode dma state: %w", err)
	}
	m.dma.LoadState(dmaState)

	var ppuBlob []byte
	if err := dec.Decode(&ppuBlob); err != nil {
		return fmt.Errorf("machine: decode ppu state: %w", err)
	}
	m.ppu.LoadState(ppuBlob)
	return nil
}
