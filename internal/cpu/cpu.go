// Package cpu implements the Sharp LR35902 instruction interpreter: fetch,
// decode, execute one instruction at a time, reporting the dot count it
// cost. Register layout and flag helpers follow the documented hardware;
// a shared 8-register get/set table backs both the unprefixed LD group
// and every CB-prefixed op. It runs against a region-based memory.MMU and
// an interrupt.Controller rather than owning memory directly.
package cpu

import (
	"fmt"

	"github.com/Yogesh9000/gbcore/internal/interrupt"
	"github.com/Yogesh9000/gbcore/internal/memory"
)

// CPU holds the full LR35902 register file and runs one instruction per
// Step call.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	halted  bool
	stopped bool
	haltBug bool // HALT executed with IME=0 and a pending source: PC fails to advance once

	mmu *memory.MMU
	ic  *interrupt.Controller
}

// New wires a CPU to the memory and interrupt subsystems it will drive.
// Registers start zeroed except SP, which starts at $FFFE; callers that
// skip the boot ROM should call
// ResetNoBoot for the documented post-boot register state.
func New(mmu *memory.MMU, ic *interrupt.Controller) *CPU {
	return &CPU{mmu: mmu, ic: ic, SP: 0xFFFE}
}

// ResetNoBoot sets the registers to the documented DMG post-boot state,
// for running a cartridge without a boot ROM image.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.halted = false
	c.stopped = false
	c.haltBug = false
}

// SetPC sets the program counter, used by tools and tests that want to
// start execution somewhere other than $0000.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Stopped reports whether a STOP instruction has parked the CPU. Only
// ResetNoBoot and LoadState clear it; no interrupt or joypad input wakes
// the CPU from STOP.
func (c *CPU) Stopped() bool { return c.stopped }

// State is the gob-encoded register-file snapshot SaveState/LoadState
// exchange.
type State struct {
	A, F    byte
	B, C    byte
	D, E    byte
	H, L    byte
	SP, PC  uint16
	Halted  bool
	Stopped bool
	HaltBug bool
}

// SaveState returns a gob-encodable snapshot of the register file and
// halt/stop bookkeeping.
func (c *CPU) SaveState() State {
	return State{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC, Halted: c.halted, Stopped: c.stopped, HaltBug: c.haltBug,
	}
}

// LoadState restores a snapshot written by SaveState.
func (c *CPU) LoadState(s State) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.SP, c.PC = s.SP, s.PC
	c.halted, c.stopped, c.haltBug = s.Halted, s.Stopped, s.HaltBug
}

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

func (c *CPU) setZNHC(z, n, h, cy bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if cy {
		f |= flagC
	}
	c.F = f
}

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z = res == 0
	h = ((a & 0x0F) + (b & 0x0F)) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	var ci byte
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z = res == 0
	h = ((a & 0x0F) + (b & 0x0F) + ci) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	z = res == 0
	n = true
	h = (a & 0x0F) < (b & 0x0F)
	cy = int16(a) < int16(b)
	return
}

func (c *CPU) sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	var ci byte
	if carryIn {
		ci = 1
	}
	r := int16(a) - int16(b) - int16(ci)
	res = byte(r)
	z = res == 0
	n = true
	h = (a & 0x0F) < ((b & 0x0F) + ci)
	cy = int16(a) < int16(b)+int16(ci)
	return
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	z = res == 0
	h = true
	return
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	z = res == 0
	return
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	z = res == 0
	return
}

func (c *CPU) cp8(a, b byte) (z, n, h, cy bool) {
	_, z, n, h, cy = c.sub8(a, b)
	return
}

func (c *CPU) read8(addr uint16) byte     { return c.mmu.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mmu.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// getReg8/setReg8 index the eight get/set targets shared by the unprefixed LD group
// and every CB-prefixed operation: B,C,D,E,H,L,(HL),A.
func (c *CPU) getReg8(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	default:
		c.A = v
	}
}

// serviceInterrupt pushes PC and jumps to the handler for the
// highest-priority pending, enabled source, returning the 20-dot
// service cost, or 0 if nothing is pending.
func (c *CPU) serviceInterrupt() int {
	src, ok := c.ic.NextSource()
	if !ok {
		return 0
	}
	c.ic.Acknowledge(src)
	c.ic.SetIME(false)
	c.push16(c.PC)
	c.PC = src.HandlerAddr()
	return 20
}

// Step executes one instruction (or services one interrupt, or idles for
// 4 dots while halted/stopped) and returns the dot count it cost.
func (c *CPU) Step() int {
	// Snapshot IME before promoting EI's delayed enable: the instruction
	// right after EI must still run as if IME were false, and only the
	// Step after that one may dispatch off the freshly-enabled IME. So
	// this Step's own dispatch check below uses imeBefore, while
	// PromotePending still fires on schedule (one Step after EI) for the
	// next Step to observe.
	imeBefore := c.ic.IME()
	c.ic.PromotePending()

	if c.stopped {
		return 4
	}

	if c.halted {
		if imeBefore {
			if cyc := c.serviceInterrupt(); cyc != 0 {
				c.halted = false
				return cyc
			}
		} else if c.ic.Pending() {
			c.halted = false
		} else {
			return 4
		}
	}

	if imeBefore {
		if cyc := c.serviceInterrupt(); cyc != 0 {
			return cyc
		}
	}

	op := c.fetch8()
	if c.haltBug {
		c.haltBug = false
		c.PC--
	}
	return c.execute(op)
}

func (c *CPU) execute(op byte) int {
	switch op {
	case 0x00: // NOP
		return 4

	case 0x10: // STOP
		c.fetch8() // STOP's mandatory (and ignored) operand byte
		c.stopped = true
		return 4

	case 0x76: // HALT
		if !c.ic.IME() && c.ic.Pending() {
			c.haltBug = true
		} else {
			c.halted = true
		}
		return 4

	// LD r,d8
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		d := (op >> 3) & 7
		c.setReg8(d, c.fetch8())
		return 8

	// LD (HL),d8
	case 0x36:
		c.write8(c.getHL(), c.fetch8())
		return 12

	// LD r,r' and LD (HL),r / LD r,(HL)
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7F:
		d := (op >> 3) & 7
		s := op & 7
		c.setReg8(d, c.getReg8(s))
		if d == 6 || s == 6 {
			return 8
		}
		return 4

	// 16-bit loads
	case 0x01:
		c.setBC(c.fetch16())
		return 12
	case 0x11:
		c.setDE(c.fetch16())
		return 12
	case 0x21:
		c.setHL(c.fetch16())
		return 12
	case 0x31:
		c.SP = c.fetch16()
		return 12
	case 0x08: // LD (a16),SP
		c.write16(c.fetch16(), c.SP)
		return 20

	// LD (BC),A / (DE),A and A,(BC)/(DE)
	case 0x02:
		c.write8(c.getBC(), c.A)
		return 8
	case 0x12:
		c.write8(c.getDE(), c.A)
		return 8
	case 0x0A:
		c.A = c.read8(c.getBC())
		return 8
	case 0x1A:
		c.A = c.read8(c.getDE())
		return 8

	// LD (HL+/-),A and A,(HL+/-)
	case 0x22:
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 8
	case 0x2A:
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 8
	case 0x32:
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 8
	case 0x3A:
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 8

	// LDH and LD via C
	case 0xE0:
		c.write8(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0:
		c.A = c.read8(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2:
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2:
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8
	case 0xEA:
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA:
		c.A = c.read8(c.fetch16())
		return 16

	// Rotate-A and flag ops
	case 0x07: // RLCA
		cy := (c.A >> 7) & 1
		c.A = (c.A << 1) | cy
		c.setZNHC(false, false, false, cy == 1)
		return 4
	case 0x0F: // RRCA
		cy := c.A & 1
		c.A = (c.A >> 1) | (cy << 7)
		c.setZNHC(false, false, false, cy == 1)
		return 4
	case 0x17: // RLA
		cy := (c.A >> 7) & 1
		var in byte
		if c.F&flagC != 0 {
			in = 1
		}
		c.A = (c.A << 1) | in
		c.setZNHC(false, false, false, cy == 1)
		return 4
	case 0x1F: // RRA
		cy := c.A & 1
		var in byte
		if c.F&flagC != 0 {
			in = 1
		}
		c.A = (c.A >> 1) | (in << 7)
		c.setZNHC(false, false, false, cy == 1)
		return 4
	case 0x27: // DAA
		c.daa()
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (flagZ | flagC)) | flagN | flagH
		return 4
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 4
	case 0x3F: // CCF
		cy := c.F&flagC == 0
		c.F = (c.F & flagZ)
		if cy {
			c.F |= flagC
		}
		return 4

	// INC/DEC r
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		d := (op >> 3) & 7
		old := c.getReg8(d)
		v := old + 1
		c.setReg8(d, v)
		c.setZNHC(v == 0, false, (old&0x0F) == 0x0F, c.F&flagC != 0)
		return 4
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		d := (op >> 3) & 7
		old := c.getReg8(d)
		v := old - 1
		c.setReg8(d, v)
		c.setZNHC(v == 0, true, (old&0x0F) == 0x00, c.F&flagC != 0)
		return 4
	case 0x34: // INC (HL)
		addr := c.getHL()
		old := c.read8(addr)
		v := old + 1
		c.write8(addr, v)
		c.setZNHC(v == 0, false, (old&0x0F) == 0x0F, c.F&flagC != 0)
		return 12
	case 0x35: // DEC (HL)
		addr := c.getHL()
		old := c.read8(addr)
		v := old - 1
		c.write8(addr, v)
		c.setZNHC(v == 0, true, (old&0x0F) == 0x00, c.F&flagC != 0)
		return 12

	// ALU A,r
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		r, z, n, h, cy := c.add8(c.A, c.getReg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		r, z, n, h, cy := c.adc8(c.A, c.getReg8(op&7), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		r, z, n, h, cy := c.sub8(c.A, c.getReg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		r, z, n, h, cy := c.sbc8(c.A, c.getReg8(op&7), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		r, z, n, h, cy := c.and8(c.A, c.getReg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		r, z, n, h, cy := c.xor8(c.A, c.getReg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		r, z, n, h, cy := c.or8(c.A, c.getReg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		z, n, h, cy := c.cp8(c.A, c.getReg8(op&7))
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)

	// ALU A,d8
	case 0xC6:
		r, z, n, h, cy := c.add8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xCE:
		r, z, n, h, cy := c.adc8(c.A, c.fetch8(), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xD6:
		r, z, n, h, cy := c.sub8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xDE:
		r, z, n, h, cy := c.sbc8(c.A, c.fetch8(), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xE6:
		r, z, n, h, cy := c.and8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xEE:
		r, z, n, h, cy := c.xor8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xF6:
		r, z, n, h, cy := c.or8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xFE:
		z, n, h, cy := c.cp8(c.A, c.fetch8())
		c.setZNHC(z, n, h, cy)
		return 8

	// Jumps
	case 0xC3:
		c.PC = c.fetch16()
		return 16
	case 0xE9:
		c.PC = c.getHL()
		return 4
	case 0x18:
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	case 0x20, 0x28, 0x30, 0x38:
		off := int8(c.fetch8())
		if c.condTrue(op) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12
		}
		return 8
	case 0xC2, 0xCA, 0xD2, 0xDA:
		addr := c.fetch16()
		if c.condTrue(op) {
			c.PC = addr
			return 16
		}
		return 12

	// CALL/RET
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.condTrue(op) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 0xC9:
		c.PC = c.pop16()
		return 16
	case 0xD9:
		c.PC = c.pop16()
		c.ic.SetIME(true)
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8:
		if c.condTrue(op) {
			c.PC = c.pop16()
			return 20
		}
		return 8

	// RST
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 16

	// 16-bit INC/DEC
	case 0x03:
		c.setBC(c.getBC() + 1)
		return 8
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 8
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 8
	case 0x33:
		c.SP++
		return 8
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 8
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 8
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 8
	case 0x3B:
		c.SP--
		return 8

	// ADD HL,rr
	case 0x09, 0x19, 0x29, 0x39:
		hl := c.getHL()
		var rr uint16
		switch op {
		case 0x09:
			rr = c.getBC()
		case 0x19:
			rr = c.getDE()
		case 0x29:
			rr = hl
		case 0x39:
			rr = c.SP
		}
		r := uint32(hl) + uint32(rr)
		h := ((hl & 0x0FFF) + (rr & 0x0FFF)) > 0x0FFF
		c.setHL(uint16(r))
		c.setZNHC(c.F&flagZ != 0, false, h, r > 0xFFFF)
		return 8

	// SP-relative ops
	case 0xF8: // LD HL,SP+s8
		off := int8(c.fetch8())
		_, _, _, h, cy := c.add8(byte(c.SP), byte(off))
		c.setHL(uint16(int32(c.SP) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 12
	case 0xF9:
		c.SP = c.getHL()
		return 8
	case 0xE8: // ADD SP,s8
		off := int8(c.fetch8())
		_, _, _, h, cy := c.add8(byte(c.SP), byte(off))
		c.SP = uint16(int32(c.SP) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 16

	// EI/DI
	case 0xF3:
		c.ic.SetIME(false)
		c.ic.CancelEnable()
		return 4
	case 0xFB:
		c.ic.RequestEnable()
		return 4

	// PUSH/POP
	case 0xF5:
		c.push16(c.getAF())
		return 16
	case 0xC5:
		c.push16(c.getBC())
		return 16
	case 0xD5:
		c.push16(c.getDE())
		return 16
	case 0xE5:
		c.push16(c.getHL())
		return 16
	case 0xF1:
		c.setAF(c.pop16())
		return 12
	case 0xC1:
		c.setBC(c.pop16())
		return 12
	case 0xD1:
		c.setDE(c.pop16())
		return 12
	case 0xE1:
		c.setHL(c.pop16())
		return 12

	case 0xCB:
		return c.executeCB(c.fetch8())

	default:
		panic(fmt.Sprintf("cpu: unimplemented opcode %#02x at %#04x", op, c.PC-1))
	}
}

// aluCycles distinguishes the (HL) operand (8 dots) from a plain register
// operand (4 dots) within an ALU-with-register group.
func aluCycles(op byte) int {
	if op&7 == 6 {
		return 8
	}
	return 4
}

// condTrue evaluates the cc field shared by JR/JP/CALL/RET conditional
// opcodes: bits 4-3 select NZ, Z, NC, C in that order.
func (c *CPU) condTrue(op byte) bool {
	switch (op >> 3) & 3 {
	case 0:
		return c.F&flagZ == 0
	case 1:
		return c.F&flagZ != 0
	case 2:
		return c.F&flagC == 0
	default:
		return c.F&flagC != 0
	}
}

// daa recomposes A into packed BCD after an 8-bit add or subtract. The
// correction depends on N (which operation ran) and both H and the
// pre-existing carry, never on inspecting A's nibbles alone when N is set.
func (c *CPU) daa() {
	a := c.A
	cy := c.F&flagC != 0
	h := c.F&flagH != 0
	n := c.F&flagN != 0

	var adjust byte
	if h || (!n && (a&0x0F) > 0x09) {
		adjust |= 0x06
	}
	if cy || (!n && a > 0x99) {
		adjust |= 0x60
		cy = true
	}
	if n {
		a -= adjust
	} else {
		a += adjust
	}
	c.A = a
	c.setZNHC(a == 0, n, false, cy)
}

func (c *CPU) executeCB(cb byte) int {
	reg := cb & 7
	group := (cb >> 6) & 3
	y := (cb >> 3) & 7

	cycles := 8
	if reg == 6 {
		cycles = 16
	}

	switch group {
	case 0: // rotate/shift/swap
		v := c.getReg8(reg)
		var cy byte
		switch y {
		case 0: // RLC
			cy = (v >> 7) & 1
			v = (v << 1) | cy
		case 1: // RRC
			cy = v & 1
			v = (v >> 1) | (cy << 7)
		case 2: // RL
			cy = (v >> 7) & 1
			var in byte
			if c.F&flagC != 0 {
				in = 1
			}
			v = (v << 1) | in
		case 3: // RR
			cy = v & 1
			var in byte
			if c.F&flagC != 0 {
				in = 1
			}
			v = (v >> 1) | (in << 7)
		case 4: // SLA
			cy = (v >> 7) & 1
			v <<= 1
		case 5: // SRA
			cy = v & 1
			v = (v >> 1) | (v & 0x80)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
		case 7: // SRL
			cy = v & 1
			v >>= 1
		}
		c.setReg8(reg, v)
		if y == 6 {
			c.setZNHC(v == 0, false, false, false)
		} else {
			c.setZNHC(v == 0, false, false, cy == 1)
		}
		return cycles
	case 1: // BIT y,r — reads (HL) but does not write it back, 12 dots
		v := c.getReg8(reg)
		bit := (v >> y) & 1
		c.F = (c.F & flagC) | flagH
		if bit == 0 {
			c.F |= flagZ
		}
		if reg == 6 {
			return 12
		}
		return 8
	case 2: // RES y,r
		v := c.getReg8(reg)
		c.setReg8(reg, v&^(1<<y))
		return cycles
	default: // SET y,r
		v := c.getReg8(reg)
		c.setReg8(reg, v|(1<<y))
		return cycles
	}
}
