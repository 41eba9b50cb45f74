package machine

import "testing"

// loopROM builds a minimal 32KB cartridge image that starts at $0100 with
// an infinite JR loop, so a Machine built from it runs forever without
// ever executing an unimplemented opcode.
func loopROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x18 // JR -2
	rom[0x0101] = 0xFE
	return rom
}

func TestMachine_StepFrameAdvancesFrameCount(t *testing.T) {
	m, err := New(loopROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := m.ppu.FrameCount(); got != 0 {
		t.Fatalf("expected frame count 0 before stepping, got %d", got)
	}
	m.StepFrame()
	if got := m.ppu.FrameCount(); got != 1 {
		t.Fatalf("expected one completed frame, got %d", got)
	}
}

func TestMachine_NoBootStartsAtCartridgeEntry(t *testing.T) {
	m, err := New(loopROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.cpu.PC != 0x0100 {
		t.Fatalf("expected PC=0x0100 without a boot rom, got %#04x", m.cpu.PC)
	}
}

func TestMachine_SaveAndLoadStateRoundTrips(t *testing.T) {
	m, err := New(loopROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.StepFrame()
	m.StepFrame()
	want := m.ppu.FrameCount()

	saved := m.SaveState()

	m2, err := New(loopROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m2.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got := m2.ppu.FrameCount(); got != want {
		t.Fatalf("frame count did not round-trip: got %d want %d", got, want)
	}
	if m2.cpu.PC != m.cpu.PC {
		t.Fatalf("PC did not round-trip: got %#04x want %#04x", m2.cpu.PC, m.cpu.PC)
	}
}

func TestMachine_BootROMStartsAtZero(t *testing.T) {
	boot := make([]byte, 256)
	m, err := New(loopROM(), boot)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.cpu.PC != 0x0000 {
		t.Fatalf("expected PC=0x0000 with a boot rom present, got %#04x", m.cpu.PC)
	}
}
