package memory

import "testing"

func TestBlock_HalfOpenRange(t *testing.T) {
	b := NewBlock(0x8000, 0x10) // claims 0x8000..0x800F
	if !b.Contains(0x8000) {
		t.Fatalf("expected block to contain its offset")
	}
	if !b.Contains(0x800F) {
		t.Fatalf("expected block to contain its last byte")
	}
	if b.Contains(0x8010) {
		t.Fatalf("block must not contain one past its end (half-open range)")
	}
}

func TestBlock_ReadWriteRoundTrip(t *testing.T) {
	b := NewBlock(0xC000, 0x2000)
	b.Write(0xC123, 0x7F)
	if got := b.Read(0xC123); got != 0x7F {
		t.Fatalf("got %#02x want 0x7F", got)
	}
	if got := b.Read(0x0000); got != 0xFF {
		t.Fatalf("out-of-range read got %#02x want 0xFF", got)
	}
}

func TestBlock_Address(t *testing.T) {
	b := NewBlock(0xFF80, 0x10)
	p := b.Address(0xFF80)
	if p == nil {
		t.Fatalf("expected non-nil address")
	}
	*p = 0x55
	if got := b.Read(0xFF80); got != 0x55 {
		t.Fatalf("mutation through Address pointer did not persist, got %#02x", got)
	}
}
