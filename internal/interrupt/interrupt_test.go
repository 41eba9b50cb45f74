package interrupt

import "testing"

func TestController_RaiseAndService(t *testing.T) {
	c := New()
	c.Write(0xFFFF, 0x01) // IE: VBlank enabled
	c.Raise(VBlank)
	c.SetIME(true)

	src, ok := c.NextSource()
	if !ok || src != VBlank {
		t.Fatalf("NextSource got %v,%v want VBlank,true", src, ok)
	}
	if got := src.HandlerAddr(); got != 0x0040 {
		t.Fatalf("HandlerAddr got %#04x want 0x0040", got)
	}
	c.Acknowledge(src)
	c.SetIME(false)
	if _, ok := c.NextSource(); ok {
		t.Fatalf("expected no pending source after acknowledge")
	}
}

func TestController_PriorityOrder(t *testing.T) {
	c := New()
	c.Write(0xFFFF, 0x1F)
	c.Raise(Joypad)
	c.Raise(Timer)
	src, ok := c.NextSource()
	if !ok || src != Timer {
		t.Fatalf("expected Timer to win priority over Joypad, got %v", src)
	}
}

func TestController_DelayedEnable(t *testing.T) {
	c := New()
	c.RequestEnable()
	if c.IME() {
		t.Fatalf("IME must stay false until PromotePending is called")
	}
	if !c.PromotePending() {
		t.Fatalf("expected a pending promotion")
	}
	if !c.IME() {
		t.Fatalf("IME should be true after promotion")
	}
	if c.PromotePending() {
		t.Fatalf("promotion should only fire once per EI")
	}
}

func TestController_DICancelsPending(t *testing.T) {
	c := New()
	c.RequestEnable()
	c.CancelEnable()
	if c.PromotePending() {
		t.Fatalf("DI must cancel a pending EI")
	}
}

func TestController_IFReadMasksTopBits(t *testing.T) {
	c := New()
	c.Write(0xFF0F, 0xFF)
	if got := c.Read(0xFF0F); got != 0xFF {
		t.Fatalf("IF read got %#02x want 0xFF (top bits read as 1)", got)
	}
}
