// Package cart implements the cartridge ROM region ($0000-$7FFF). Banked
// memory-bank-controller cartridges are out of scope; this is a plain
// ROM-only region, a memory.Region like any other device.
package cart

import "fmt"

// ROM is the cartridge ROM region. It claims $0000-$7FFF; addresses past
// the end of the image read as 0xFF, the same as an MMU miss would.
// Writes are ignored — a real MBC would decode them as bank-select
// writes, which is out of scope here.
type ROM struct {
	data []byte
}

// New parses the cartridge header and wraps the image as a ROM region.
// It refuses any cartridge whose header names a memory bank controller:
// this core has no bank-select region to honor the writes such a
// cartridge depends on, so running one unchanged would silently expose
// only its first 32KB instead of failing loudly.
func New(data []byte) (*ROM, *Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, nil, fmt.Errorf("cart: %w", err)
	}
	if h.Banked {
		return nil, nil, fmt.Errorf("cart: %q needs %s bank switching, which this core does not implement", h.Title, h.CartTypeStr)
	}
	return &ROM{data: data}, h, nil
}

func (c *ROM) Contains(addr uint16) bool { return addr < 0x8000 }

func (c *ROM) Read(addr uint16) byte {
	if int(addr) < len(c.data) {
		return c.data[addr]
	}
	return 0xFF
}

func (c *ROM) Write(addr uint16, value byte) {
	// ROM-only cartridges ignore all writes to the ROM area.
}
