package memory

// OAMWriter is the capability an OAM-owning region exposes so OAM DMA can
// land bytes directly without going through the MMU's normal read/write
// path. This core does not model CPU-vs-PPU OAM/VRAM access blocking, but
// a DMA transfer still needs a direct path to the 40-sprite table.
type OAMWriter interface {
	WriteOAMByte(index int, value byte)
}

// OAMDMAController owns $FF46 and steps a 160-byte copy from
// (value<<8)..+0x9F into OAM, one byte per dot. It is itself a Region so
// the MMU can route writes to the trigger register to it.
type OAMDMAController struct {
	oam OAMWriter

	reg    byte
	active bool
	src    uint16
	index  int
}

// NewOAMDMAController wires the controller to the OAM-owning region it
// writes into.
func NewOAMDMAController(oam OAMWriter) *OAMDMAController {
	return &OAMDMAController{oam: oam}
}

func (d *OAMDMAController) Contains(addr uint16) bool { return addr == 0xFF46 }

func (d *OAMDMAController) Read(addr uint16) byte { return d.reg }

func (d *OAMDMAController) Write(addr uint16, value byte) {
	d.reg = value
	d.active = true
	d.src = uint16(value) << 8
	d.index = 0
}

// Active reports whether a transfer is in progress; callers that model
// OAM-access blocking during DMA can use this (this core does not).
func (d *OAMDMAController) Active() bool { return d.active }

// Step advances the transfer by one byte, reading the source through src
// (normally the owning MMU). Called once per dot.
func (d *OAMDMAController) Step(src func(addr uint16) byte) {
	if !d.active {
		return
	}
	d.oam.WriteOAMByte(d.index, src(d.src+uint16(d.index)))
	d.index++
	if d.index >= 0xA0 {
		d.active = false
	}
}

// DMAState is the gob-encoded snapshot SaveState/LoadState exchange.
type DMAState struct {
	Reg    byte
	Active bool
	Src    uint16
	Index  int
}

// SaveState returns a snapshot of the trigger register and in-flight
// transfer position.
func (d *OAMDMAController) SaveState() DMAState {
	return DMAState{Reg: d.reg, Active: d.active, Src: d.src, Index: d.index}
}

// LoadState restores a snapshot written by SaveState.
func (d *OAMDMAController) LoadState(s DMAState) {
	d.reg, d.active, d.src, d.index = s.Reg, s.Active, s.Src, s.Index
}
