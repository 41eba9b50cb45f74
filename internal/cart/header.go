package cart

import (
	"errors"
	"strings"
)

const headerEnd = 0x014F

// nintendoLogo is the 48-byte tile bitmap every real cartridge header
// repeats at 0x0104; we only use it to flag a homebrew/test ROM, never
// to refuse one.
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the decoded cartridge header at 0x0100-0x014F, trimmed to the
// fields this core actually acts on: what to call the cartridge, whether
// it needs bank switching we don't have, and whether its header checksum
// holds.
type Header struct {
	Title       string
	CartType    byte
	CartTypeStr string
	Banked      bool // true if CartType names an MBC this core can't drive

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int

	LogoValid     bool
	ChecksumValid bool
}

// ParseHeader decodes the header embedded in a ROM image and validates
// its header checksum at 0x014D; the global checksum at 0x014E-0x014F is
// not checked. It only errors when the image is too short to hold
// a header at all; a bad logo or checksum is reported on the Header so
// the caller can decide what to do with a damaged or homebrew image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, errors.New("cart: ROM too small to contain a header")
	}

	title := strings.TrimRight(string(rom[0x0134:0x0144]), "\x00")
	cartType := rom[0x0147]

	h := &Header{
		Title:         title,
		CartType:      cartType,
		CartTypeStr:   cartTypeString(cartType),
		Banked:        cartType != 0x00,
		LogoValid:     logoMatches(rom),
		ChecksumValid: headerChecksum(rom) == rom[0x014D],
	}
	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(rom[0x0148])
	h.RAMSizeBytes = decodeRAMSize(rom[0x0149])
	return h, nil
}

func logoMatches(rom []byte) bool {
	for i, b := range nintendoLogo {
		if rom[0x0104+i] != b {
			return false
		}
	}
	return true
}

// headerChecksum reproduces the one-byte running checksum real hardware
// computes over 0x0134-0x014C before deciding whether to hand control to
// the cartridge.
func headerChecksum(rom []byte) byte {
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func decodeROMSize(code byte) (size, banks int) {
	sizes := map[byte]int{
		0x00: 2, 0x01: 4, 0x02: 8, 0x03: 16, 0x04: 32,
		0x05: 64, 0x06: 128, 0x07: 256, 0x08: 512,
		0x52: 72, 0x53: 80, 0x54: 96,
	}
	banks, ok := sizes[code]
	if !ok {
		return 0, 0
	}
	return banks * 16 * 1024, banks
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (variants)"
	case 0x05, 0x06:
		return "MBC2 (variants)"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3 (variants)"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5 (variants)"
	default:
		return "Other/unknown"
	}
}
