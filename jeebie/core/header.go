package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/valerio/jeebie-runner/jeebie/bit"
)

const (
	titleAddress          = 0x134
	titleLength           = 11
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionAddress        = 0x14C
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E
	headerEnd             = 0x150
)

// ErrShortROM is returned by ParseHeader when the image ends before the
// cartridge header does.
var ErrShortROM = errors.New("ROM image shorter than cartridge header")

// Header is the cartridge metadata at $0134-$014F.
type Header struct {
	Title          string
	CartridgeType  uint8
	ROMSize        uint8
	RAMSize        uint8
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16

	computed uint8
}

// ParseHeader reads the cartridge header of rom.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < headerEnd {
		return Header{}, ErrShortROM
	}

	h := Header{
		Title:          cleanTitle(rom[titleAddress : titleAddress+titleLength]),
		CartridgeType:  rom[cartridgeTypeAddress],
		ROMSize:        rom[romSizeAddress],
		RAMSize:        rom[ramSizeAddress],
		Version:        rom[versionAddress],
		HeaderChecksum: rom[headerChecksumAddress],
		GlobalChecksum: bit.Combine(rom[globalChecksumAddress], rom[globalChecksumAddress+1]),
	}

	for _, b := range rom[titleAddress:headerChecksumAddress] {
		h.computed = h.computed - b - 1
	}
	return h, nil
}

// Valid reports whether the header checksum matches, which the boot ROM
// requires before it hands over to the cartridge.
func (h Header) Valid() bool {
	return h.computed == h.HeaderChecksum
}

// cleanTitle turns NULs into spaces and unprintable bytes into '?'.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
