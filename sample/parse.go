package sample

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrUnknownParts is returned by ParseParts for unrecognised names.
	ErrUnknownParts = errors.New("sample: unknown parts")

	// ErrUnknownBits is returned by ParseBits for unrecognised names.
	ErrUnknownBits = errors.New("sample: unknown bits")
)

var (
	partsByName = func() map[string]Parts {
		m := make(map[string]Parts, partsCount)
		for p := Parts(0); p < partsCount; p++ {
			m[fold(partsTable[p].name)] = p
		}
		m["ycbcr"] = Yuv
		m["gray"] = Luma
		return m
	}()

	bitsByName = func() map[string]Bits {
		m := make(map[string]Bits, bitsCount)
		for b := Bits(0); b < bitsCount; b++ {
			m[fold(bitsTable[b].name)] = b
		}
		m["half4"] = Float16x4
		m["float4"] = Float32x4
		return m
	}()
)

func fold(s string) string {
	return strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(s)), "_", "")
}

// ParseParts looks up a layout by name, ignoring case.
func ParseParts(name string) (Parts, error) {
	if p, ok := partsByName[fold(name)]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParts, name)
}

// ParseBits looks up a packing by name, ignoring case.
func ParseBits(name string) (Bits, error) {
	if b, ok := bitsByName[fold(name)]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBits, name)
}
