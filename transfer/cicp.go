package transfer

// cicpCodes maps each function to its ITU-T H.273 TransferCharacteristics
// code point. Zero means the function has no code point of its own.
var cicpCodes = [functionCount]uint8{
	Bt709:        1,
	Bt470M:       4,
	Bt601:        6,
	Smpte240:     7,
	Linear:       8,
	Srgb:         13,
	Bt2020_10bit: 14,
	Bt2020_12bit: 15,
	Smpte2084:    16,
	Bt2100Pq:     16,
	Bt2100Hlg:    18,
	LinearScene:  0,
}

// CICP returns the H.273 TransferCharacteristics code point for f.
// The second result is false when f has no code point.
func (f Function) CICP() (uint8, bool) {
	if !f.IsValid() {
		return 0, false
	}
	code := cicpCodes[f]
	return code, code != 0
}

// FromCICP returns the transfer function for an H.273
// TransferCharacteristics code point. Code 16 resolves to Smpte2084; the
// OOTF variant Bt2100Pq cannot be signalled by the code point alone.
func FromCICP(code uint8) (Function, bool) {
	if code == 0 {
		return 0, false
	}
	for f := Function(0); f < functionCount; f++ {
		if cicpCodes[f] == code {
			return f, true
		}
	}
	return 0, false
}
