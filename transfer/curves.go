package transfer

import "math"

// BT.709 constants. The decode knee is derived from the encode side so the
// two directions meet exactly.
const (
	bt709Beta   = 0.018
	bt709Slope  = 4.5
	bt709Alpha  = 1.099
	bt709Offset = 0.099
	bt709Gamma  = 0.45
)

var bt709Knee = bt709Encode(bt709Beta)

func bt709Encode(o float64) float64 {
	if o < bt709Beta {
		return bt709Slope * o
	}
	return bt709Alpha*math.Pow(o, bt709Gamma) - bt709Offset
}

func bt709Decode(e float64) float64 {
	if e < bt709Knee {
		return e / bt709Slope
	}
	return math.Pow((e+bt709Offset)/bt709Alpha, 1/bt709Gamma)
}

// BT.470 System M.
const bt470mGamma = 2.2

func bt470mEncode(o float64) float64 { return oddPow(o, 1/bt470mGamma) }
func bt470mDecode(e float64) float64 { return oddPow(e, bt470mGamma) }

// SMPTE 240M.
const (
	smpte240Beta   = 0.0228
	smpte240Knee   = 0.0913
	smpte240Slope  = 4.0
	smpte240Alpha  = 1.1115
	smpte240Offset = 0.1115
	smpte240Gamma  = 0.45
)

func smpte240Encode(o float64) float64 {
	if o < smpte240Beta {
		return smpte240Slope * o
	}
	return smpte240Alpha*math.Pow(o, smpte240Gamma) - smpte240Offset
}

func smpte240Decode(e float64) float64 {
	if e < smpte240Knee {
		return e / smpte240Slope
	}
	return math.Pow((e+smpte240Offset)/smpte240Alpha, 1/smpte240Gamma)
}

// sRGB. The linear segment is symmetric around zero and the power segment
// is mirrored for negative values.
const (
	srgbLinearKnee  = 0.0031308
	srgbEncodedKnee = 0.04045
	srgbSlope       = 12.92
	srgbAlpha       = 1.055
	srgbOffset      = 0.055
	srgbGamma       = 2.4
)

func srgbEncode(o float64) float64 {
	switch {
	case o < -srgbLinearKnee:
		return -srgbAlpha*math.Pow(-o, 1/srgbGamma) + srgbOffset
	case o <= srgbLinearKnee:
		return srgbSlope * o
	default:
		return srgbAlpha*math.Pow(o, 1/srgbGamma) - srgbOffset
	}
}

func srgbDecode(e float64) float64 {
	switch {
	case e < -srgbEncodedKnee:
		return -math.Pow((-e+srgbOffset)/srgbAlpha, srgbGamma)
	case e <= srgbEncodedKnee:
		return e / srgbSlope
	default:
		return math.Pow((e+srgbOffset)/srgbAlpha, srgbGamma)
	}
}

// SMPTE ST 2084 (PQ).
const (
	pqM1 = 2610.0 / 16384
	pqM2 = 2523.0 / 4096 * 128
	pqC1 = 3424.0 / 4096
	pqC2 = 2413.0 / 128
	pqC3 = 2392.0 / 128
)

// pqDecode maps a PQ signal to display light, 1.0 being 10000 cd/m².
// Signals at or above (c2/c3)^m2 have no finite preimage and map to +Inf.
func pqDecode(e float64) float64 {
	if e < 0 {
		return -pqDecode(-e)
	}
	p := math.Pow(e, 1/pqM2)
	den := pqC2 - pqC3*p
	if den <= 0 {
		return math.Inf(1)
	}
	return math.Pow(math.Max(p-pqC1, 0)/den, 1/pqM1)
}

func pqEncode(o float64) float64 {
	if o < 0 {
		return -pqEncode(-o)
	}
	p := math.Pow(o, pqM1)
	return math.Pow((pqC1+pqC2*p)/(1+pqC3*p), pqM2)
}

// BT.2100 PQ reference OOTF.
const (
	ootfScale = 59.5208
	ootfGamma = 2.4
	ootfPeak  = 100.0
)

// ootf maps scene-referred light to display-referred light.
func ootf(scene float64) float64 {
	return oddPow(bt709Encode(ootfScale*scene), ootfGamma) / ootfPeak
}

// inverseOOTF maps display-referred light back to scene-referred light.
func inverseOOTF(display float64) float64 {
	return bt709Decode(oddPow(ootfPeak*display, 1/ootfGamma)) / ootfScale
}

func bt2100PqEncode(scene float64) float64 { return pqEncode(ootf(scene)) }
func bt2100PqDecode(e float64) float64     { return inverseOOTF(pqDecode(e)) }

func identity(x float64) float64 { return x }

// oddPow is math.Pow extended to negative bases by odd symmetry.
func oddPow(x, p float64) float64 {
	if x < 0 {
		return -math.Pow(-x, p)
	}
	return math.Pow(x, p)
}
