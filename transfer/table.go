package transfer

import "sync"

// Table8 maps every 8-bit code value i to float32(f.Decode(i/255)).
type Table8 [256]float32

var (
	tables8    [functionCount]Table8
	tables8Set [functionCount]sync.Once
)

// DecodeTable8 returns the decode table of f for 8-bit code values. Tables
// are built on first use and shared; callers must not modify them. Unknown
// functions return nil.
func (f Function) DecodeTable8() *Table8 {
	if !f.IsValid() {
		return nil
	}
	tables8Set[f].Do(func() {
		t := &tables8[f]
		for i := range t {
			t[i] = float32(f.Decode(float64(i) / 255))
		}
	})
	return &tables8[f]
}
