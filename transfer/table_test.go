package transfer

import (
	"sync"
	"testing"
)

func TestDecodeTable8(t *testing.T) {
	for _, f := range All() {
		t.Run(f.String(), func(t *testing.T) {
			lut := f.DecodeTable8()
			if lut == nil {
				t.Fatal("DecodeTable8() = nil")
			}
			for i := range lut {
				if want := float32(f.Decode(float64(i) / 255)); lut[i] != want {
					t.Fatalf("table[%d] = %v, want %v", i, lut[i], want)
				}
			}
			if f.DecodeTable8() != lut {
				t.Error("second call built a new table")
			}
		})
	}
	if Function(200).DecodeTable8() != nil {
		t.Error("unknown function returned a table")
	}
}

func TestDecodeTable8Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if lut := Srgb.DecodeTable8(); lut[255] != 1 {
				t.Errorf("srgb table[255] = %v, want 1", lut[255])
			}
		}()
	}
	wg.Wait()
}
