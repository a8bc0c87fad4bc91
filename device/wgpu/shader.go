// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/naga"

	"github.com/gogpu/texel/internal/program"
)

var (
	spirvOnce sync.Once
	spirvCode []uint32
	spirvErr  error
)

// programSPIRV returns the texel program compiled to SPIR-V. The WGSL
// source is compiled once per process.
func programSPIRV() ([]uint32, error) {
	spirvOnce.Do(func() {
		spirvCode, spirvErr = compileSPIRV(program.WGSL)
	})
	return spirvCode, spirvErr
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile texel program: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile texel program: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
