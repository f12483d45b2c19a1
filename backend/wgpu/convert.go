// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

// copyPitchAlignment is the row alignment required for texture-to-buffer
// copies. WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
const copyPitchAlignment = 256

// alignBytesPerRow rounds a tight row size up to the copy pitch alignment.
func alignBytesPerRow(bytesPerRow int) int {
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// stripRowPadding copies tight rows out of an aligned readback buffer.
// When the aligned and tight row sizes match it returns src unchanged.
func stripRowPadding(src []byte, bytesPerRow, alignedBytesPerRow, height int) []byte {
	if alignedBytesPerRow == bytesPerRow {
		return src
	}
	tight := make([]byte, bytesPerRow*height)
	for row := 0; row < height; row++ {
		srcOff := row * alignedBytesPerRow
		dstOff := row * bytesPerRow
		copy(tight[dstOff:dstOff+bytesPerRow], src[srcOff:srcOff+bytesPerRow])
	}
	return tight
}

// convertBGRAToRGBA swaps the red and blue channels of count pixels from
// src into dst. The render target is BGRA8 while image encoding expects
// RGBA order.
func convertBGRAToRGBA(src, dst []byte, count int) {
	for i := 0; i < count; i++ {
		o := i * 4
		dst[o] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o]
		dst[o+3] = src[o+3]
	}
}
