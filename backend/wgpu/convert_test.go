// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"bytes"
	"testing"
)

func TestAlignBytesPerRow(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{256, 256},
		{257, 512},
		{1, 256},
		{1560, 1792}, // 390px * 4 bytes
		{1024, 1024},
	}
	for _, tt := range tests {
		if got := alignBytesPerRow(tt.in); got != tt.want {
			t.Errorf("alignBytesPerRow(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStripRowPaddingNoPadding(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := stripRowPadding(src, 4, 4, 2)
	if &got[0] != &src[0] {
		t.Error("expected src returned unchanged when rows are tight")
	}
}

func TestStripRowPadding(t *testing.T) {
	// Two rows of 4 tight bytes inside 8-byte aligned rows.
	src := []byte{
		1, 2, 3, 4, 0xEE, 0xEE, 0xEE, 0xEE,
		5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := stripRowPadding(src, 4, 8, 2)
	if !bytes.Equal(got, want) {
		t.Errorf("stripRowPadding = %v, want %v", got, want)
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	dst := make([]byte, 8)
	convertBGRAToRGBA(src, dst, 2)
	want := []byte{30, 20, 10, 40, 70, 60, 50, 80}
	if !bytes.Equal(dst, want) {
		t.Errorf("convertBGRAToRGBA = %v, want %v", dst, want)
	}
}
