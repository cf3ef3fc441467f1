package protocol

import "testing"

func TestEncodeAddress(t *testing.T) {
	testCases := []struct {
		addr   uint16
		hi, lo byte
	}{
		{0x0014, 0x00, 0x14},
		{0x2030, 0x20, 0x30},
		{0x1000, 0x10, 0x00},
		{0x50C0, 0x50, 0xC0},
		{0xFFFF, 0xFF, 0xFF},
	}

	for _, tc := range testCases {
		hi, lo := EncodeAddress(tc.addr)
		if hi != tc.hi || lo != tc.lo {
			t.Errorf("EncodeAddress(0x%04X): expected %02X %02X, got %02X %02X",
				tc.addr, tc.hi, tc.lo, hi, lo)
		}
		if got := DecodeAddress(hi, lo); got != tc.addr {
			t.Errorf("DecodeAddress(%02X, %02X): expected 0x%04X, got 0x%04X", hi, lo, tc.addr, got)
		}
	}
}
