package protocol

// EncodeAddress splits a VP address into the two bytes sent on the wire.
// The panel expects the high byte first.
func EncodeAddress(addr uint16) (hi, lo byte) {
	return byte(addr >> 8), byte(addr)
}

// DecodeAddress rebuilds a VP address from its wire bytes.
func DecodeAddress(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
