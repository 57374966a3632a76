package piston

// bytesToFit returns the number of bytes needed to hold nbits bits.
func bytesToFit(nbits int) int {
	return (nbits + 7) / 8
}
