package turing

// ChecksumSeed is the starting value of a Program's Checksum.
const ChecksumSeed int32 = 1009

// ContentHash hashes a fixture's symbols (in order) and head index.
//
// Only the declared content contributes, so editing whitespace or
// comments around a fixture doesn't change the hash.  Arithmetic
// wraps at 32 bits.
func ContentHash(cells []string, head int) int32 {
	var h int32
	for _, sym := range cells {
		for i := 0; i < len(sym); i++ {
			h = 31*h + int32(sym[i])
		}
		// Separator so that "ab" "c" and "a" "bc" differ.
		h = 31*h + ' '
	}
	return 31*h + int32(head)
}
