package mrz

// Filler pads fixed-width fields and separates name components.
const Filler = '<'

var checkDigitWeights = [3]int{7, 3, 1}

// characterValue maps an MRZ character to its check digit value.
// Characters outside the MRZ alphabet count as 0; the cleaner never lets
// them through.
func characterValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 0
}

// ComputeCheckDigit computes the ICAO 9303 check digit of s: the sum of the
// character values weighted 7, 3, 1 (repeating), modulo 10.
func ComputeCheckDigit(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += characterValue(s[i]) * checkDigitWeights[i%len(checkDigitWeights)]
	}
	return sum % 10
}

// VerifyCheckDigit compares the computed check digit of s with the stored
// character. A filler in the check digit position is read as '0'.
func VerifyCheckDigit(s string, stored byte) bool {
	if stored == Filler {
		stored = '0'
	}
	return byte('0'+ComputeCheckDigit(s)) == stored
}
