package common

// Sign returns +1 for x >= 0 and -1 otherwise. Zero counts as non-negative.
func Sign(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return -1
}

// UniquePoints returns the number of non-negative frequency bins of an
// n-point real DFT, ceil((n+1)/2)
func UniquePoints(n int) int {
	if n <= 0 {
		return 0
	}
	return n/2 + 1
}
