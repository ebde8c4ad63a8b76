package engine

import "math"

// CalculateEntropy calculates the Shannon entropy of data.
// Returns a value between 0 (uniform) and 8 (maximum randomness for bytes).
func CalculateEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	// Count byte frequencies
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	// Calculate entropy
	length := float64(len(data))
	var entropy float64

	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}
