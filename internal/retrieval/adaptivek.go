package retrieval

const (
	DefaultK        = 5
	MaxK            = 10
	DefaultFraction = 0.2
)

// AdaptiveK sizes a similarity search against how much material is actually
// stored for the partition. Small corpora are retrieved near-whole, large ones
// are capped at maxK so prompts stay bounded.
//
// Zero availability returns zero: the caller can skip the search stage.
func AdaptiveK(totalAvailable, defaultK, maxK int, fraction float64) int {
	if totalAvailable <= 0 {
		return 0
	}
	candidate := int(float64(totalAvailable) * fraction)
	if defaultK > candidate {
		candidate = defaultK
	}
	if candidate > maxK {
		candidate = maxK
	}
	if candidate > totalAvailable {
		candidate = totalAvailable
	}
	return candidate
}
