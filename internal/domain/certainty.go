package domain

type Certainty string

const (
	CertaintyConvinced Certainty = "convinced"
	CertaintyConfident Certainty = "confident"
	CertaintyLeaning   Certainty = "leaning"
	CertaintyUncertain Certainty = "uncertain"
)

// ComputeCertainty bands the probability of the most likely latent value.
func ComputeCertainty(top float64) Certainty {
	switch {
	case top > 0.85:
		return CertaintyConvinced
	case top > 0.70:
		return CertaintyConfident
	case top > 0.50:
		return CertaintyLeaning
	default:
		return CertaintyUncertain
	}
}

func CertaintyReason(top float64) string {
	switch ComputeCertainty(top) {
	case CertaintyConvinced:
		return "top belief > 0.85"
	case CertaintyConfident:
		return "0.70 < top belief <= 0.85"
	case CertaintyLeaning:
		return "0.50 < top belief <= 0.70"
	default:
		return "top belief <= 0.50"
	}
}

func AllCertainties() []Certainty {
	return []Certainty{CertaintyConvinced, CertaintyConfident, CertaintyLeaning, CertaintyUncertain}
}
