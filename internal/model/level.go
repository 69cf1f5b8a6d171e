package model

// Level buckets an occupancy percentage into the three display tiers.
type Level string

const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
)

// Level thresholds. Every place a level is derived uses these two values.
const (
	ModerateThreshold = 35
	HighThreshold     = 75
)

// DeriveLevel maps a percentage to its occupancy level: Low below 35,
// Moderate below 75, High otherwise.
func DeriveLevel(percentage int) Level {
	switch {
	case percentage < ModerateThreshold:
		return LevelLow
	case percentage < HighThreshold:
		return LevelModerate
	default:
		return LevelHigh
	}
}
