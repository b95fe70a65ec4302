package progsrvc

import "math"

// Level is the only way a level value comes to exist: a pure recompute
// from xp. Stored levels are a read-efficiency cache of this function,
// never hand-incremented.
func Level(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// XpForLevel is the inverse: the xp threshold at which level begins.
func XpForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * 100
}
