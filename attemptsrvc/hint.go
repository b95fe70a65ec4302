package attemptsrvc

// NextHintTier returns the hint tier after a failed attempt. The tier
// rises by one each time the attempt count hits a multiple of the unlock
// interval, capped at maxTier, and never decreases. Callers invoke this
// only when the latest attempt failed; a passing submission leaves the
// tier alone.
func NextHintTier(attemptsCount, hintUnlockInterval, currentTier, maxTier int) int {
	if hintUnlockInterval <= 0 || attemptsCount <= 0 {
		return currentTier
	}
	if attemptsCount%hintUnlockInterval != 0 {
		return currentTier
	}
	next := currentTier + 1
	if next > maxTier {
		next = maxTier
	}
	if next < currentTier {
		return currentTier
	}
	return next
}

// NextHintUnlockAt tells clients at which attempt count the next hint
// unlocks: the smallest multiple of the interval strictly greater than
// attemptsCount, or nil once every hint is unlocked.
func NextHintUnlockAt(attemptsCount, hintUnlockInterval, currentTier, maxTier int) *int {
	if hintUnlockInterval <= 0 || currentTier >= maxTier {
		return nil
	}
	next := (attemptsCount/hintUnlockInterval + 1) * hintUnlockInterval
	return &next
}
