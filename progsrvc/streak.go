package progsrvc

import "time"

// dateLayout is how login dates are persisted; lexicographic order equals
// chronological order, which the conditional writes rely on.
const dateLayout = "2006-01-02"

// UpdateStreak computes the new daily streak for an engagement on day
// `now`, given the persisted previous login date (nil on first ever
// login). Calendar days are compared in UTC.
//
//	same day            -> unchanged, no bonus
//	exactly one day on  -> streak+1, bonus min(streak*10, 100)
//	anything else       -> streak resets to 1, no bonus
func UpdateStreak(lastLoginDate *string, currentStreak, longestStreak int, now time.Time) (newStreak, bonusXp, newLongest int) {
	today := now.UTC().Truncate(24 * time.Hour)

	newStreak = 1
	bonusXp = 0
	if lastLoginDate != nil {
		if prev, err := time.Parse(dateLayout, *lastLoginDate); err == nil {
			switch int(today.Sub(prev).Hours() / 24) {
			case 0:
				newStreak = currentStreak
			case 1:
				newStreak = currentStreak + 1
				bonusXp = newStreak * 10
				if bonusXp > 100 {
					bonusXp = 100
				}
			}
		}
	}

	newLongest = longestStreak
	if newStreak > newLongest {
		newLongest = newStreak
	}
	return newStreak, bonusXp, newLongest
}

// DateOf renders t as a persisted login date.
func DateOf(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
