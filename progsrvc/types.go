package progsrvc

// UserProgressionState is the per-user accumulator row. A user with no
// writes yet is represented by the zero state at level 1.
type UserProgressionState struct {
	UserID        string  `json:"user_id"`
	Xp            int     `json:"xp"`
	Level         int     `json:"level"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	LastLoginDate *string `json:"last_login_date,omitempty"`
}

// WorldProgressRecord tracks per-world completion for one user.
type WorldProgressRecord struct {
	UserID          string `json:"user_id"`
	WorldID         string `json:"world_id"`
	QuestsCompleted int    `json:"quests_completed"`
	TotalQuests     int    `json:"total_quests"`
	XpEarned        int    `json:"xp_earned"`
	IsUnlocked      bool   `json:"is_unlocked"`
}

// Completed reports whether every quest of the world has been passed.
func (w WorldProgressRecord) Completed() bool {
	return w.TotalQuests > 0 && w.QuestsCompleted >= w.TotalQuests
}
