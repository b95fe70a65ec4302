package progsrvc

import "context"

// ProgressRepo persists user progression and world progress. All mutating
// operations are per-item atomic; conditional ops return ErrConflict when
// the guard fails.
type ProgressRepo interface {
	// GetState returns the user's progression state, or the zero state at
	// level 1 when the user has no row yet.
	GetState(ctx context.Context, userID string) (UserProgressionState, error)

	// AddXp atomically adds delta to the user's xp counter and returns the
	// resulting total.
	AddXp(ctx context.Context, userID string, delta int) (int, error)

	// SetLevel writes the level derived from seenXp. Returns ErrConflict
	// when xp moved since seenXp was read, so the caller recomputes.
	SetLevel(ctx context.Context, userID string, seenXp, level int) error

	// ApplyStreak writes the streak fields guarded on the previously read
	// last_login_date. Returns ErrConflict when another request of the
	// same user already advanced the date.
	ApplyStreak(ctx context.Context, userID string, prevDate *string, newStreak, newLongest int, newDate string) error

	// UpsertWorld sets the completion counters for one world and adds
	// xpDelta to the world's earned total.
	UpsertWorld(ctx context.Context, rec WorldProgressRecord, xpDelta int) error

	// GetWorlds returns all world progress rows for the user.
	GetWorlds(ctx context.Context, userID string) ([]WorldProgressRecord, error)
}
