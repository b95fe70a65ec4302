package attemptsrvc

import (
	"context"
	"time"

	"github.com/questlab/backend/evalsrvc"
)

// AttemptRepo is the storage contract of the ledger. Every method is a
// single storage-layer operation; concurrent submissions for the same
// (user, quest) pair must not lose increments and must resolve the pass
// transition to exactly one winner.
type AttemptRepo interface {
	// BumpAttempt creates the record if absent and increments
	// attempts_count by exactly one, recording the latest code and
	// result. The returned record reflects the post-increment state;
	// its Passed field still carries the pre-submission pass state
	// because the bump never touches it.
	BumpAttempt(ctx context.Context, userID, questID, code string, result evalsrvc.EvaluationResult, now time.Time) (AttemptRecord, error)

	// MarkPassed transitions the record to passed/completed and writes
	// xp_earned, guarded so it succeeds at most once per record
	// lifetime. Returns true only for the call that won the transition.
	MarkPassed(ctx context.Context, userID, questID string, xpearned int, now time.Time) (bool, error)

	// RaiseHintTier lifts hint_tier to tier if and only if that is an
	// increase; lower or equal values are ignored.
	RaiseHintTier(ctx context.Context, userID, questID string, tier int) error

	// Get returns nil when no record exists.
	Get(ctx context.Context, userID, questID string) (*AttemptRecord, error)

	ListByUser(ctx context.Context, userID string) ([]AttemptRecord, error)

	// CountPassed counts the user's passed records among questIDs; world
	// completion is recomputed from this, never incremented ad hoc.
	CountPassed(ctx context.Context, userID string, questIDs []string) (int, error)
}
