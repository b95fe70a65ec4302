// Package attemptsrvc is the per-(user, quest) ledger of submissions.
// Records are created on first submission and upserted idempotently after
// that; they are never deleted. Pass state, earned XP and hint tier only
// ever move forward, enforced by conditional storage operations rather
// than read-modify-write sequences.
package attemptsrvc

import (
	"time"

	"github.com/questlab/backend/evalsrvc"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type AttemptRecord struct {
	UserID  string `json:"user_id"`
	QuestID string `json:"quest_id"`

	AttemptsCount    int    `json:"attempts_count"`
	HintTierUnlocked int    `json:"hint_tier_unlocked"`
	LastCode         string `json:"last_code"`
	// LastResult keeps the most recent evaluation, including a regression
	// after a pass; Passed and Status never move backwards.
	LastResult *evalsrvc.EvaluationResult `json:"last_result,omitempty"`
	Passed     bool                       `json:"passed"`
	XpEarned   int                        `json:"xp_earned"`
	Status     Status                     `json:"status"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}
