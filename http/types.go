package http

import (
	"github.com/questlab/backend/attemptsrvc"
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/fsquest"
	"github.com/questlab/backend/progsrvc"
	"github.com/questlab/backend/submsrvc"
)

// questView is the public quest shape. The hidden solution has no field
// here at all, and hints above the caller's unlocked tier are withheld
// before mapping.
type questView struct {
	QuestID             string     `json:"quest_id"`
	WorldID             string     `json:"world_id"`
	Title               string     `json:"title"`
	Language            string     `json:"language"`
	DifficultyOneToFive int        `json:"difficulty"`
	XpReward            int        `json:"xp_reward"`
	HintUnlockAttempts  int        `json:"hint_unlock_attempts"`
	TotalHints          int        `json:"total_hints"`
	Starter             string     `json:"starter"`
	Tests               []testView `json:"tests"`

	UnlockedHints []string `json:"unlocked_hints,omitempty"`
}

// testView omits expected values so clients cannot grade locally.
type testView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type testResultView struct {
	TestID   string `json:"test_id"`
	Passed   bool   `json:"passed"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
	Message  string `json:"message"`
}

type evaluationView struct {
	AllPassed       bool             `json:"all_passed"`
	TestResults     []testResultView `json:"test_results"`
	Stdout          string           `json:"stdout"`
	Stderr          string           `json:"stderr"`
	TimedOut        bool             `json:"timed_out"`
	RuntimeError    *string          `json:"runtime_error,omitempty"`
	ElapsedMs       int64            `json:"elapsed_ms"`
	StdoutTruncated bool             `json:"stdout_truncated"`
	StderrTruncated bool             `json:"stderr_truncated"`
}

type submissionView struct {
	SubmissionID            string         `json:"submission_id"`
	Evaluation              evaluationView `json:"evaluation"`
	AttemptsCount           int            `json:"attempts_count"`
	Passed                  bool           `json:"passed"`
	HasNewPass              bool           `json:"has_new_pass"`
	HintTierUnlocked        int            `json:"hint_tier_unlocked"`
	UnlockedHints           []string       `json:"unlocked_hints,omitempty"`
	NextHintUnlockAtAttempt *int           `json:"next_hint_unlock_at_attempt,omitempty"`
	XpEarned                int            `json:"xp_earned"`

	Reward *progsrvc.RewardSummary       `json:"reward,omitempty"`
	World  *progsrvc.WorldProgressRecord `json:"world,omitempty"`
}

type attemptView struct {
	QuestID          string          `json:"quest_id"`
	AttemptsCount    int             `json:"attempts_count"`
	HintTierUnlocked int             `json:"hint_tier_unlocked"`
	LastCode         string          `json:"last_code"`
	LastResult       *evaluationView `json:"last_result,omitempty"`
	Passed           bool            `json:"passed"`
	XpEarned         int             `json:"xp_earned"`
	Status           string          `json:"status"`
}

type progressView struct {
	Xp            int                            `json:"xp"`
	Level         int                            `json:"level"`
	XpForNext     int                            `json:"xp_for_next_level"`
	CurrentStreak int                            `json:"current_streak"`
	LongestStreak int                            `json:"longest_streak"`
	LastLoginDate *string                        `json:"last_login_date,omitempty"`
	Worlds        []progsrvc.WorldProgressRecord `json:"worlds"`
}

func mapQuest(q *fsquest.Quest, unlockedTier int) questView {
	tests := make([]testView, len(q.Tests))
	for i, t := range q.Tests {
		tests[i] = testView{ID: t.ID, Kind: string(t.Kind), Description: t.Description}
	}
	view := questView{
		QuestID:             q.QuestID,
		WorldID:             q.WorldID,
		Title:               q.Title,
		Language:            q.Language,
		DifficultyOneToFive: q.DifficultyOneToFive,
		XpReward:            q.XpReward,
		HintUnlockAttempts:  q.HintUnlockAttempts,
		TotalHints:          len(q.Hints),
		Starter:             q.Starter,
		Tests:               tests,
	}
	if unlockedTier > 0 {
		if unlockedTier > len(q.Hints) {
			unlockedTier = len(q.Hints)
		}
		view.UnlockedHints = q.Hints[:unlockedTier]
	}
	return view
}

func mapEvaluation(res evalsrvc.EvaluationResult) evaluationView {
	results := make([]testResultView, len(res.TestResults))
	for i, tr := range res.TestResults {
		results[i] = testResultView{
			TestID:   tr.TestID,
			Passed:   tr.Passed,
			Actual:   tr.Actual,
			Expected: tr.Expected,
			Message:  tr.Message,
		}
	}
	return evaluationView{
		AllPassed:       res.AllPassed,
		TestResults:     results,
		Stdout:          res.Raw.Stdout,
		Stderr:          res.Raw.Stderr,
		TimedOut:        res.Raw.TimedOut,
		RuntimeError:    res.Raw.RuntimeError,
		ElapsedMs:       res.Raw.ElapsedMs,
		StdoutTruncated: res.Raw.StdoutTruncated,
		StderrTruncated: res.Raw.StderrTruncated,
	}
}

func mapSubmission(res *submsrvc.SubmitResult) submissionView {
	return submissionView{
		SubmissionID:            res.SubmissionID,
		Evaluation:              mapEvaluation(res.Evaluation),
		AttemptsCount:           res.AttemptsCount,
		Passed:                  res.Passed,
		HasNewPass:              res.HasNewPass,
		HintTierUnlocked:        res.HintTierUnlocked,
		UnlockedHints:           res.UnlockedHints,
		NextHintUnlockAtAttempt: res.NextHintUnlockAtAttempt,
		XpEarned:                res.XpEarned,
		Reward:                  res.Reward,
		World:                   res.World,
	}
}

func mapAttempt(rec *attemptsrvc.AttemptRecord) attemptView {
	view := attemptView{
		QuestID:          rec.QuestID,
		AttemptsCount:    rec.AttemptsCount,
		HintTierUnlocked: rec.HintTierUnlocked,
		LastCode:         rec.LastCode,
		Passed:           rec.Passed,
		XpEarned:         rec.XpEarned,
		Status:           string(rec.Status),
	}
	if rec.LastResult != nil {
		ev := mapEvaluation(*rec.LastResult)
		view.LastResult = &ev
	}
	return view
}
