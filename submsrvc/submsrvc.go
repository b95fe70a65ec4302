// Package submsrvc orchestrates the submission pipeline: admission,
// sandbox execution, grading, the attempt ledger and conditional reward
// issuance, in that order.
package submsrvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"goa.design/clue/log"

	"github.com/questlab/backend/attemptsrvc"
	"github.com/questlab/backend/audit"
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/fsquest"
	"github.com/questlab/backend/progsrvc"
	"github.com/questlab/backend/questsrvc"
	"github.com/questlab/backend/ratelimit"
	"github.com/questlab/backend/sandbox"
)

// DefaultMaxCodeChars bounds submission size before any sandbox work.
const DefaultMaxCodeChars = 30000

type SubmSrvc struct {
	questSrvc   *questsrvc.QuestSrvc
	registry    *sandbox.Registry
	attemptSrvc *attemptsrvc.AttemptSrvc
	progSrvc    *progsrvc.ProgSrvc
	limiter     *ratelimit.Limiter
	auditSink   audit.Sink

	maxCodeChars int
	now          func() time.Time
}

type SubmSrvcParams struct {
	QuestSrvc   *questsrvc.QuestSrvc
	Registry    *sandbox.Registry
	AttemptSrvc *attemptsrvc.AttemptSrvc
	ProgSrvc    *progsrvc.ProgSrvc
	Limiter     *ratelimit.Limiter
	AuditSink   audit.Sink

	// MaxCodeChars defaults to DefaultMaxCodeChars when zero.
	MaxCodeChars int
}

func NewSubmSrvc(p SubmSrvcParams) *SubmSrvc {
	maxChars := p.MaxCodeChars
	if maxChars <= 0 {
		maxChars = DefaultMaxCodeChars
	}
	sink := p.AuditSink
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &SubmSrvc{
		questSrvc:    p.QuestSrvc,
		registry:     p.Registry,
		attemptSrvc:  p.AttemptSrvc,
		progSrvc:     p.ProgSrvc,
		limiter:      p.Limiter,
		auditSink:    sink,
		maxCodeChars: maxChars,
		now:          time.Now,
	}
}

type SubmitParams struct {
	UserID     string
	QuestID    string
	Code       string
	RemoteAddr string
	RequestID  string
}

type SubmitResult struct {
	SubmissionID string
	Evaluation   evalsrvc.EvaluationResult

	AttemptsCount           int
	Passed                  bool
	HasNewPass              bool
	HintTierUnlocked        int
	UnlockedHints           []string
	NextHintUnlockAtAttempt *int
	XpEarned                int

	Reward *progsrvc.RewardSummary
	World  *progsrvc.WorldProgressRecord
}

// Submit runs one submission through the whole pipeline. Validation and
// admission run before the sandbox is ever touched; reward issuance runs
// only when the ledger reports a genuinely new pass.
func (s *SubmSrvc) Submit(ctx context.Context, p SubmitParams) (*SubmitResult, error) {
	if strings.TrimSpace(p.Code) == "" {
		return nil, ErrCodeEmpty()
	}
	if len(p.Code) > s.maxCodeChars {
		return nil, ErrCodeTooLarge(s.maxCodeChars)
	}
	if !questsrvc.QuestIDRegex.MatchString(p.QuestID) {
		return nil, questsrvc.ErrInvalidQuestID(p.QuestID)
	}

	if err := s.admit(ctx, p); err != nil {
		return nil, err
	}

	quest, err := s.questSrvc.Get(p.QuestID)
	if err != nil {
		return nil, err
	}

	executor, err := s.registry.Get(quest.Language)
	if err != nil {
		log.Errorf(ctx, err, "no sandbox backend for quest %s", quest.QuestID)
		return nil, sandbox.ErrTransportFault().SetDebug(err)
	}

	raw, err := executor.Execute(ctx, sandbox.ExecRequest{
		Code:      p.Code,
		Datasets:  quest.Datasets,
		TimeoutMs: quest.TimeoutMs,
		Probes:    probesFor(quest.Tests),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// client disconnect, not a sandbox failure
			log.Printf(ctx, "submission for quest %s canceled mid-run", quest.QuestID)
			return nil, err
		}
		log.Errorf(ctx, err, "sandbox execution failed for quest %s", quest.QuestID)
		return nil, err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// the orchestration deadline expired, nothing graded is returned
		return nil, ErrSandboxTimeout().SetDebug(ctx.Err())
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	evaluation := evalsrvc.Evaluate(raw, quest.Tests)

	outcome, err := s.attemptSrvc.RecordAttempt(ctx, attemptsrvc.RecordParams{
		UserID:             p.UserID,
		QuestID:            quest.QuestID,
		Code:               p.Code,
		Result:             evaluation,
		XpReward:           quest.XpReward,
		HintUnlockInterval: quest.HintUnlockAttempts,
		MaxHintTier:        quest.MaxHintTier(),
	})
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{
		SubmissionID:            uuid.New().String(),
		Evaluation:              evaluation,
		AttemptsCount:           outcome.Record.AttemptsCount,
		Passed:                  outcome.Record.Passed,
		HasNewPass:              outcome.HasNewPass,
		HintTierUnlocked:        outcome.Record.HintTierUnlocked,
		UnlockedHints:           unlockedHints(quest, outcome.Record.HintTierUnlocked),
		NextHintUnlockAtAttempt: outcome.NextHintUnlockAtAttempt,
		XpEarned:                outcome.Record.XpEarned,
	}

	if outcome.HasNewPass {
		s.applyReward(ctx, p.UserID, quest, res)
	}

	log.Printf(ctx, "submission %s graded: quest=%s user=%s attempts=%d passed=%t",
		res.SubmissionID, quest.QuestID, p.UserID, res.AttemptsCount, evaluation.AllPassed)
	return res, nil
}

func (s *SubmSrvc) admit(ctx context.Context, p SubmitParams) error {
	if s.limiter == nil {
		return nil
	}
	key := ratelimit.Key(p.UserID, p.RemoteAddr)
	decision := s.limiter.Check(key)
	if decision.Allowed {
		return nil
	}

	retryAfter := int(decision.RetryAfter(s.now()).Seconds()) + 1
	s.auditSink.Record(ctx, audit.Event{
		Timestamp: s.now(),
		Level:     audit.LevelWarn,
		Event:     "submission_rate_limited",
		RequestID: p.RequestID,
		ErrorCode: ErrCodeAdmissionDenied,
		Fields: map[string]any{
			"user_id":     p.UserID,
			"remote_addr": p.RemoteAddr,
			"quest_id":    p.QuestID,
			"reset_at":    decision.ResetAt,
		},
	})
	return ErrAdmissionDenied(retryAfter)
}

// applyReward credits xp, streak and the world recount. A progression
// failure after the ledger transition is logged rather than surfaced:
// the pass itself stands and the recount path repairs the rest on the
// next submission in the world.
func (s *SubmSrvc) applyReward(ctx context.Context, userID string, quest *fsquest.Quest, res *SubmitResult) {
	reward, err := s.progSrvc.ApplyQuestReward(ctx, userID, quest.XpReward)
	if err != nil {
		log.Errorf(ctx, err, "failed to apply quest reward: quest=%s user=%s", quest.QuestID, userID)
	} else {
		res.Reward = &reward
	}

	siblingIDs := s.questSrvc.WorldQuestIDs(quest.WorldID)
	completed, err := s.attemptSrvc.CountPassed(ctx, userID, siblingIDs)
	if err != nil {
		log.Errorf(ctx, err, "failed to recount world passes: world=%s user=%s", quest.WorldID, userID)
		return
	}

	worldRec := progsrvc.WorldProgressRecord{
		UserID:          userID,
		WorldID:         quest.WorldID,
		QuestsCompleted: completed,
		TotalQuests:     s.questSrvc.WorldTotalQuests(quest.WorldID),
		IsUnlocked:      true,
	}
	if err := s.progSrvc.RecountWorld(ctx, worldRec, quest.XpReward); err != nil {
		log.Errorf(ctx, err, "failed to record world progress: world=%s user=%s", quest.WorldID, userID)
		return
	}
	res.World = &worldRec
}

func unlockedHints(quest *fsquest.Quest, tier int) []string {
	if tier <= 0 {
		return nil
	}
	if tier > len(quest.Hints) {
		tier = len(quest.Hints)
	}
	return quest.Hints[:tier]
}
