package attemptsrvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/questlab/backend/evalsrvc"
)

type AttemptSrvc struct {
	logger  *slog.Logger
	repo    AttemptRepo
	archive *ResultArchive // optional
	now     func() time.Time
}

func NewAttemptSrvc(logger *slog.Logger, repo AttemptRepo, archive *ResultArchive) *AttemptSrvc {
	return &AttemptSrvc{
		logger:  logger.With("module", "attempt"),
		repo:    repo,
		archive: archive,
		now:     time.Now,
	}
}

type RecordParams struct {
	UserID  string
	QuestID string
	Code    string
	Result  evalsrvc.EvaluationResult

	XpReward           int
	HintUnlockInterval int
	MaxHintTier        int
}

type RecordOutcome struct {
	Record AttemptRecord
	// HasNewPass is the single signal gating reward issuance: true only
	// for the submission that transitioned the record to passed.
	HasNewPass              bool
	NextHintUnlockAtAttempt *int
}

// RecordAttempt upserts the ledger entry for one submission. The attempt
// counter increment, the pass transition and the hint tier raise are each
// a single atomic storage operation, so any interleaving of concurrent
// submissions converges to the same final state.
func (s *AttemptSrvc) RecordAttempt(ctx context.Context, p RecordParams) (*RecordOutcome, error) {
	now := s.now()

	rec, err := s.repo.BumpAttempt(ctx, p.UserID, p.QuestID, p.Code, p.Result, now)
	if err != nil {
		return nil, ErrLedgerUnavailable().SetDebug(err)
	}

	hasNewPass := false
	if p.Result.AllPassed && !rec.Passed {
		hasNewPass, err = s.repo.MarkPassed(ctx, p.UserID, p.QuestID, p.XpReward, now)
		if err != nil {
			return nil, ErrLedgerUnavailable().SetDebug(err)
		}
	}
	if hasNewPass {
		rec.Passed = true
		rec.Status = StatusCompleted
		rec.XpEarned = p.XpReward
	}

	if !p.Result.AllPassed {
		next := NextHintTier(rec.AttemptsCount, p.HintUnlockInterval, rec.HintTierUnlocked, p.MaxHintTier)
		if next > rec.HintTierUnlocked {
			if err := s.repo.RaiseHintTier(ctx, p.UserID, p.QuestID, next); err != nil {
				return nil, ErrLedgerUnavailable().SetDebug(err)
			}
			rec.HintTierUnlocked = next
		}
	}

	if s.archive != nil {
		s.archive.Save(ctx, p.UserID, p.QuestID, rec.AttemptsCount, p.Result)
	}

	return &RecordOutcome{
		Record:                  rec,
		HasNewPass:              hasNewPass,
		NextHintUnlockAtAttempt: NextHintUnlockAt(rec.AttemptsCount, p.HintUnlockInterval, rec.HintTierUnlocked, p.MaxHintTier),
	}, nil
}

func (s *AttemptSrvc) Get(ctx context.Context, userID, questID string) (*AttemptRecord, error) {
	rec, err := s.repo.Get(ctx, userID, questID)
	if err != nil {
		return nil, ErrLedgerUnavailable().SetDebug(err)
	}
	return rec, nil
}

func (s *AttemptSrvc) CountPassed(ctx context.Context, userID string, questIDs []string) (int, error) {
	n, err := s.repo.CountPassed(ctx, userID, questIDs)
	if err != nil {
		return 0, ErrLedgerUnavailable().SetDebug(err)
	}
	return n, nil
}
