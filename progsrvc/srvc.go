package progsrvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/questlab/backend/logger"
)

// conditional writes are retried a few times with jitter before the
// conflict surfaces to the caller
const maxConditionalRetries = 4

type ProgSrvc struct {
	logger *slog.Logger
	repo   ProgressRepo
	now    func() time.Time
}

func NewProgSrvc(repo ProgressRepo) *ProgSrvc {
	return &ProgSrvc{
		logger: slog.Default(),
		repo:   repo,
		now:    time.Now,
	}
}

// RewardSummary reports what a fresh quest pass changed for the user.
type RewardSummary struct {
	XpAwarded     int  `json:"xp_awarded"`
	BonusXp       int  `json:"bonus_xp"`
	NewXp         int  `json:"new_xp"`
	NewLevel      int  `json:"new_level"`
	LeveledUp     bool `json:"leveled_up"`
	NewStreak     int  `json:"new_streak"`
	LongestStreak int  `json:"longest_streak"`
}

// ApplyQuestReward credits a first-time pass: advances the daily streak,
// adds the quest xp plus any streak bonus in one atomic increment, and
// recomputes the stored level from the resulting total. Callers invoke it
// only when the attempt ledger reported a new pass, so replays of an
// already-passed quest never reach this path.
func (s *ProgSrvc) ApplyQuestReward(ctx context.Context, userID string, questXp int) (RewardSummary, error) {
	log := logger.FromContext(ctx)
	now := s.now()

	newStreak, bonusXp, newLongest, err := s.advanceStreak(ctx, userID, now)
	if err != nil {
		log.Error("failed to advance streak", "error", err, "user_id", userID)
		return RewardSummary{}, wrapConflict(err)
	}

	prevLevel := 1
	if st, err := s.repo.GetState(ctx, userID); err == nil {
		prevLevel = st.Level
	}

	newXp, err := s.repo.AddXp(ctx, userID, questXp+bonusXp)
	if err != nil {
		log.Error("failed to add xp", "error", err, "user_id", userID)
		return RewardSummary{}, ErrProgressionUnavailable().SetDebug(err)
	}

	newLevel, err := s.reconcileLevel(ctx, userID, newXp)
	if err != nil {
		log.Error("failed to reconcile level", "error", err, "user_id", userID)
		return RewardSummary{}, wrapConflict(err)
	}

	return RewardSummary{
		XpAwarded:     questXp,
		BonusXp:       bonusXp,
		NewXp:         newXp,
		NewLevel:      newLevel,
		LeveledUp:     newLevel > prevLevel,
		NewStreak:     newStreak,
		LongestStreak: newLongest,
	}, nil
}

// advanceStreak applies the daily streak transition guarded on the login
// date read in the same iteration. A lost race means another request of
// the same user already logged today, so the re-read converges fast.
func (s *ProgSrvc) advanceStreak(ctx context.Context, userID string, now time.Time) (newStreak, bonusXp, newLongest int, err error) {
	for attempt := 0; attempt < maxConditionalRetries; attempt++ {
		var st UserProgressionState
		st, err = s.repo.GetState(ctx, userID)
		if err != nil {
			return 0, 0, 0, err
		}
		newStreak, bonusXp, newLongest = UpdateStreak(st.LastLoginDate, st.CurrentStreak, st.LongestStreak, now)
		if st.LastLoginDate != nil && *st.LastLoginDate == DateOf(now) {
			// already counted today, nothing to write
			return newStreak, bonusXp, newLongest, nil
		}
		err = s.repo.ApplyStreak(ctx, userID, st.LastLoginDate, newStreak, newLongest, DateOf(now))
		if err == nil {
			return newStreak, bonusXp, newLongest, nil
		}
		if !errors.Is(err, ErrConflict) {
			return 0, 0, 0, err
		}
		jitterSleep(ctx, attempt)
	}
	return 0, 0, 0, err
}

// reconcileLevel stores the level derived from seenXp, re-reading when a
// concurrent award moved the counter in between.
func (s *ProgSrvc) reconcileLevel(ctx context.Context, userID string, seenXp int) (int, error) {
	var err error
	for attempt := 0; attempt < maxConditionalRetries; attempt++ {
		level := Level(seenXp)
		err = s.repo.SetLevel(ctx, userID, seenXp, level)
		if err == nil {
			return level, nil
		}
		if !errors.Is(err, ErrConflict) {
			return 0, err
		}
		jitterSleep(ctx, attempt)
		st, getErr := s.repo.GetState(ctx, userID)
		if getErr != nil {
			return 0, getErr
		}
		seenXp = st.Xp
	}
	return 0, err
}

// RecountWorld upserts the recounted completion state for one world.
// xpDelta is the quest reward on a fresh pass and zero otherwise.
func (s *ProgSrvc) RecountWorld(ctx context.Context, rec WorldProgressRecord, xpDelta int) error {
	if err := s.repo.UpsertWorld(ctx, rec, xpDelta); err != nil {
		logger.FromContext(ctx).Error("failed to upsert world progress",
			"error", err, "user_id", rec.UserID, "world_id", rec.WorldID)
		return ErrProgressionUnavailable().SetDebug(err)
	}
	return nil
}

func (s *ProgSrvc) GetState(ctx context.Context, userID string) (UserProgressionState, error) {
	st, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return UserProgressionState{}, ErrProgressionUnavailable().SetDebug(err)
	}
	return st, nil
}

func (s *ProgSrvc) GetWorlds(ctx context.Context, userID string) ([]WorldProgressRecord, error) {
	rows, err := s.repo.GetWorlds(ctx, userID)
	if err != nil {
		return nil, ErrProgressionUnavailable().SetDebug(err)
	}
	return rows, nil
}

// WorldInfo is the catalog shape MergeWorldProgress consumes.
type WorldInfo struct {
	WorldID     string
	TotalQuests int
}

// MergeWorldProgress joins the ordered world catalog with the user's
// stored rows, synthesizing zero rows for untouched worlds. A world is
// unlocked when it is first in catalog order, the previous world is
// completed, or the user already has activity in it.
func MergeWorldProgress(userID string, catalog []WorldInfo, stored []WorldProgressRecord) []WorldProgressRecord {
	byWorld := make(map[string]WorldProgressRecord, len(stored))
	for _, rec := range stored {
		byWorld[rec.WorldID] = rec
	}

	out := make([]WorldProgressRecord, 0, len(catalog))
	prevCompleted := true
	for i, info := range catalog {
		rec, ok := byWorld[info.WorldID]
		if !ok {
			rec = WorldProgressRecord{UserID: userID, WorldID: info.WorldID}
		}
		rec.TotalQuests = info.TotalQuests
		rec.IsUnlocked = i == 0 || prevCompleted || ok
		prevCompleted = rec.Completed()
		out = append(out, rec)
	}
	return out
}

func wrapConflict(err error) error {
	if errors.Is(err, ErrConflict) {
		return ErrPersistenceConflict().SetDebug(err)
	}
	return ErrProgressionUnavailable().SetDebug(err)
}

func jitterSleep(ctx context.Context, attempt int) {
	base := time.Duration(1<<attempt) * 10 * time.Millisecond
	delay := base + time.Duration(rand.Int63n(int64(base)))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
