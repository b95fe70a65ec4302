package attemptsrvc

import (
	"context"
	"sync"
	"time"

	"github.com/questlab/backend/evalsrvc"
)

// InMemAttemptRepo mirrors the DynamoDB repo's merge semantics for tests
// and local runs: one lock per repo stands in for per-item atomicity.
type InMemAttemptRepo struct {
	lock    sync.Mutex
	records map[attemptKey]*AttemptRecord
}

type attemptKey struct {
	userID  string
	questID string
}

func NewInMemAttemptRepo() *InMemAttemptRepo {
	return &InMemAttemptRepo{
		records: make(map[attemptKey]*AttemptRecord),
	}
}

func (m *InMemAttemptRepo) BumpAttempt(ctx context.Context, userID, questID, code string, result evalsrvc.EvaluationResult, now time.Time) (AttemptRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	key := attemptKey{userID, questID}
	rec, ok := m.records[key]
	if !ok {
		rec = &AttemptRecord{
			UserID:  userID,
			QuestID: questID,
			Status:  StatusInProgress,
		}
		m.records[key] = rec
	}
	rec.AttemptsCount++
	rec.LastCode = code
	resCopy := result
	rec.LastResult = &resCopy
	rec.UpdatedAt = now
	return *rec, nil
}

func (m *InMemAttemptRepo) MarkPassed(ctx context.Context, userID, questID string, xpEarned int, now time.Time) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[attemptKey{userID, questID}]
	if !ok || rec.Passed {
		return false, nil
	}
	rec.Passed = true
	rec.Status = StatusCompleted
	rec.XpEarned = xpEarned
	rec.UpdatedAt = now
	return true, nil
}

func (m *InMemAttemptRepo) RaiseHintTier(ctx context.Context, userID, questID string, tier int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[attemptKey{userID, questID}]
	if !ok || rec.HintTierUnlocked >= tier {
		return nil
	}
	rec.HintTierUnlocked = tier
	return nil
}

func (m *InMemAttemptRepo) Get(ctx context.Context, userID, questID string) (*AttemptRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rec, ok := m.records[attemptKey{userID, questID}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *InMemAttemptRepo) ListByUser(ctx context.Context, userID string) ([]AttemptRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var out []AttemptRecord
	for key, rec := range m.records {
		if key.userID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *InMemAttemptRepo) CountPassed(ctx context.Context, userID string, questIDs []string) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	wanted := make(map[string]bool, len(questIDs))
	for _, id := range questIDs {
		wanted[id] = true
	}
	count := 0
	for key, rec := range m.records {
		if key.userID == userID && rec.Passed && wanted[key.questID] {
			count++
		}
	}
	return count, nil
}
