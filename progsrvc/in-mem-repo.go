package progsrvc

import (
	"context"
	"sync"
)

// InMemProgressRepo mirrors the DynamoDB repo's conditional-write
// semantics for tests and local runs.
type InMemProgressRepo struct {
	lock   sync.Mutex
	states map[string]*UserProgressionState
	worlds map[worldKey]*WorldProgressRecord
}

type worldKey struct {
	userID  string
	worldID string
}

func NewInMemProgressRepo() *InMemProgressRepo {
	return &InMemProgressRepo{
		states: make(map[string]*UserProgressionState),
		worlds: make(map[worldKey]*WorldProgressRecord),
	}
}

func (m *InMemProgressRepo) state(userID string) *UserProgressionState {
	st, ok := m.states[userID]
	if !ok {
		st = &UserProgressionState{UserID: userID, Level: 1}
		m.states[userID] = st
	}
	return st
}

func (m *InMemProgressRepo) GetState(ctx context.Context, userID string) (UserProgressionState, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	st, ok := m.states[userID]
	if !ok {
		return UserProgressionState{UserID: userID, Level: 1}, nil
	}
	return *st, nil
}

func (m *InMemProgressRepo) AddXp(ctx context.Context, userID string, delta int) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	st := m.state(userID)
	st.Xp += delta
	return st.Xp, nil
}

func (m *InMemProgressRepo) SetLevel(ctx context.Context, userID string, seenXp, level int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	st := m.state(userID)
	if st.Xp != seenXp {
		return ErrConflict
	}
	st.Level = level
	return nil
}

func (m *InMemProgressRepo) ApplyStreak(ctx context.Context, userID string, prevDate *string, newStreak, newLongest int, newDate string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	st := m.state(userID)
	switch {
	case prevDate == nil && st.LastLoginDate != nil:
		return ErrConflict
	case prevDate != nil && (st.LastLoginDate == nil || *st.LastLoginDate != *prevDate):
		return ErrConflict
	}
	st.CurrentStreak = newStreak
	st.LongestStreak = newLongest
	date := newDate
	st.LastLoginDate = &date
	return nil
}

func (m *InMemProgressRepo) UpsertWorld(ctx context.Context, rec WorldProgressRecord, xpDelta int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	key := worldKey{rec.UserID, rec.WorldID}
	row, ok := m.worlds[key]
	if !ok {
		row = &WorldProgressRecord{UserID: rec.UserID, WorldID: rec.WorldID}
		m.worlds[key] = row
	}
	row.QuestsCompleted = rec.QuestsCompleted
	row.TotalQuests = rec.TotalQuests
	row.IsUnlocked = rec.IsUnlocked
	row.XpEarned += xpDelta
	return nil
}

func (m *InMemProgressRepo) GetWorlds(ctx context.Context, userID string) ([]WorldProgressRecord, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var out []WorldProgressRecord
	for key, rec := range m.worlds {
		if key.userID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}
