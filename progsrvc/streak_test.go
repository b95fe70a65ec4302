package progsrvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) *string { return &s }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func TestUpdateStreakFirstLogin(t *testing.T) {
	now := mustTime(t, "2026-08-28T15:00:00Z")

	newStreak, bonus, longest := UpdateStreak(nil, 0, 0, now)

	assert.Equal(t, 1, newStreak)
	assert.Equal(t, 0, bonus)
	assert.Equal(t, 1, longest)
}

func TestUpdateStreakConsecutiveDay(t *testing.T) {
	now := mustTime(t, "2026-08-28T00:30:00Z")

	newStreak, bonus, longest := UpdateStreak(date("2026-08-27"), 3, 5, now)

	assert.Equal(t, 4, newStreak)
	assert.Equal(t, 40, bonus)
	assert.Equal(t, 5, longest)
}

func TestUpdateStreakSameDay(t *testing.T) {
	now := mustTime(t, "2026-08-28T23:59:00Z")

	newStreak, bonus, longest := UpdateStreak(date("2026-08-28"), 3, 3, now)

	assert.Equal(t, 3, newStreak)
	assert.Equal(t, 0, bonus)
	assert.Equal(t, 3, longest)
}

func TestUpdateStreakGapResets(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")

	newStreak, bonus, longest := UpdateStreak(date("2026-08-25"), 7, 7, now)

	assert.Equal(t, 1, newStreak)
	assert.Equal(t, 0, bonus)
	assert.Equal(t, 7, longest)
}

func TestUpdateStreakBonusCappedAtHundred(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")

	newStreak, bonus, _ := UpdateStreak(date("2026-08-27"), 14, 14, now)

	assert.Equal(t, 15, newStreak)
	assert.Equal(t, 100, bonus)
}

func TestUpdateStreakExtendsLongest(t *testing.T) {
	now := mustTime(t, "2026-08-28T12:00:00Z")

	newStreak, _, longest := UpdateStreak(date("2026-08-27"), 5, 5, now)

	assert.Equal(t, 6, newStreak)
	assert.Equal(t, 6, longest)
}
