package progsrvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
)

// stateRow is the per-user accumulator item keyed on the user alone.
type stateRow struct {
	UserID        string  `dynamo:"user_id,hash"`
	Xp            int     `dynamo:"xp"`
	Level         int     `dynamo:"level"`
	CurrentStreak int     `dynamo:"current_streak"`
	LongestStreak int     `dynamo:"longest_streak"`
	LastLoginDate *string `dynamo:"last_login_date,omitempty"`
}

// worldRow is one user's progress within one world.
type worldRow struct {
	UserID          string `dynamo:"user_id,hash"`
	WorldID         string `dynamo:"world_id,range"`
	QuestsCompleted int    `dynamo:"quests_completed"`
	TotalQuests     int    `dynamo:"total_quests"`
	XpEarned        int    `dynamo:"xp_earned"`
	IsUnlocked      bool   `dynamo:"is_unlocked"`
}

type DdbProgressRepo struct {
	stateTable *dynamo.Table
	worldTable *dynamo.Table
}

func NewDdbProgressRepo(ddbClient *dynamodb.Client, stateTableName, worldTableName string) *DdbProgressRepo {
	db := dynamo.NewFromIface(ddbClient)
	state := db.Table(stateTableName)
	world := db.Table(worldTableName)
	return &DdbProgressRepo{stateTable: &state, worldTable: &world}
}

func (r *DdbProgressRepo) GetState(ctx context.Context, userID string) (UserProgressionState, error) {
	var row stateRow
	err := r.stateTable.Get("user_id", userID).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return UserProgressionState{UserID: userID, Level: 1}, nil
		}
		return UserProgressionState{}, fmt.Errorf("failed to get progression state: %w", err)
	}
	return stateRowToRecord(row), nil
}

// AddXp is a single ADD update; the counter never conflicts, it only
// accumulates. ALL_NEW hands back the fresh total for level recompute.
func (r *DdbProgressRepo) AddXp(ctx context.Context, userID string, delta int) (int, error) {
	var row stateRow
	err := r.stateTable.Update("user_id", userID).
		Add("xp", delta).
		SetIfNotExists("level", 1).
		SetIfNotExists("current_streak", 0).
		SetIfNotExists("longest_streak", 0).
		Value(ctx, &row)
	if err != nil {
		return 0, fmt.Errorf("failed to add xp: %w", err)
	}
	return row.Xp, nil
}

func (r *DdbProgressRepo) SetLevel(ctx context.Context, userID string, seenXp, level int) error {
	err := r.stateTable.Update("user_id", userID).
		Set("level", level).
		If("'xp' = ?", seenXp).
		Run(ctx)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrConflict
		}
		return fmt.Errorf("failed to set level: %w", err)
	}
	return nil
}

func (r *DdbProgressRepo) ApplyStreak(ctx context.Context, userID string, prevDate *string, newStreak, newLongest int, newDate string) error {
	update := r.stateTable.Update("user_id", userID).
		Set("current_streak", newStreak).
		Set("longest_streak", newLongest).
		Set("last_login_date", newDate).
		SetIfNotExists("xp", 0).
		SetIfNotExists("level", 1)
	if prevDate == nil {
		update = update.If("attribute_not_exists('last_login_date')")
	} else {
		update = update.If("'last_login_date' = ?", *prevDate)
	}
	err := update.Run(ctx)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrConflict
		}
		return fmt.Errorf("failed to apply streak: %w", err)
	}
	return nil
}

// UpsertWorld sets the recounted completion and adds the xp delta. The
// recount is idempotent and the ADD is only issued on a fresh pass, so
// replays cannot inflate the world totals.
func (r *DdbProgressRepo) UpsertWorld(ctx context.Context, rec WorldProgressRecord, xpDelta int) error {
	update := r.worldTable.Update("user_id", rec.UserID).
		Range("world_id", rec.WorldID).
		Set("quests_completed", rec.QuestsCompleted).
		Set("total_quests", rec.TotalQuests).
		Set("is_unlocked", rec.IsUnlocked)
	if xpDelta != 0 {
		update = update.Add("xp_earned", xpDelta)
	} else {
		update = update.SetIfNotExists("xp_earned", 0)
	}
	if err := update.Run(ctx); err != nil {
		return fmt.Errorf("failed to upsert world progress: %w", err)
	}
	return nil
}

func (r *DdbProgressRepo) GetWorlds(ctx context.Context, userID string) ([]WorldProgressRecord, error) {
	var rows []worldRow
	err := r.worldTable.Get("user_id", userID).All(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list world progress: %w", err)
	}
	records := make([]WorldProgressRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, WorldProgressRecord{
			UserID:          row.UserID,
			WorldID:         row.WorldID,
			QuestsCompleted: row.QuestsCompleted,
			TotalQuests:     row.TotalQuests,
			XpEarned:        row.XpEarned,
			IsUnlocked:      row.IsUnlocked,
		})
	}
	return records, nil
}

func stateRowToRecord(row stateRow) UserProgressionState {
	level := row.Level
	if level < 1 {
		level = 1
	}
	return UserProgressionState{
		UserID:        row.UserID,
		Xp:            row.Xp,
		Level:         level,
		CurrentStreak: row.CurrentStreak,
		LongestStreak: row.LongestStreak,
		LastLoginDate: row.LastLoginDate,
	}
}
