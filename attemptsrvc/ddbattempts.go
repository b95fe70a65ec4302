package attemptsrvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
	"github.com/questlab/backend/evalsrvc"
)

// attemptRow is the DynamoDB shape of an AttemptRecord. Partition key is
// the user, sort key the quest, giving single-item atomicity for the
// (user, quest) ledger entry.
type attemptRow struct {
	UserID  string `dynamo:"user_id,hash" dynamodbav:"user_id"`
	QuestID string `dynamo:"quest_id,range" dynamodbav:"quest_id"`

	AttemptsCount int       `dynamo:"attempts_count" dynamodbav:"attempts_count"`
	HintTier      int       `dynamo:"hint_tier" dynamodbav:"hint_tier"`
	LastCode      string    `dynamo:"last_code" dynamodbav:"last_code"`
	LastResult    []byte    `dynamo:"last_result" dynamodbav:"last_result"` // zstd JSON
	Passed        bool      `dynamo:"passed" dynamodbav:"passed"`
	XpEarned      int       `dynamo:"xp_earned" dynamodbav:"xp_earned"`
	Status        string    `dynamo:"status" dynamodbav:"status"`
	UpdatedAt     time.Time `dynamo:"updated_at" dynamodbav:"updated_at"`
}

type DdbAttemptRepo struct {
	ddbClient *dynamodb.Client
	tableName string
	table     *dynamo.Table
}

func NewDdbAttemptRepo(ddbClient *dynamodb.Client, tableName string) *DdbAttemptRepo {
	db := dynamo.NewFromIface(ddbClient)
	table := db.Table(tableName)
	return &DdbAttemptRepo{ddbClient: ddbClient, tableName: tableName, table: &table}
}

// BumpAttempt is one UpdateItem: ADD on the counter plus SETs for the
// latest code/result and if_not_exists defaults for the fields the bump
// must not touch. ALL_NEW returns both the fresh counter and the prior
// pass state in a single round trip.
func (r *DdbAttemptRepo) BumpAttempt(ctx context.Context, userID, questID, code string, result evalsrvc.EvaluationResult, now time.Time) (AttemptRecord, error) {
	blob, err := encodeResult(result)
	if err != nil {
		return AttemptRecord{}, err
	}

	upd := expression.
		Add(expression.Name("attempts_count"), expression.Value(1)).
		Set(expression.Name("last_code"), expression.Value(code)).
		Set(expression.Name("last_result"), expression.Value(blob)).
		Set(expression.Name("updated_at"), expression.Value(now.Format(time.RFC3339Nano))).
		Set(expression.Name("hint_tier"),
			expression.IfNotExists(expression.Name("hint_tier"), expression.Value(0))).
		Set(expression.Name("passed"),
			expression.IfNotExists(expression.Name("passed"), expression.Value(false))).
		Set(expression.Name("xp_earned"),
			expression.IfNotExists(expression.Name("xp_earned"), expression.Value(0))).
		Set(expression.Name("status"),
			expression.IfNotExists(expression.Name("status"), expression.Value(string(StatusInProgress))))
	expr, err := expression.NewBuilder().WithUpdate(upd).Build()
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("failed to build attempt bump expression: %w", err)
	}

	out, err := r.ddbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id":  &types.AttributeValueMemberS{Value: userID},
			"quest_id": &types.AttributeValueMemberS{Value: questID},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("failed to bump attempt: %w", err)
	}

	var row attemptRow
	if err := attributevalue.UnmarshalMap(out.Attributes, &row); err != nil {
		return AttemptRecord{}, fmt.Errorf("failed to unmarshal bumped attempt: %w", err)
	}
	return rowToRecord(row)
}

func (r *DdbAttemptRepo) MarkPassed(ctx context.Context, userID, questID string, xpEarned int, now time.Time) (bool, error) {
	err := r.table.Update("user_id", userID).
		Range("quest_id", questID).
		Set("passed", true).
		Set("status", string(StatusCompleted)).
		Set("xp_earned", xpEarned).
		Set("updated_at", now).
		If("'passed' = ?", false).
		Run(ctx)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			// a concurrent submission already won the transition
			return false, nil
		}
		return false, fmt.Errorf("failed to mark attempt passed: %w", err)
	}
	return true, nil
}

func (r *DdbAttemptRepo) RaiseHintTier(ctx context.Context, userID, questID string, tier int) error {
	err := r.table.Update("user_id", userID).
		Range("quest_id", questID).
		Set("hint_tier", tier).
		If("'hint_tier' < ?", tier).
		Run(ctx)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil // tier is monotone; someone got there first
		}
		return fmt.Errorf("failed to raise hint tier: %w", err)
	}
	return nil
}

func (r *DdbAttemptRepo) Get(ctx context.Context, userID, questID string) (*AttemptRecord, error) {
	var row attemptRow
	err := r.table.Get("user_id", userID).
		Range("quest_id", dynamo.Equal, questID).
		One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	rec, err := rowToRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DdbAttemptRepo) ListByUser(ctx context.Context, userID string) ([]AttemptRecord, error) {
	var rows []attemptRow
	err := r.table.Get("user_id", userID).All(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	records := make([]AttemptRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *DdbAttemptRepo) CountPassed(ctx context.Context, userID string, questIDs []string) (int, error) {
	var rows []attemptRow
	err := r.table.Get("user_id", userID).
		Filter("'passed' = ?", true).
		All(ctx, &rows)
	if err != nil {
		return 0, fmt.Errorf("failed to count passed attempts: %w", err)
	}
	wanted := make(map[string]bool, len(questIDs))
	for _, id := range questIDs {
		wanted[id] = true
	}
	count := 0
	for _, row := range rows {
		if wanted[row.QuestID] {
			count++
		}
	}
	return count, nil
}

func rowToRecord(row attemptRow) (AttemptRecord, error) {
	lastResult, err := decodeResult(row.LastResult)
	if err != nil {
		return AttemptRecord{}, err
	}
	return AttemptRecord{
		UserID:           row.UserID,
		QuestID:          row.QuestID,
		AttemptsCount:    row.AttemptsCount,
		HintTierUnlocked: row.HintTier,
		LastCode:         row.LastCode,
		LastResult:       lastResult,
		Passed:           row.Passed,
		XpEarned:         row.XpEarned,
		Status:           Status(row.Status),
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
