package attemptsrvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/s3bucket"
)

// ResultArchive keeps the full evaluation result of every submission in
// S3 as zstd-compressed JSON. The ledger row only holds the latest
// result; the archive is the history. Writes are best-effort: an archive
// failure never fails the submission.
type ResultArchive struct {
	logger *slog.Logger
	bucket *s3bucket.S3Bucket
}

func NewResultArchive(logger *slog.Logger, bucket *s3bucket.S3Bucket) *ResultArchive {
	return &ResultArchive{
		logger: logger.With("module", "result-archive"),
		bucket: bucket,
	}
}

func (a *ResultArchive) Save(ctx context.Context, userID, questID string, attempt int, res evalsrvc.EvaluationResult) {
	blob, err := encodeResult(res)
	if err != nil {
		a.logger.Error("failed to encode result for archive", "error", err)
		return
	}

	key := fmt.Sprintf("results/%s/%s/%06d-%s.json.zst", userID, questID, attempt, uuid.New().String())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := a.bucket.Upload(ctx, blob, key, "application/zstd"); err != nil {
		a.logger.Error("failed to archive result", "key", key, "error", err)
		return
	}
	a.logger.Debug("archived result", "key", key)
}
