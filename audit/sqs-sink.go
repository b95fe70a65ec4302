package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const sqsSendTimeout = 5 * time.Second

// SqsSink forwards audit events to an SQS queue for downstream
// retention. Sends are asynchronous; failures are logged and dropped.
type SqsSink struct {
	logger    *slog.Logger
	sqsClient *sqs.Client
	queueUrl  string
}

func NewSqsSink(sqsClient *sqs.Client, queueUrl string) *SqsSink {
	return &SqsSink{
		logger:    slog.Default(),
		sqsClient: sqsClient,
		queueUrl:  queueUrl,
	}
}

func (s *SqsSink) Record(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal audit event", "error", err, "event", ev.Event)
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), sqsSendTimeout)
		defer cancel()
		_, err := s.sqsClient.SendMessage(sendCtx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(s.queueUrl),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			s.logger.Error("failed to send audit event to queue",
				"error", err, "event", ev.Event)
		}
	}()
}
