package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used to publish processing events.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

var _ SQSAPI = (*sqs.Client)(nil)

// Publisher sends processing results to a queue. A nil Publisher drops them.
type Publisher struct {
	client   SQSAPI
	queueURL string
	now      func() time.Time
}

// NewPublisher returns nil when queueURL is empty.
func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	if queueURL == "" {
		return nil
	}
	return &Publisher{client: client, queueURL: queueURL, now: time.Now}
}

// Publish stamps and sends res.
func (p *Publisher) Publish(ctx context.Context, res *Result) error {
	if p == nil || res == nil {
		return nil
	}
	res.ProcessedAt = p.now().UTC()

	body, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "marshal processing event")
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"outcome": {DataType: aws.String("String"), StringValue: aws.String(res.Outcome)},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "send processing event for %q", res.Key)
	}

	cllwa.Log(ctx).Debug("processing event sent",
		zap.String("message_id", aws.ToString(out.MessageId)), zap.String("outcome", res.Outcome))
	return nil
}
