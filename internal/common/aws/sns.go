// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of the SNS API the alerter needs.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client Publisher
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input, optFns...)
}

// FallbackAlert describes one analyze run that ended on the canned tiles.
type FallbackAlert struct {
	RequestID string    `json:"requestId,omitempty"`
	Domain    string    `json:"domain"`
	Reason    string    `json:"reason"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

type Alerter interface {
	NotifyFallback(ctx context.Context, alert FallbackAlert) error
}

// SNSAlerter publishes fallback alerts as JSON to a topic.
type SNSAlerter struct {
	publisher Publisher
	topicARN  string
}

func NewSNSAlerter(publisher Publisher, topicARN string) *SNSAlerter {
	return &SNSAlerter{publisher: publisher, topicARN: topicARN}
}

func (a *SNSAlerter) NotifyFallback(ctx context.Context, alert FallbackAlert) error {
	if alert.At.IsZero() {
		alert.At = time.Now().UTC()
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	_, err = a.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(a.topicARN),
		Subject:  awssdk.String(fmt.Sprintf("Costli fallback insights (%s)", alert.Domain)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"reason": {DataType: awssdk.String("String"), StringValue: awssdk.String(alert.Reason)},
			"domain": {DataType: awssdk.String("String"), StringValue: awssdk.String(alert.Domain)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish fallback alert: %w", err)
	}
	return nil
}

// NoopAlerter drops alerts. Used when no topic is configured.
type NoopAlerter struct{}

func (NoopAlerter) NotifyFallback(context.Context, FallbackAlert) error { return nil }
