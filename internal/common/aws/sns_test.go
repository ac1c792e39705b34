// internal/common/aws/sns_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSNSAlerter_NotifyFallback(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var alert FallbackAlert
		if err := json.Unmarshal([]byte(*in.Message), &alert); err != nil {
			return false
		}
		return *in.TopicArn == "arn:aws:sns:us-east-1:123:costli" &&
			alert.Reason == "deadline_exceeded" &&
			alert.Domain == "AWS" &&
			!alert.At.IsZero() &&
			*in.MessageAttributes["reason"].StringValue == "deadline_exceeded"
	})).Return(&sns.PublishOutput{}, nil)

	alerter := NewSNSAlerter(pub, "arn:aws:sns:us-east-1:123:costli")
	err := alerter.NotifyFallback(context.Background(), FallbackAlert{Domain: "AWS", Reason: "deadline_exceeded"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestSNSAlerter_PublishError(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := NewSNSAlerter(pub, "arn").NotifyFallback(context.Background(), FallbackAlert{Domain: "GCP", Reason: "synthesis_failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNoopAlerter(t *testing.T) {
	assert.NoError(t, NoopAlerter{}.NotifyFallback(context.Background(), FallbackAlert{}))
}
