package repository

import (
	"context"
	"encoding/json"
	"testing"

	"duothan/internal/common/mq"
	appErr "duothan/pkg/errors"
)

type fakeProducer struct {
	topic    string
	messages []*mq.Message
	err      error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, message *mq.Message) error {
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeProducer) Ping(context.Context) error { return nil }
func (f *fakeProducer) Close() error               { return nil }

func TestPublishGraded(t *testing.T) {
	t.Parallel()

	producer := &fakeProducer{}
	publisher := NewMQEventPublisher(producer, "submission.graded")

	err := publisher.PublishGraded(context.Background(), GradedEvent{
		SubmissionID: 42,
		TeamID:       7,
		ChallengeID:  3,
		StatusID:     3,
		Score:        100,
		IsCorrect:    true,
		FirstSolve:   true,
	})
	if err != nil {
		t.Fatalf("PublishGraded failed: %v", err)
	}

	if producer.topic != "submission.graded" {
		t.Errorf("unexpected topic %q", producer.topic)
	}
	if len(producer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.messages))
	}
	message := producer.messages[0]
	if message.ID != "42" {
		t.Errorf("expected partition key 42, got %q", message.ID)
	}

	var event GradedEvent
	if err := json.Unmarshal(message.Body, &event); err != nil {
		t.Fatalf("decode event failed: %v", err)
	}
	if event.Kind != "submission.graded" {
		t.Errorf("expected kind default, got %q", event.Kind)
	}
	if event.GradedAt == 0 {
		t.Error("expected graded timestamp default")
	}
	if !event.FirstSolve || event.Score != 100 {
		t.Errorf("unexpected event payload: %+v", event)
	}
}

func TestPublishGradedValidation(t *testing.T) {
	t.Parallel()

	publisher := NewMQEventPublisher(&fakeProducer{}, "submission.graded")
	if err := publisher.PublishGraded(context.Background(), GradedEvent{}); !appErr.Is(err, appErr.ValidationFailed) {
		t.Errorf("expected ValidationFailed, got %v", err)
	}

	unconfigured := NewMQEventPublisher(nil, "")
	err := unconfigured.PublishGraded(context.Background(), GradedEvent{SubmissionID: 1})
	if !appErr.Is(err, appErr.ServiceUnavailable) {
		t.Errorf("expected ServiceUnavailable, got %v", err)
	}
}
