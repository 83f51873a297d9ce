package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"duothan/internal/common/mq"
	appErr "duothan/pkg/errors"
)

// GradedEvent announces a terminal grading outcome. Downstream scoreboard
// and notification services consume these.
type GradedEvent struct {
	SubmissionID int64  `json:"submission_id"`
	TeamID       int64  `json:"team_id"`
	ChallengeID  int64  `json:"challenge_id"`
	StatusID     int    `json:"status_id"`
	Score        int    `json:"score"`
	IsCorrect    bool   `json:"is_correct"`
	FirstSolve   bool   `json:"first_solve"`
	GradedAt     int64  `json:"graded_at"`
	Kind         string `json:"kind"`
}

// EventPublisher publishes grading events for async processing.
type EventPublisher interface {
	PublishGraded(ctx context.Context, event GradedEvent) error
}

// MQEventPublisher publishes grading events to a message queue.
type MQEventPublisher struct {
	producer mq.Producer
	topic    string
}

// NewMQEventPublisher creates a new MQ event publisher.
func NewMQEventPublisher(producer mq.Producer, topic string) *MQEventPublisher {
	return &MQEventPublisher{producer: producer, topic: topic}
}

// PublishGraded publishes a graded event.
func (p *MQEventPublisher) PublishGraded(ctx context.Context, event GradedEvent) error {
	if p == nil || p.producer == nil {
		return appErr.New(appErr.ServiceUnavailable).WithMessage("event publisher is not configured")
	}
	if p.topic == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("event topic is required")
	}
	if event.SubmissionID <= 0 {
		return appErr.ValidationError("submission_id", "required")
	}
	if event.Kind == "" {
		event.Kind = "submission.graded"
	}
	if event.GradedAt == 0 {
		event.GradedAt = time.Now().Unix()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal graded event failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = strconv.FormatInt(event.SubmissionID, 10)
	if err := p.producer.Publish(ctx, p.topic, message); err != nil {
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "publish graded event failed")
	}
	return nil
}
