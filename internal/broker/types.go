package broker

import (
	"context"
	"time"
)

// SubmissionEvent is the downstream record of one processed submission.
type SubmissionEvent struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	Status       int       `json:"status"`
	ReceivedAt   time.Time `json:"received_at"`
	Client       string    `json:"client"`
	Source       string    `json:"source,omitempty"`
	Bytes        int       `json:"bytes"`
	ArtifactPath string    `json:"artifact_path"`
	MetadataPath string    `json:"metadata_path"`
}

type Producer interface {
	Publish(ctx context.Context, topic string, event SubmissionEvent) error
	Close() error
}
