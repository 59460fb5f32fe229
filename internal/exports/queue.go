package exports

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

// jobMessage is the wire payload between the API and the export worker.
type jobMessage struct {
	JobID uuid.UUID `json:"job_id"`
}

type pubsubQueue struct {
	publisher *gcppubsub.Publisher
}

// NewPubSubQueue returns a JobQueue backed by the export jobs topic.
func NewPubSubQueue(publisher *gcppubsub.Publisher) (JobQueue, error) {
	if publisher == nil {
		return nil, fmt.Errorf("export publisher required")
	}
	return &pubsubQueue{publisher: publisher}, nil
}

func (q *pubsubQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	data, err := json.Marshal(jobMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("encode export job message: %w", err)
	}

	result := q.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{"job_id": jobID.String()},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish export job %s: %w", jobID, err)
	}
	return nil
}
