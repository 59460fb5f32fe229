package exports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/metrics"
)

// Worker consumes export job messages and drives them through ProcessJob.
type Worker struct {
	subscription *gcppubsub.Subscriber
	service      Service
	logg         *logger.Logger
	metrics      *metrics.ExportJobMetrics
}

// NewWorker creates the export queue consumer. Metrics may be nil when the
// binary does not expose a registry.
func NewWorker(subscription *gcppubsub.Subscriber, service Service, logg *logger.Logger, jobMetrics *metrics.ExportJobMetrics) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("exports subscription is required")
	}
	if service == nil {
		return nil, errors.New("export service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{subscription: subscription, service: service, logg: logg, metrics: jobMetrics}, nil
}

// Run blocks consuming job messages until the context is canceled. Messages
// are nacked only for transient failures; malformed messages and job-level
// failures are acked so they are not redelivered forever.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) (nack bool) {
	logCtx := w.logg.WithField(ctx, "message_id", msg.ID)

	jobID, err := decodeJobID(msg)
	if err != nil {
		w.metrics.IncMalformed()
		w.logg.Warn(w.logg.WithField(logCtx, "error", err.Error()), "invalid export job message")
		return false
	}
	logCtx = w.logg.WithField(logCtx, "export_job_id", jobID.String())

	started := time.Now()
	err = w.service.ProcessJob(logCtx, jobID)
	w.metrics.ObserveDuration(time.Since(started))
	if err != nil {
		w.metrics.IncFailure()
		w.logg.Error(logCtx, "export job will be redelivered", err)
		return true
	}
	w.metrics.IncSuccess()
	return false
}

func decodeJobID(msg *gcppubsub.Message) (uuid.UUID, error) {
	var payload jobMessage
	if err := json.Unmarshal(msg.Data, &payload); err == nil && payload.JobID != uuid.Nil {
		return payload.JobID, nil
	}
	if raw := strings.TrimSpace(msg.Attributes["job_id"]); raw != "" {
		return uuid.Parse(raw)
	}
	return uuid.Nil, errors.New("job_id missing")
}
