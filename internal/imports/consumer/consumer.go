package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

// importStarter is the slice of the import service the consumer drives;
// imports.Service satisfies it.
type importStarter interface {
	Start(ctx context.Context, batchID uuid.UUID) (*models.ImportBatch, error)
}

// Consumer drives the import orchestrator from import-requested events.
type Consumer struct {
	svc          importStarter
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer constructs a consumer that watches the provided subscription.
func NewConsumer(svc importStarter, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, errors.New("import service is required")
	}
	if subscription == nil {
		return nil, errors.New("import subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		svc:          svc,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes messages until the context is canceled or the subscription
// errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

// importRequested is the event the API publishes when a batch should run.
type importRequested struct {
	BatchID string `json:"batch_id"`
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var event importRequested
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal import event", err)
		return processResult{ack: true}
	}

	if strings.TrimSpace(event.BatchID) == "" {
		c.logg.Error(logCtx, "import event missing batch id", fmt.Errorf("empty batch_id"))
		return processResult{ack: true}
	}

	batchID, err := uuid.Parse(event.BatchID)
	if err != nil {
		c.logg.Error(logCtx, "import event carries invalid batch id", err)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithBatchID(logCtx, batchID.String())
	if _, err := c.svc.Start(logCtx, batchID); err != nil {
		return c.handleStartError(logCtx, err)
	}

	c.logg.Info(logCtx, "import batch processed")
	return processResult{ack: true}
}

// handleStartError decides redelivery. A batch that failed on its own input
// must not be retried; only transient infrastructure errors are nacked.
func (c *Consumer) handleStartError(ctx context.Context, err error) processResult {
	c.logg.Error(ctx, "import batch run failed", err)

	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeDependency:
			return processResult{nack: true}
		default:
			return processResult{ack: true}
		}
	}
	if isTransientError(err) {
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
