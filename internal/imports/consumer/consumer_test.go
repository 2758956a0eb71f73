package consumer

import (
	"context"
	"errors"
	"io"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

type stubStarter struct {
	started []uuid.UUID
	err     error
}

func (s *stubStarter) Start(_ context.Context, batchID uuid.UUID) (*models.ImportBatch, error) {
	s.started = append(s.started, batchID)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ImportBatch{ID: batchID}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestConsumer(svc importStarter) *Consumer {
	return &Consumer{svc: svc, logg: testLogger()}
}

func TestProcessStartsBatch(t *testing.T) {
	t.Parallel()

	batchID := uuid.New()
	svc := &stubStarter{}
	c := newTestConsumer(svc)

	result := c.process(context.Background(), &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{"batch_id":"` + batchID.String() + `"}`),
	})

	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(svc.started) != 1 || svc.started[0] != batchID {
		t.Fatalf("service not invoked with batch id: %v", svc.started)
	}
}

func TestProcessAcksMalformedPayloads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("garbage")},
		{"missing batch id", []byte(`{}`)},
		{"invalid uuid", []byte(`{"batch_id":"nope"}`)},
	}

	for _, tc := range cases {
		svc := &stubStarter{}
		c := newTestConsumer(svc)
		result := c.process(context.Background(), &pubsub.Message{ID: "m1", Data: tc.data})
		if !result.ack || result.nack {
			t.Fatalf("%s: malformed payload must be acked, got %+v", tc.name, result)
		}
		if len(svc.started) != 0 {
			t.Fatalf("%s: service must not be invoked", tc.name)
		}
	}
}

func TestProcessAcksInputFailures(t *testing.T) {
	t.Parallel()

	svc := &stubStarter{err: pkgerrors.New(pkgerrors.CodeUnsafeInput, "zip bomb detected")}
	c := newTestConsumer(svc)

	result := c.process(context.Background(), &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{"batch_id":"` + uuid.NewString() + `"}`),
	})
	if !result.ack || result.nack {
		t.Fatalf("input failure must not be redelivered, got %+v", result)
	}
}

func TestProcessNacksDependencyFailures(t *testing.T) {
	t.Parallel()

	svc := &stubStarter{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	c := newTestConsumer(svc)

	result := c.process(context.Background(), &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{"batch_id":"` + uuid.NewString() + `"}`),
	})
	if result.ack || !result.nack {
		t.Fatalf("dependency failure should be redelivered, got %+v", result)
	}
}

func TestProcessNacksTimeouts(t *testing.T) {
	t.Parallel()

	svc := &stubStarter{err: context.DeadlineExceeded}
	c := newTestConsumer(svc)

	result := c.process(context.Background(), &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{"batch_id":"` + uuid.NewString() + `"}`),
	})
	if !result.nack {
		t.Fatalf("timeout should be redelivered, got %+v", result)
	}
}

func TestProcessAcksUnknownErrors(t *testing.T) {
	t.Parallel()

	svc := &stubStarter{err: errors.New("something odd")}
	c := newTestConsumer(svc)

	result := c.process(context.Background(), &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{"batch_id":"` + uuid.NewString() + `"}`),
	})
	if !result.ack {
		t.Fatalf("unknown errors ack to avoid poison loops, got %+v", result)
	}
}

func TestNewConsumerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewConsumer(nil, &pubsub.Subscriber{}, testLogger()); err == nil {
		t.Fatal("expected error for nil service")
	}
	if _, err := NewConsumer(&stubStarter{}, nil, testLogger()); err == nil {
		t.Fatal("expected error for nil subscription")
	}
	if _, err := NewConsumer(&stubStarter{}, &pubsub.Subscriber{}, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
