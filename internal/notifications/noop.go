package notifications

import "context"

// NoopProducer satisfies Producer when Kafka is disabled. Messages are
// dropped; the recording producer in tests captures them instead.
type NoopProducer struct{}

func NewNoopProducer() Producer {
	return &NoopProducer{}
}

func (NoopProducer) PublishLifecycle(ctx context.Context, message *LifecycleMessage) error {
	return nil
}

func (NoopProducer) PublishRefund(ctx context.Context, instruction *RefundInstruction) error {
	return nil
}

func (NoopProducer) Close() error { return nil }

func (NoopProducer) HealthCheck(ctx context.Context) error { return nil }
