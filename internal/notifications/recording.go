package notifications

import (
	"context"
	"sync"
)

// RecordingProducer captures published messages in memory for assertions.
type RecordingProducer struct {
	mu        sync.Mutex
	lifecycle []*LifecycleMessage
	refunds   []*RefundInstruction

	// FailRefunds makes refund publishes fail, for exercising failure
	// aggregation paths.
	FailRefunds error
}

func NewRecordingProducer() *RecordingProducer {
	return &RecordingProducer{}
}

func (p *RecordingProducer) PublishLifecycle(ctx context.Context, message *LifecycleMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lifecycle = append(p.lifecycle, message)
	return nil
}

func (p *RecordingProducer) PublishRefund(ctx context.Context, instruction *RefundInstruction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailRefunds != nil {
		return p.FailRefunds
	}
	p.refunds = append(p.refunds, instruction)
	return nil
}

func (p *RecordingProducer) Close() error { return nil }

func (p *RecordingProducer) HealthCheck(ctx context.Context) error { return nil }

// LifecycleMessages returns a snapshot of captured lifecycle messages
func (p *RecordingProducer) LifecycleMessages() []*LifecycleMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*LifecycleMessage, len(p.lifecycle))
	copy(out, p.lifecycle)
	return out
}

// RefundInstructions returns a snapshot of captured refund instructions
func (p *RecordingProducer) RefundInstructions() []*RefundInstruction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*RefundInstruction, len(p.refunds))
	copy(out, p.refunds)
	return out
}
