// Package auditor drains a node's audit spool into the configured
// sinks. It is the only consumer of the spool and runs until its
// context is canceled.
package auditor

import (
	"context"

	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
	"github.com/PeymanShobeiri/Distributed-System-Design/infra/kafka"
)

type Auditor struct {
	spool *audit.Spool
	sinks []audit.Sink
}

func New(spool *audit.Spool, sinks ...audit.Sink) *Auditor {
	return &Auditor{spool: spool, sinks: sinks}
}

// Start consumes entries in the background. Sink errors are invisible
// here on purpose: audit is fire-and-forget.
func (a *Auditor) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-a.spool.Entries():
				for _, s := range a.sinks {
					s.Write(e)
				}
			}
		}
	}()
}

// KafkaSink adapts the Kafka producer to the sink interface. Publish
// errors are swallowed; the entry is simply lost.
type KafkaSink struct {
	producer *kafka.Producer
}

func NewKafkaSink(p *kafka.Producer) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Write(e audit.Entry) {
	_ = s.producer.Publish(context.Background(), e)
}
