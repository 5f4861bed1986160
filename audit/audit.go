// Package audit carries the fire-and-forget operation log every node
// emits: one entry per (node, actor, operation, parameters, result).
// Entries are never consulted for control decisions.
package audit

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one audited operation.
type Entry struct {
	ID     string    `json:"id"`
	Node   string    `json:"node"`
	Actor  string    `json:"actor"`
	Op     string    `json:"op"`
	Params string    `json:"params"`
	Result string    `json:"result"`
	At     time.Time `json:"at"`
}

// Sink receives entries. Implementations must not block the caller
// for long and must never fail the operation being audited.
type Sink interface {
	Write(Entry)
}

// Recorder is the producer-side surface a node writes to.
type Recorder interface {
	Record(actor, op, params, result string)
}

// ConsoleSink renders entries through a zap logger.
type ConsoleSink struct {
	log *zap.Logger
}

func NewConsoleSink(log *zap.Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

func (s *ConsoleSink) Write(e Entry) {
	s.log.Info("audit",
		zap.String("id", e.ID),
		zap.String("node", e.Node),
		zap.String("actor", e.Actor),
		zap.String("op", e.Op),
		zap.String("params", e.Params),
		zap.String("result", e.Result),
		zap.Time("at", e.At),
	)
}

// Spool decouples the node's locked hot path from sink latency: a
// bounded queue with non-blocking enqueue. When the queue is full the
// entry is dropped and counted; audit loss never stalls trading.
type Spool struct {
	node    string
	entries chan Entry
	dropped atomic.Uint64
}

// NewSpool creates a spool for one node.
func NewSpool(node string, size int) *Spool {
	return &Spool{node: node, entries: make(chan Entry, size)}
}

// Record enqueues one entry, tagged with a fresh correlation id.
func (s *Spool) Record(actor, op, params, result string) {
	e := Entry{
		ID:     uuid.NewString(),
		Node:   s.node,
		Actor:  actor,
		Op:     op,
		Params: params,
		Result: result,
		At:     time.Now().UTC(),
	}
	select {
	case s.entries <- e:
	default:
		s.dropped.Add(1)
	}
}

// Entries exposes the drain side for the auditor job.
func (s *Spool) Entries() <-chan Entry {
	return s.entries
}

// Dropped returns how many entries were discarded on overflow.
func (s *Spool) Dropped() uint64 {
	return s.dropped.Load()
}

// Discard is a Recorder that drops everything. Used where no audit
// pipeline is wired, mostly in tests.
type Discard struct{}

func (Discard) Record(string, string, string, string) {}
