// Package feed binds an event source to the relay dispatcher.
//
// Contract (differs from a fanout bus on purpose):
//   - single consumer, FIFO: per-channel notification order follows
//     event arrival order
//   - Publish blocks when the queue is full; events are never dropped
//   - the consumer invokes the dispatcher synchronously, one event at
//     a time, so the outbound send for event N finishes before N+1
//     is looked at
package feed

import (
	"context"
	"sync"
	"sync/atomic"

	"ecorelay/internal/game"
	"ecorelay/pkg/logx"
)

// Handler is the consumer side: the relay dispatcher.
type Handler interface {
	HandleEvent(ctx context.Context, act game.Action) error
	HandleLogin(ctx context.Context, u game.User) error
	HandleLogout(ctx context.Context, u game.User) error
}

type Pump struct {
	handler Handler
	log     logx.Logger

	queue chan game.Action

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	// failed counts handler errors; surfaced via Failed() for status.
	failed atomic.Uint64
}

func NewPump(handler Handler, buffer int, log logx.Logger) *Pump {
	if buffer <= 0 {
		buffer = 64
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Pump{
		handler: handler,
		log:     log,
		queue:   make(chan game.Action, buffer),
	}
}

// Start launches the consumer goroutine. Calling Start twice is a no-op.
func (p *Pump) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	rctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.run(rctx)
}

func (p *Pump) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case act := <-p.queue:
			p.deliver(ctx, act)
		}
	}
}

// deliver routes session signals to the dedicated hooks and everything
// else through the classification entry point.
func (p *Pump) deliver(ctx context.Context, act game.Action) {
	var err error
	switch a := act.(type) {
	case game.UserLogin:
		err = p.handler.HandleLogin(ctx, a.User)
	case game.UserLogout:
		err = p.handler.HandleLogout(ctx, a.User)
	default:
		err = p.handler.HandleEvent(ctx, act)
	}
	if err != nil {
		p.failed.Add(1)
		p.log.Error("event handling failed", logx.Err(err))
	}
}

// Publish enqueues one action. It blocks when the queue is full rather
// than dropping, and fails only when ctx is cancelled.
func (p *Pump) Publish(ctx context.Context, act game.Action) error {
	select {
	case p.queue <- act:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed reports how many events failed handling since start.
func (p *Pump) Failed() uint64 { return p.failed.Load() }

// Stop cancels the consumer and waits for it to drain its current event.
func (p *Pump) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	wasRunning := p.running
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if !wasRunning {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
