package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	queueCapacity = 32
	queueIdleTTL  = 10 * time.Minute
)

// Dispatcher funnels each chat's events through its own FIFO queue, so two
// messages from one user can never race on the same session, while separate
// chats proceed concurrently. Queues are created on first event and reaped
// after sitting idle.
type eventHandler interface {
	HandleEvent(ctx context.Context, ev Event)
}

type Dispatcher struct {
	engine eventHandler
	logger *slog.Logger

	mu     sync.Mutex
	queues map[int64]chan Event
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(engine eventHandler, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		logger: logger,
		queues: make(map[int64]chan Event),
	}
}

// Submit enqueues an event for its chat. Non-blocking: if a single chat
// floods its queue past capacity the event is dropped and logged, which
// beats stalling the webhook handler.
func (d *Dispatcher) Submit(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	q, ok := d.queues[ev.ChatID]
	if !ok {
		q = make(chan Event, queueCapacity)
		d.queues[ev.ChatID] = q
		d.wg.Add(1)
		go d.drain(ev.ChatID, q)
	}

	// Send under the lock: reaping in drain also takes the lock, so an
	// event can never land on a queue that is about to be deleted.
	select {
	case q <- ev:
	default:
		d.logger.Warn("queue overflow, event dropped", "chat_id", ev.ChatID)
	}
}

func (d *Dispatcher) drain(chatID int64, q chan Event) {
	defer d.wg.Done()

	idle := time.NewTimer(queueIdleTTL)
	defer idle.Stop()

	for {
		select {
		case ev, ok := <-q:
			if !ok {
				return
			}
			d.engine.HandleEvent(context.Background(), ev)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(queueIdleTTL)

		case <-idle.C:
			// Reap only if nothing raced in while the timer fired.
			d.mu.Lock()
			if len(q) == 0 && !d.closed {
				delete(d.queues, chatID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			idle.Reset(queueIdleTTL)
		}
	}
}

// Stop closes all queues and waits for in-flight events to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
