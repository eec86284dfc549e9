package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"auto-copy/src/messages"
)

var (
	// ErrNotRegistered means nobody is listening at the destination yet.
	ErrNotRegistered = errors.New("process not registered")
	ErrClosed        = errors.New("router is shut down")
)

// Router handles message routing between processes. Each registered process
// owns one unbounded FIFO mailbox, so Send never blocks the sender.
type Router struct {
	mu        sync.RWMutex
	mailboxes map[string]*mailbox
	closed    bool
}

// New creates a new message router
func New() *Router {
	return &Router{mailboxes: make(map[string]*mailbox)}
}

// Register creates the mailbox for processID and returns its receive side.
func (r *Router) Register(processID string) (<-chan messages.Envelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if _, exists := r.mailboxes[processID]; exists {
		return nil, fmt.Errorf("process %s already registered", processID)
	}

	mb := newMailbox()
	r.mailboxes[processID] = mb
	go mb.pump()

	log.Debug().Str("process", processID).Msg("router: registered")
	return mb.out, nil
}

// Unregister closes the mailbox for processID. Undelivered messages are dropped.
func (r *Router) Unregister(processID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mb, exists := r.mailboxes[processID]; exists {
		mb.close()
		delete(r.mailboxes, processID)
		log.Debug().Str("process", processID).Msg("router: unregistered")
	}
}

// Send encodes m and queues it for the destination process.
func (r *Router) Send(from, to string, m messages.Message) error {
	payload, err := messages.Encode(m)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}
	mb, exists := r.mailboxes[to]
	if !exists {
		return fmt.Errorf("send to %s: %w", to, ErrNotRegistered)
	}
	if !mb.push(messages.Envelope{From: from, To: to, Payload: payload}) {
		return ErrClosed
	}
	return nil
}

// Pending reports how many messages wait in each mailbox.
func (r *Router) Pending() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]int, len(r.mailboxes))
	for id, mb := range r.mailboxes {
		stats[id] = mb.len()
	}
	return stats
}

// Shutdown closes every mailbox. Subsequent Sends fail with ErrClosed.
func (r *Router) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for id, mb := range r.mailboxes {
		mb.close()
		delete(r.mailboxes, id)
	}
	log.Debug().Msg("router: shutdown complete")
}

type mailbox struct {
	mu     sync.Mutex
	queue  []messages.Envelope
	closed bool
	signal chan struct{}
	done   chan struct{}
	out    chan messages.Envelope
}

func newMailbox() *mailbox {
	return &mailbox{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan messages.Envelope),
	}
}

func (m *mailbox) push(env messages.Envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, env)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.queue = nil
	close(m.done)
}

// pump moves queued envelopes to out, one at a time, until the mailbox closes.
func (m *mailbox) pump() {
	defer close(m.out)
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.mu.Unlock()
			select {
			case <-m.signal:
			case <-m.done:
			}
			m.mu.Lock()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}
		env := m.queue[0]
		m.queue[0] = messages.Envelope{}
		m.queue = m.queue[1:]
		m.mu.Unlock()

		select {
		case m.out <- env:
		case <-m.done:
			return
		}
	}
}
