package session

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem-arena/internal/agent"
)

// errTurnTimeout signals that a human let their turn clock run out.
var errTurnTimeout = errors.New("turn timed out")

// mailbox is a human seat's single-slot decision inbox. The turn loop
// waits on it with a deadline while the transport delivers proposals
// from the outside.
type mailbox struct {
	slot chan agent.Proposal
}

func newMailbox() *mailbox {
	return &mailbox{slot: make(chan agent.Proposal, 1)}
}

// deliver writes a proposal without blocking. A full slot means a
// decision is already pending for this turn.
func (m *mailbox) deliver(p agent.Proposal) error {
	select {
	case m.slot <- p:
		return nil
	default:
		return &InvalidActionError{Reason: "decision already pending for this turn"}
	}
}

// drain discards a stale proposal left over from a previous turn.
func (m *mailbox) drain() {
	select {
	case <-m.slot:
	default:
	}
}

// await blocks until a proposal arrives, the timeout fires, or ctx
// ends. A zero timeout waits forever.
func (m *mailbox) await(ctx context.Context, clock quartz.Clock, timeout time.Duration) (agent.Proposal, error) {
	if timeout <= 0 {
		select {
		case p := <-m.slot:
			return p, nil
		case <-ctx.Done():
			return agent.Proposal{}, ctx.Err()
		}
	}

	expired := make(chan struct{})
	timer := clock.AfterFunc(timeout, func() {
		close(expired)
	})
	defer timer.Stop()

	select {
	case p := <-m.slot:
		return p, nil
	case <-expired:
		return agent.Proposal{}, errTurnTimeout
	case <-ctx.Done():
		return agent.Proposal{}, ctx.Err()
	}
}
