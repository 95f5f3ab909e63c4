// Package dummy is a scripted plant used in tests and bench runs: inbound
// batches are queued up front, outbound batches are recorded.
package dummy

import (
	"context"
	"sync"

	"github.com/boilerworks/supervisor/pkg/mailbox"
)

type Plant struct {
	mutex   sync.Mutex
	queued  []*mailbox.Mailbox
	applied []*mailbox.Mailbox
}

func New() *Plant {
	return &Plant{}
}

// Queue appends an inbound batch for a future Poll.
func (p *Plant) Queue(mb *mailbox.Mailbox) {
	p.mutex.Lock()
	p.queued = append(p.queued, mb)
	p.mutex.Unlock()
}

// Poll returns the next queued batch, or an empty batch when the script ran
// out. An empty batch reads as a transmission failure downstream.
func (p *Plant) Poll(ctx context.Context) (*mailbox.Mailbox, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if len(p.queued) == 0 {
		return &mailbox.Mailbox{}, nil
	}
	mb := p.queued[0]
	p.queued = p.queued[1:]
	return mb, nil
}

func (p *Plant) Apply(ctx context.Context, outgoing *mailbox.Mailbox) error {
	p.mutex.Lock()
	p.applied = append(p.applied, outgoing)
	p.mutex.Unlock()
	return nil
}

// Applied returns the outbound batches recorded so far.
func (p *Plant) Applied() []*mailbox.Mailbox {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]*mailbox.Mailbox, len(p.applied))
	copy(out, p.applied)
	return out
}

func (p *Plant) Close() error {
	return nil
}
