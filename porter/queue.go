// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package porter

import (
	"context"
	"sync"

	"git.sr.ht/~wocky/xmpp/stanza"
)

// sendItem is one FIFO send-queue entry: the stanza to serialize, the
// context under which it was enqueued, and the channel its Result will be
// delivered on.
type sendItem struct {
	ctx    context.Context
	stanza *stanza.Stanza
	result chan Result
}

// sendQueue is an unbounded FIFO blocking queue, built the same way
// xmlcodec's pushSrc is: a mutex-guarded slice plus a condition variable,
// so push never blocks and pop parks the single send goroutine instead of
// spinning.
type sendQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*sendItem
	closed bool
}

func newSendQueue() *sendQueue {
	q := &sendQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *sendQueue) push(it *sendItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, it)
	q.cond.Signal()
	return true
}

// pop blocks until an item is available or the queue is closed.
func (q *sendQueue) pop() (*sendItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}

// drain empties the queue, completing every remaining item's future with
// err, and marks the queue closed so future pushes are rejected.
func (q *sendQueue) drain(err error) {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	for _, it := range items {
		it.result <- Result{Err: err}
		close(it.result)
	}
}
