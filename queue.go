// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"container/list"
	"sync"
)

// outboundQueue is a FIFO of raw lines awaiting the sender loop, with a
// priority prepend operation and an optional compaction pass. Bounded
// only by memory.
type outboundQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	list *list.List
	// closed causes a blocked dequeue to return ("", false) rather than
	// wait forever, used during dispose().
	closed bool
}

func newOutboundQueue() *outboundQueue {
	q := &outboundQueue{list: list.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends line to the tail of the queue. Returns ErrInvalidArgument
// for an empty line.
func (q *outboundQueue) Enqueue(line string) error {
	if line == "" {
		return &ErrInvalidArgument{Reason: "empty line"}
	}

	q.mu.Lock()
	q.list.PushBack(line)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// EnqueuePriority prepends line to the head of the queue, ahead of any
// non-priority lines already waiting. Returns ErrInvalidArgument for an
// empty line.
func (q *outboundQueue) EnqueuePriority(line string) error {
	if line == "" {
		return &ErrInvalidArgument{Reason: "empty line"}
	}

	q.mu.Lock()
	q.list.PushFront(line)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// Size returns a best-effort count of lines currently queued.
func (q *outboundQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// Dequeue blocks until a line is available or the queue is closed. ok is
// false only once the queue has been closed and drained.
func (q *outboundQueue) Dequeue() (line string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.list.Len() == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.list.Len() == 0 {
		return "", false
	}

	front := q.list.Front()
	q.list.Remove(front)
	return front.Value.(string), true
}

// Close wakes any blocked Dequeue with the orderly-shutdown sentinel.
func (q *outboundQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Compact scans the queue once and removes later duplicates of any line
// already seen earlier in the same pass, so the earliest occurrence of
// each unique line survives (removeLastOccurrence semantics). Compaction
// may race with concurrent Enqueue calls; a duplicate introduced mid-scan
// may survive this pass and is caught by the next one.
func (q *outboundQueue) Compact() {
	q.mu.Lock()
	defer q.mu.Unlock()

	seen := make(map[string]bool, q.list.Len())

	for e := q.list.Front(); e != nil; {
		next := e.Next()
		line := e.Value.(string)
		if seen[line] {
			q.list.Remove(e)
		} else {
			seen[line] = true
		}
		e = next
	}
}
