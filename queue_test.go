// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func TestOutboundQueueFIFOOrder(t *testing.T) {
	q := newOutboundQueue()
	_ = q.Enqueue("one")
	_ = q.Enqueue("two")
	_ = q.Enqueue("three")

	for _, want := range []string{"one", "two", "three"} {
		got, ok := q.Dequeue()
		if !ok || got != want {
			t.Fatalf("Dequeue() = (%q, %t), want (%q, true)", got, ok, want)
		}
	}
}

func TestOutboundQueuePriorityPrepends(t *testing.T) {
	q := newOutboundQueue()
	_ = q.Enqueue("normal")
	_ = q.EnqueuePriority("urgent")

	got, ok := q.Dequeue()
	if !ok || got != "urgent" {
		t.Fatalf("Dequeue() = (%q, %t), want (%q, true)", got, ok, "urgent")
	}
}

func TestOutboundQueueRejectsEmptyLine(t *testing.T) {
	q := newOutboundQueue()
	if err := q.Enqueue(""); err == nil {
		t.Fatalf("Enqueue(\"\") returned nil error")
	}
	if err := q.EnqueuePriority(""); err == nil {
		t.Fatalf("EnqueuePriority(\"\") returned nil error")
	}
}

func TestOutboundQueueCloseDrainsThenFails(t *testing.T) {
	q := newOutboundQueue()
	_ = q.Enqueue("last")
	q.Close()

	got, ok := q.Dequeue()
	if !ok || got != "last" {
		t.Fatalf("Dequeue() after Close() = (%q, %t), want the queued line still delivered", got, ok)
	}

	_, ok = q.Dequeue()
	if ok {
		t.Fatalf("Dequeue() on a closed, drained queue returned ok=true")
	}
}

func TestOutboundQueueCompactKeepsEarliestOccurrence(t *testing.T) {
	q := newOutboundQueue()
	_ = q.Enqueue("PRIVMSG #a :hi")
	_ = q.Enqueue("PING 123")
	_ = q.Enqueue("PRIVMSG #a :hi")
	_ = q.Enqueue("PRIVMSG #a :hi")

	q.Compact()

	if got := q.Size(); got != 2 {
		t.Fatalf("Size() after Compact() = %d, want 2", got)
	}

	first, _ := q.Dequeue()
	second, _ := q.Dequeue()
	if first != "PRIVMSG #a :hi" || second != "PING 123" {
		t.Fatalf("Compact() reordered or dropped the wrong lines: got %q, %q", first, second)
	}
}

func TestOutboundQueueCompactIsIdempotent(t *testing.T) {
	q := newOutboundQueue()
	_ = q.Enqueue("a")
	_ = q.Enqueue("a")

	q.Compact()
	sizeAfterFirst := q.Size()
	q.Compact()

	if q.Size() != sizeAfterFirst {
		t.Fatalf("Compact() is not idempotent: size went from %d to %d", sizeAfterFirst, q.Size())
	}
}
