// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pircbot-go/pircbot/metrics"
)

func newTestMetrics() *metrics.Collectors {
	return metrics.NewCollectors()
}

func TestSendLoopWritesQueuedLinesInOrder(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := newTestClient("me")
	c.conn = newIrcConn(client)
	c.Config.SendDelay = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.sendLoop(ctx)

	_ = c.queue.Enqueue("PRIVMSG #a :one")
	_ = c.queue.Enqueue("PRIVMSG #a :two")

	r := bufio.NewReader(server)
	for _, want := range []string{"PRIVMSG #a :one\r\n", "PRIVMSG #a :two\r\n"} {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading from sendLoop: %v", err)
		}
		if line != want {
			t.Fatalf("sendLoop wrote %q, want %q", line, want)
		}
	}
}

func TestSendLoopStopsWhenQueueCloses(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := newTestClient("me")
	c.conn = newIrcConn(client)
	c.Config.SendDelay = 0

	done := make(chan struct{})
	go func() {
		c.sendLoop(context.Background())
		close(done)
	}()

	c.queue.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sendLoop did not return after queue.Close()")
	}
}

func TestSendLoopReportsQueueDepthMetric(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := newTestClient("me")
	c.conn = newIrcConn(client)
	c.Config.SendDelay = 0
	c.Config.Metrics = newTestMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.sendLoop(ctx)

	_ = c.queue.Enqueue("PING 1")

	r := bufio.NewReader(server)
	if _, err := r.ReadString('\n'); err != nil {
		t.Fatalf("reading from sendLoop: %v", err)
	}

	if got := testutil.ToFloat64(c.Config.Metrics.OutboundQueueDepth); got != 0 {
		t.Fatalf("OutboundQueueDepth after drain = %v, want 0", got)
	}
}

func TestCompactionLoopRunsOnTicker(t *testing.T) {
	c := newTestClient("me")
	c.Config.EnableCompaction = true
	c.Config.CompactionInterval = 5 * time.Millisecond

	_ = c.queue.Enqueue("dup")
	_ = c.queue.Enqueue("dup")
	_ = c.queue.Enqueue("dup")

	ctx, cancel := context.WithCancel(context.Background())
	go c.compactionLoop(ctx)
	defer cancel()

	deadline := time.After(time.Second)
	for {
		if c.queue.Size() == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("queue never compacted down to 1 line, size = %d", c.queue.Size())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCompactionLoopDisabledDoesNothing(t *testing.T) {
	c := newTestClient("me")
	c.Config.EnableCompaction = false
	c.Config.CompactionInterval = 5 * time.Millisecond

	_ = c.queue.Enqueue("dup")
	_ = c.queue.Enqueue("dup")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.compactionLoop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatalf("compactionLoop with EnableCompaction=false did not return immediately")
	}

	if c.queue.Size() != 2 {
		t.Fatalf("queue.Size() = %d, want 2 (compaction must not have run)", c.queue.Size())
	}
}
