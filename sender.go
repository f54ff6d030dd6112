// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Sender describes the raw write method the sender loop relies on;
// *ircConn implements it, and sendLoop calls it on the client's ircConn.
type Sender interface {
	// writeRaw writes one already-framed line (without CRLF) to the wire
	// and flushes it. Implementations must make this atomic with respect
	// to other writers on the same connection.
	writeRaw(line string) error
}

// sendLoop repeatedly dequeues a line, paces it at Config.SendDelay via a
// token-bucket limiter, and writes it through the codec. A closed queue
// (dispose()) ends the loop.
func (c *Client) sendLoop(ctx context.Context) {
	defer c.debugf("closing sendLoop")
	c.debugf("starting sendLoop")

	limiter := rate.NewLimiter(rate.Every(c.Config.SendDelay), 1)
	if c.Config.SendDelay <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	for {
		line, ok := c.queue.Dequeue()
		if !ok {
			return
		}
		c.reportQueueDepth()

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		c.debugf("--> %s", line)

		if err := c.conn.writeRaw(line); err != nil {
			c.debugf("write error, dropping line: %v", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// compactionLoop periodically removes duplicate queued lines so a burst
// of repeated sends (e.g. a flapping handler re-announcing presence)
// doesn't pile up stale duplicates ahead of fresher traffic.
func (c *Client) compactionLoop(ctx context.Context) {
	if !c.Config.EnableCompaction {
		return
	}

	ticker := time.NewTicker(c.Config.CompactionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.queue.Compact()
		case <-ctx.Done():
			return
		}
	}
}
