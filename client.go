// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
)

// Client holds all of the state necessary to run a single IRC session:
// configuration, the live connection (if any), the channel/user
// registry, the handler and CTCP dispatch tables, the outbound queue,
// and the DCC manager.
type Client struct {
	Config Config

	Handlers *Caller
	CTCP     *CTCP
	Cmd      *Commands
	DCC      *DCCManager

	state *registry
	queue *outboundQueue

	mu   sync.RWMutex
	conn *ircConn
	stop context.CancelFunc

	debug *log.Logger

	currentNick atomic.Value // string

	lastSettings ConnectionSettings
	haveSettings bool

	nickRetries int
}

// New constructs a Client from config. The client is not connected until
// Connect is called.
func New(config Config) *Client {
	config.defaults()

	c := &Client{
		Config: config,
		queue:  newOutboundQueue(),
		debug:  log.New(config.Debug, "pircbot: ", log.LstdFlags),
	}
	c.currentNick.Store(config.Nick)

	c.state = newRegistry(c)
	c.Handlers = newCaller(c, c.debug)
	c.CTCP = newCTCP()
	c.Cmd = &Commands{client: c}
	c.DCC = newDCCManager(c)

	c.Handlers.registerInternal(CapFull, func(client *Client, e *Event) {
		if pretty, ok := e.Pretty(); ok {
			fmt.Fprintln(client.Config.Out, pretty)
		}
	})

	return c
}

// emit routes e through the handler registry, in registration order,
// synchronously.
func (c *Client) emit(e *Event) {
	if m := c.Config.Metrics; m != nil {
		m.DispatchEventsTotal.WithLabelValues(e.Command).Inc()
	}
	c.Handlers.dispatch(c, e)
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.Config.Verbose {
		c.debug.Printf(format, args...)
	}
}

// GetNick returns the currently registered nick.
func (c *Client) GetNick() string {
	return c.currentNick.Load().(string)
}

func (c *Client) setCurrentNick(nick string) {
	c.currentNick.Store(nick)
}

// isMe reports whether nick refers to this client's current identity.
func (c *Client) isMe(nick string) bool {
	return ToRFC1459(nick) == ToRFC1459(c.GetNick())
}

// IsConnected reports whether a session is currently live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// ChannelList returns a snapshot of the channels this client is
// currently joined to.
func (c *Client) ChannelList() []string {
	return c.state.channelNames()
}

// LookupChannel returns the tracked Channel by name, or nil.
func (c *Client) LookupChannel(name string) *Channel {
	return c.state.lookupChannel(name)
}

// send enqueues a raw wire-format line for the sender loop.
func (c *Client) send(e *Event) error {
	err := c.queue.Enqueue(e.String())
	c.reportQueueDepth()
	return err
}

// sendPriority prepends a raw wire-format line ahead of queued traffic.
func (c *Client) sendPriority(e *Event) error {
	err := c.queue.EnqueuePriority(e.String())
	c.reportQueueDepth()
	return err
}

func (c *Client) reportQueueDepth() {
	if m := c.Config.Metrics; m != nil {
		m.OutboundQueueDepth.Set(float64(c.queue.Size()))
	}
}

// writeRawNow bypasses the outbound queue entirely; Disconnect uses it so
// QUIT is written immediately.
func (c *Client) writeRawNow(e *Event) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return &ErrNotConnected{}
	}
	return conn.writeRaw(e.String())
}

// Connect dials settings, performs the registration handshake, and --
// once registered -- starts the reader, sender, and (if enabled)
// compaction loops. It returns once registration completes or fails;
// the loops then run until Disconnect/Dispose or a fatal I/O error.
func (c *Client) Connect(settings ConnectionSettings) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return &ErrAlreadyConnected{}
	}
	c.mu.Unlock()

	if err := c.Config.isValid(); err != nil {
		return err
	}

	cloned := settings.clone()

	c.state.reset()
	c.nickRetries = 0
	c.currentNick.Store(c.Config.Nick)

	conn, err := dial(cloned)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.register(cloned); err != nil {
		c.mu.Lock()
		_ = c.conn.close()
		c.conn = nil
		c.mu.Unlock()
		return err
	}

	c.lastSettings = cloned
	c.haveSettings = true

	if m := c.Config.Metrics; m != nil {
		m.ConnectionUp.Set(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.stop = cancel

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.readLoop(ctx)

		c.mu.Lock()
		wasDisposed := c.conn == nil
		if c.conn != nil {
			_ = c.conn.close()
			c.conn = nil
		}
		c.mu.Unlock()

		cancel()
		c.queue.Close()

		if m := c.Config.Metrics; m != nil {
			m.ConnectionUp.Set(0)
		}

		if !wasDisposed {
			c.emit(&Event{Command: DISCONNECTED})
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.sendLoop(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.compactionLoop(ctx)
	}()

	c.emit(&Event{Command: CONNECTED, Params: []string{cloned.Server}})

	for _, ch := range c.Config.Channels {
		_ = c.Cmd.Join(ch)
	}

	return nil
}

// register performs the PASS/NICK/USER handshake and reads lines
// directly (bypassing the not-yet-running dispatcher loop) until
// registration completes or fails, per the connection lifecycle.
func (c *Client) register(settings ConnectionSettings) error {
	if settings.Password != "" {
		if err := c.conn.writeRaw((&Event{Command: PASS, Params: []string{settings.Password}}).String()); err != nil {
			return err
		}
	}
	if err := c.conn.writeRaw((&Event{Command: NICK, Params: []string{c.Config.Nick}}).String()); err != nil {
		return err
	}
	userEvent := &Event{Command: USER, Params: []string{c.Config.UserName, "8", "*"}, Trailing: c.Config.RealName}
	if err := c.conn.writeRaw(userEvent.String()); err != nil {
		return err
	}

	baseNick := c.Config.Nick
	lastNick := baseNick

	for {
		line, err := c.conn.readLine()
		if err == errIdleTimeout {
			continue
		}
		if err != nil {
			return err
		}

		e := ParseEvent(line)
		if e == nil {
			continue
		}

		switch e.Command {
		case "004":
			c.setCurrentNick(lastNick)
			return nil
		case ERR_NICKNAMEINUSE, ERR_NICKCOLLISION:
			if !c.Config.AutoNickChange {
				return &ErrNickAlreadyInUse{Nick: lastNick}
			}
			c.nickRetries++
			retryNick := baseNick + strconv.Itoa(c.nickRetries+1)
			if err := c.conn.writeRaw((&Event{Command: NICK, Params: []string{retryNick}}).String()); err != nil {
				return err
			}
			lastNick = retryNick
		case ERR_TARGETTOOFAST:
			// ignored per the registration rules
		default:
			if numericIsFatalDuringRegistration(e.Command) {
				return &ErrIrc{Line: line}
			}
		}
	}
}

// Reconnect re-runs Connect using the settings last passed to Connect.
// Fails with ErrNotConnected if Connect has never succeeded on this
// Client.
func (c *Client) Reconnect() error {
	if !c.haveSettings {
		return &ErrNotConnected{}
	}
	return c.Connect(c.lastSettings)
}

// Disconnect sends QUIT with reason and relies on the server to close
// the connection, which the reader loop then observes as EOF.
func (c *Client) Disconnect(reason string) error {
	return c.writeRawNow(&Event{Command: QUIT, Trailing: reason})
}

// Dispose interrupts the sender and tears down the reader without
// emitting a disconnect event.
func (c *Client) Dispose() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if c.stop != nil {
		c.stop()
	}
	c.queue.Close()
	if conn != nil {
		_ = conn.close()
	}
}
