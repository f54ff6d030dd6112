// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
)

// ctcpDelim is the delimiter used for CTCP formatted events/messages.
const ctcpDelim byte = 0x01

// CTCP command tags this client recognizes or produces.
const (
	CTCP_PING    = "PING"
	CTCP_PONG    = "PONG"
	CTCP_VERSION = "VERSION"
	CTCP_TIME    = "TIME"
	CTCP_FINGER  = "FINGER"
	CTCP_ACTION  = "ACTION"
	CTCP_DCC     = "DCC"
	CTCP_ERRMSG  = "ERRMSG"
)

// CTCPEvent is the decoded form of a CTCP request or reply extracted from
// a PRIVMSG/NOTICE trailing parameter.
type CTCPEvent struct {
	// Source is the author of the CTCP event.
	Source *Source
	// Command is the CTCP verb, e.g. PING, TIME, VERSION, DCC.
	Command string
	// Text is the raw arguments following the command.
	Text string
	// Reply is true if this is a NOTICE (a reply to an earlier request).
	Reply bool
}

// decodeCTCP decodes e as a CTCP event. Returns nil if e does not carry a
// well-formed CTCP payload.
func decodeCTCP(e *Event) *CTCPEvent {
	// http://www.irchelp.org/protocol/ctcpspec.html

	if len(e.Params) != 1 || len(e.Trailing) < 3 {
		return nil
	}

	if (e.Command != PRIVMSG && e.Command != NOTICE) || !IsValidNick(e.Params[0]) {
		return nil
	}

	if e.Trailing[0] != ctcpDelim || e.Trailing[len(e.Trailing)-1] != ctcpDelim {
		return nil
	}

	text := e.Trailing[1 : len(e.Trailing)-1]

	s := strings.IndexByte(text, eventSpace)

	if s < 0 {
		if !isCTCPTag(text) {
			return nil
		}

		return &CTCPEvent{
			Source:  e.Source,
			Command: text,
			Reply:   e.Command == NOTICE,
		}
	}

	if !isCTCPTag(text[0:s]) {
		return nil
	}

	return &CTCPEvent{
		Source:  e.Source,
		Command: text[0:s],
		Text:    text[s+1:],
		Reply:   e.Command == NOTICE,
	}
}

// isCTCPTag reports whether tag consists only of A-Z/0-9, the characters
// a valid CTCP command tag is permitted to use.
func isCTCPTag(tag string) bool {
	if len(tag) == 0 {
		return false
	}
	for i := 0; i < len(tag); i++ {
		if (tag[i] < 0x41 || tag[i] > 0x5A) && (tag[i] < 0x30 || tag[i] > 0x39) {
			return false
		}
	}
	return true
}

// encodeCTCPRaw wraps cmd/text in CTCP delimiters, ready for use as a
// PRIVMSG/NOTICE trailing parameter.
func encodeCTCPRaw(cmd, text string) (out string) {
	if len(cmd) <= 0 {
		return ""
	}

	out = string(ctcpDelim) + cmd

	if len(text) > 0 {
		out += string(eventSpace) + text
	}

	return out + string(ctcpDelim)
}

// CTCPHandler is the function signature for a CTCP command handler.
type CTCPHandler func(client *Client, ctcp CTCPEvent)

// CTCP manages the registration and dispatch of CTCP command handlers.
// A set of default handlers (VERSION/PING/TIME/FINGER/DCC) is installed by
// newCTCP; Clear removes one of them, while ClearAll reinstalls them.
type CTCP struct {
	disableDefault bool
	mu             sync.RWMutex
	handlers       map[string]CTCPHandler
}

func newCTCP() *CTCP {
	c := &CTCP{handlers: map[string]CTCPHandler{}}
	c.addDefaultHandlers()
	return c
}

// call executes the wildcard handler if set, then the handler registered
// for the CTCP event's command; if no handler is registered for that
// command, it replies ERRMSG to the sender of a request instead.
func (c *CTCP) call(client *Client, event *CTCPEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if h, ok := c.handlers["*"]; ok {
		h(client, *event)
	}

	h, ok := c.handlers[event.Command]
	if !ok {
		if event.Source != nil && IsValidNick(event.Source.Name) && !event.Reply {
			_ = client.Cmd.SendCTCPReply(event.Source.Name, CTCP_ERRMSG, "that is an unknown CTCP query")
		}
		return
	}

	h(client, *event)
}

func (c *CTCP) parseCMD(cmd string) string {
	if cmd == "*" {
		return "*"
	}

	cmd = strings.ToUpper(cmd)
	if !isCTCPTag(cmd) {
		return ""
	}

	return cmd
}

// Set registers handler for cmd, replacing any existing handler for that
// tag. Use "*" for a handler that runs for every CTCP command, before any
// specific handler.
func (c *CTCP) Set(cmd string, handler func(client *Client, ctcp CTCPEvent)) {
	if cmd = c.parseCMD(cmd); cmd == "" {
		return
	}

	c.mu.Lock()
	c.handlers[cmd] = handler
	c.mu.Unlock()
}

// SetBg is like Set, but the handler runs in its own goroutine.
func (c *CTCP) SetBg(cmd string, handler func(client *Client, ctcp CTCPEvent)) {
	c.Set(cmd, func(client *Client, ctcp CTCPEvent) {
		go handler(client, ctcp)
	})
}

// Clear removes the handler registered for cmd, if any.
func (c *CTCP) Clear(cmd string) {
	if cmd = c.parseCMD(cmd); cmd == "" {
		return
	}

	c.mu.Lock()
	delete(c.handlers, cmd)
	c.mu.Unlock()
}

// ClearAll removes every handler, including the defaults, then
// reinstalls the defaults unless disableDefault is set.
func (c *CTCP) ClearAll() {
	c.mu.Lock()
	c.handlers = map[string]CTCPHandler{}
	c.mu.Unlock()

	c.addDefaultHandlers()
}

func (c *CTCP) addDefaultHandlers() {
	if c.disableDefault {
		return
	}

	c.SetBg(CTCP_PING, handleCTCPPing)
	c.SetBg(CTCP_VERSION, handleCTCPVersion)
	c.SetBg(CTCP_TIME, handleCTCPTime)
	c.SetBg(CTCP_FINGER, handleCTCPFinger)
	c.Set(CTCP_DCC, handleCTCPDCC)
}

// handleCTCPPing echoes the token back unless this is itself a reply.
func handleCTCPPing(client *Client, ctcp CTCPEvent) {
	if ctcp.Reply || ctcp.Source == nil {
		return
	}
	_ = client.Cmd.SendCTCPReply(ctcp.Source.Name, CTCP_PING, ctcp.Text)
}

// handleCTCPVersion replies with the configured version string.
func handleCTCPVersion(client *Client, ctcp CTCPEvent) {
	if ctcp.Source == nil {
		return
	}
	_ = client.Cmd.SendCTCPReply(ctcp.Source.Name, CTCP_VERSION, client.Config.Version)
}

// handleCTCPTime replies with the local time, RFC1123Z formatted.
func handleCTCPTime(client *Client, ctcp CTCPEvent) {
	if ctcp.Source == nil {
		return
	}
	if ctcp.Reply {
		// Peer's own clock string; normalize via dateparse for debug
		// logging rather than discarding it.
		if ts, err := dateparse.ParseAny(strings.TrimPrefix(ctcp.Text, ":")); err == nil {
			client.debugf("peer %s reports time %s", ctcp.Source.Name, ts.Format(time.RFC1123Z))
		}
		return
	}
	_ = client.Cmd.SendCTCPReply(ctcp.Source.Name, CTCP_TIME, time.Now().Format(time.RFC1123Z))
}

// handleCTCPFinger replies with the configured finger string.
func handleCTCPFinger(client *Client, ctcp CTCPEvent) {
	if ctcp.Source == nil {
		return
	}
	_ = client.Cmd.SendCTCPReply(ctcp.Source.Name, CTCP_FINGER, client.Config.Finger)
}

// handleCTCPDCC forwards a DCC request embedded in a CTCP payload to the
// DCC manager.
func handleCTCPDCC(client *Client, ctcp CTCPEvent) {
	if ctcp.Source == nil {
		return
	}
	client.DCC.handle(ctcp.Source, ctcp.Text)
}
