// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Capability is a bitmask a Handler advertises to select which categories
// of dispatched events it wants to see.
type Capability uint8

const (
	// CapServerComm covers connection lifecycle and raw numeric traffic:
	// INITIALIZED, CONNECTED, DISCONNECTED, CLOSED, PING/PONG, and
	// generic server-response events.
	CapServerComm Capability = 1 << iota
	// CapChat covers conversational traffic: messages, joins, parts,
	// nick changes, quits, topics, invites, and granular mode events.
	CapChat
	// CapAdministrative covers privileged state changes: kicks and
	// channel mode grants/revocations (op, voice, ban, key, limit).
	CapAdministrative
	// CapFull receives every event category.
	CapFull = CapServerComm | CapChat | CapAdministrative
)

// categoryFor classifies an event's command into the capability bucket(s)
// a Handler must subscribe to in order to receive it.
func categoryFor(cmd string) Capability {
	switch cmd {
	case INITIALIZED, CONNECTED, DISCONNECTED, CLOSED, PING, PONG, EvServerResponse, ERROR:
		return CapServerComm
	case EvMsgChannel, EvMsgPrivate, NOTICE, JOIN, PART, NICK, QUIT, TOPIC, INVITE,
		EvChannelInfo, EvUserList, EvTopic, UNKNOWN,
		EvModeUser, EvModeChannel:
		return CapChat
	case KICK, EvOp, EvDeop, EvVoice, EvDeVoice, EvSetChannelKey, EvRemoveChannelKey,
		EvSetChannelLimit, EvRemoveChannelLimit, EvSetChannelBan, EvRemoveChannelBan,
		EvSetTopicProtection, EvRemoveTopicProtection, EvSetNoExternalMessages,
		EvRemoveNoExternalMessages, EvSetInviteOnly, EvRemoveInviteOnly,
		EvSetModerated, EvRemoveModerated, EvSetPrivate, EvRemovePrivate,
		EvSetSecret, EvRemoveSecret:
		return CapChat | CapAdministrative
	default:
		return CapServerComm | CapChat
	}
}

// Handler is the interface registered handlers implement to receive
// dispatched events.
type Handler interface {
	Handle(c *Client, e *Event)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(c *Client, e *Event)

// Handle calls f(c, e).
func (f HandlerFunc) Handle(c *Client, e *Event) {
	f(c, e)
}

type registeredHandler struct {
	cuid     string
	caps     Capability
	internal bool
	handler  Handler
}

// Caller maintains the ordered handler registry and performs dispatch.
// Unlike a command-keyed registry, handlers subscribe by capability and
// are invoked, in registration order, for every event whose category
// intersects their capability mask. CTCP requests (VERSION/PING/TIME/
// FINGER) are answered by the separate CTCP handler table, not by a
// Handler registered here.
type Caller struct {
	mu       sync.RWMutex
	parent   *Client
	handlers []*registeredHandler
	debug    *log.Logger
}

func newCaller(parent *Client, debugOut *log.Logger) *Caller {
	return &Caller{parent: parent, debug: debugOut}
}

// Len returns the number of registered external (non-internal) handlers.
func (c *Caller) Len() (n int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, h := range c.handlers {
		if !h.internal {
			n++
		}
	}
	return n
}

func (c *Caller) String() string {
	return fmt.Sprintf("<Caller handlers:%d>", len(c.handlers))
}

// AddHandler registers handler for every event category included in caps.
// cuid identifies the registration for later removal with Remove.
func (c *Caller) AddHandler(caps Capability, handler Handler) (cuid string) {
	return c.register(false, caps, handler)
}

// Add registers a plain function handler. See AddHandler.
func (c *Caller) Add(caps Capability, fn func(c *Client, e *Event)) (cuid string) {
	return c.register(false, caps, HandlerFunc(fn))
}

func (c *Caller) registerInternal(caps Capability, fn func(c *Client, e *Event)) (cuid string) {
	return c.register(true, caps, HandlerFunc(fn))
}

func (c *Caller) register(internal bool, caps Capability, handler Handler) (cuid string) {
	cuid = uuid.NewString()

	c.mu.Lock()
	c.handlers = append(c.handlers, &registeredHandler{
		cuid:     cuid,
		caps:     caps,
		internal: internal,
		handler:  handler,
	})
	c.mu.Unlock()

	if c.debug != nil {
		_, file, line, _ := runtime.Caller(2)
		c.debug.Printf("registered handler %s caps=%b internal=%t %s:%d", cuid, caps, internal, file, line)
	}

	return cuid
}

// Remove unregisters the handler identified by cuid. success is false if
// no such handler was registered.
func (c *Caller) Remove(cuid string) (success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, h := range c.handlers {
		if h.cuid == cuid {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll removes every external (non-internal) handler.
func (c *Caller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.handlers[:0]
	for _, h := range c.handlers {
		if h.internal {
			kept = append(kept, h)
		}
	}
	c.handlers = kept
}

// dispatch delivers e, in registration order, to every handler whose
// capability mask intersects e's category. Execution is synchronous: the
// spec requires handlers invoked after a dispatch returns to observe
// registry mutations in server-delivered order, which a concurrent
// fan-out cannot guarantee.
func (c *Caller) dispatch(client *Client, e *Event) {
	cat := categoryFor(e.Command)

	c.mu.RLock()
	stack := make([]*registeredHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		if h.caps&cat != 0 {
			stack = append(stack, h)
		}
	}
	c.mu.RUnlock()

	for _, h := range stack {
		c.invoke(client, e, h)
	}
}

func (c *Caller) invoke(client *Client, e *Event, h *registeredHandler) {
	if client.Config.RecoverFunc != nil {
		defer recoverHandlerPanic(client, e, h.cuid, 3)
	}
	h.handler.Handle(client, e)
}

// recoverHandlerPanic recovers a panic inside a handler and routes it to
// Config.RecoverFunc so a single faulty handler cannot take down the
// reader loop.
func recoverHandlerPanic(client *Client, event *Event, id string, skip int) {
	perr := recover()
	if perr == nil {
		return
	}

	var file, function string
	var line int

	var pcs [10]uintptr
	frames := runtime.CallersFrames(pcs[:runtime.Callers(skip, pcs[:])])
	if frame, _ := frames.Next(); frame.PC != 0 {
		file = frame.File
		line = frame.Line
		function = frame.Function
	}

	err := &HandlerError{
		Event: *event,
		ID:    id,
		File:  file,
		Line:  line,
		Func:  function,
		Panic: perr,
		Stack: debug.Stack(),
	}

	client.Config.RecoverFunc(client, err)
}

// HandlerError describes a panic recovered from inside a Handler.
type HandlerError struct {
	Event Event
	ID    string
	File  string
	Line  int
	Func  string
	Panic interface{}
	Stack []byte
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("panic during handler [%s] execution in %s:%d: %v", e.ID, e.File, e.Line, e.Panic)
}

func (e *HandlerError) String() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Panic, string(e.Stack))
}

// DefaultRecoverHandler is a ready-made Config.RecoverFunc that logs the
// panic and stack trace to the client's debug logger when Config.Verbose
// is set; otherwise it logs nothing.
func DefaultRecoverHandler(client *Client, err *HandlerError) {
	client.debugf("%s", err.Error())
	client.debugf("%s", err.String())
}
