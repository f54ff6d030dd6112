// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"io"
	"io/ioutil"
	"net"
	"time"

	"github.com/pircbot-go/pircbot/metrics"
)

// ConnectionSettings is the immutable-per-connection address/transport
// configuration: server host, port, optional password, and TLS options.
// It is cloned at the start of every connect() so a live session is
// never affected by later mutation of the caller's Config.
type ConnectionSettings struct {
	Server     string
	Port       int
	Password   string
	SSL        bool
	VerifySSL  bool
}

// clone returns a value copy, safe to stash away for Reconnect.
func (s ConnectionSettings) clone() ConnectionSettings { return s }

// Identity holds the mutable-before-connect, read-only-after-registration
// identity fields: the desired and current nick, username, real name, and
// the CTCP reply strings this client serves.
type Identity struct {
	// Nick is the desired nickname; the current, possibly collision-
	// retried nick is tracked separately once connected (Client.GetNick).
	Nick     string
	UserName string
	RealName string
	Version  string
	Finger   string
}

// Config contains the configuration options for an IRC client. Only the
// fields documented here as usable post-connect may be changed while a
// session is live; everything else takes effect on the next connect().
type Config struct {
	ConnectionSettings
	Identity

	// Verbose enables logging every raw line via Debug.
	Verbose bool

	// AutoNickChange enables the Foo -> Foo2 -> Foo3 retry behavior on
	// ERR_NICKNAMEINUSE during registration. If false, a collision fails
	// the connection attempt with ErrNickAlreadyInUse.
	AutoNickChange bool

	// Channels are auto-joined once registration completes.
	Channels []string

	// RecoverFunc is invoked when a handler panics; if nil, a panic raised
	// while the reader loop dispatches a line is recovered by the reader
	// loop, logged via the debug logger, and the loop keeps reading.
	RecoverFunc func(c *Client, e *HandlerError)

	// Debug receives raw protocol trace lines. Defaults to ioutil.Discard.
	Debug io.Writer
	// Out receives Event.Pretty() renderings of notable traffic.
	Out io.Writer

	// SendDelay is the sender loop's fixed inter-message pacing interval.
	// Defaults to 1 second; must be non-negative.
	SendDelay time.Duration

	// EnableCompaction turns on the periodic outbound-queue dedup pass.
	EnableCompaction bool
	// CompactionInterval is how often the compaction pass runs. Defaults
	// to 1 second.
	CompactionInterval time.Duration

	// DccPorts, if non-empty, restricts outgoing DCC CHAT listeners to
	// this port list. Empty means any free port.
	DccPorts []int
	// DccLocalAddress overrides the outward-facing IP advertised in
	// outgoing DCC CHAT offers. If nil, the listener's own address is used
	// when it is bound to a specific IP; otherwise the local address of a
	// UDP socket routed toward 8.8.8.8, or 127.0.0.1 if that fails.
	DccLocalAddress net.IP
	// DccAcceptTimeout bounds how long an outgoing DCC CHAT listener
	// waits for the peer to connect.
	DccAcceptTimeout time.Duration

	// Metrics, if non-nil, receives live updates to queue depth, dispatch
	// counts, DCC session counts, and connection state. Registering it
	// against a prometheus.Registerer is the caller's responsibility.
	Metrics *metrics.Collectors
}

func (c *Config) defaults() {
	if c.Debug == nil {
		c.Debug = ioutil.Discard
	}
	if c.Out == nil {
		c.Out = ioutil.Discard
	}
	if c.SendDelay == 0 {
		c.SendDelay = time.Second
	}
	if c.CompactionInterval == 0 {
		c.CompactionInterval = time.Second
	}
	if c.DccAcceptTimeout == 0 {
		c.DccAcceptTimeout = 30 * time.Second
	}
	if c.Version == "" {
		c.Version = "pircbot"
	}
	if c.Finger == "" {
		c.Finger = "pircbot user"
	}
}

// isValid reports whether the configuration has enough information to
// attempt a connection.
func (c *Config) isValid() error {
	if c.Server == "" {
		return &ErrInvalidConfig{Conf: *c, Reason: "invalid server"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ErrInvalidConfig{Conf: *c, Reason: "invalid port"}
	}
	if !IsValidNick(c.Nick) {
		return &ErrInvalidConfig{Conf: *c, Reason: "invalid nick"}
	}
	if !IsValidUser(c.UserName) {
		return &ErrInvalidConfig{Conf: *c, Reason: "invalid username"}
	}
	if c.SendDelay < 0 {
		return &ErrInvalidArgument{Reason: "negative send delay"}
	}
	return nil
}
