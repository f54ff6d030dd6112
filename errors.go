// Copyright 2016-2017 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "fmt"

// ErrInvalidArgument is returned when a caller passes a value the API
// explicitly rejects: a nil/empty outbound line, a negative delay, or a
// malformed DCC IP byte array.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return "invalid argument: " + e.Reason
}

// ErrAlreadyConnected is returned by Connect when a session is already
// live on this Client.
type ErrAlreadyConnected struct{}

func (e *ErrAlreadyConnected) Error() string {
	return "already connected"
}

// ErrNotConnected is returned by Reconnect when Connect has never
// succeeded on this Client, and by operations that require a live
// connection.
type ErrNotConnected struct{}

func (e *ErrNotConnected) Error() string {
	return "not connected"
}

// ErrIoFailure wraps a socket, TLS, or read/write failure encountered
// during the connection/registration sequence.
type ErrIoFailure struct {
	Op  string
	Err error
}

func (e *ErrIoFailure) Error() string {
	return fmt.Sprintf("io failure during %s: %s", e.Op, e.Err)
}

func (e *ErrIoFailure) Unwrap() error {
	return e.Err
}

// ErrNickAlreadyInUse is returned during registration when the server
// rejects the requested nick and automatic nick renaming is disabled.
type ErrNickAlreadyInUse struct {
	Nick string
}

func (e *ErrNickAlreadyInUse) Error() string {
	return "nick already in use: " + e.Nick
}

// ErrIrc wraps a non-recoverable numeric response (4xx/5xx) received
// from the server during registration.
type ErrIrc struct {
	Line string
}

func (e *ErrIrc) Error() string {
	return "irc error: " + e.Line
}

// ErrInvalidConfig is returned by Connect (via Config.isValid) when the configuration
// is missing required fields or has fields out of range.
type ErrInvalidConfig struct {
	Conf   Config
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return "invalid configuration: " + e.Reason
}

// ErrInvalidTarget is returned by Commands helpers when the destination
// nick/channel fails basic IRC syntax validation.
type ErrInvalidTarget struct {
	Target string
}

func (e *ErrInvalidTarget) Error() string {
	return "invalid target: " + e.Target
}
