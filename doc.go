// Copyright 2016-2017 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

// Package pircbot provides a single-connection IRC (RFC 1459/2812) client
// engine: connection lifecycle, line parsing/dispatch (with CTCP and DCC
// extraction), channel/user state tracking, and an outbound queue with
// flood control.
//
// Configuration loading, CLI packaging, logging sinks, and concrete
// handler implementations are left to callers; see cmd/ircbot-example
// for a small demonstration program.
package pircbot
