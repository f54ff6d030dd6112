// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// delim marks the end of a wire line; CR is trimmed along with it by
// ParseEvent.
const delim byte = '\n'

var endline = []byte("\r\n")

// idleReadTimeout is the read deadline the reader loop imposes on each
// read; exceeding it without data arriving triggers a synthetic PING
// rather than treating the connection as dead.
const idleReadTimeout = 5 * time.Minute

// ircConn wraps the raw socket with a buffered reader/writer and the
// locking needed to make single-line writes atomic with respect to other
// writers on the same connection.
type ircConn struct {
	sock net.Conn
	r    *bufio.Reader

	wmu sync.Mutex
	w   *bufio.Writer

	connected bool
}

func dial(settings ConnectionSettings) (*ircConn, error) {
	addr := net.JoinHostPort(settings.Server, strconv.Itoa(settings.Port))

	d := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, &ErrIoFailure{Op: "dial", Err: err}
	}

	if settings.SSL {
		tlsConf := &tls.Config{ServerName: settings.Server, InsecureSkipVerify: !settings.VerifySSL} //nolint:gosec
		conn = tls.Client(conn, tlsConf)
	}

	return newIrcConn(conn), nil
}

func newIrcConn(conn net.Conn) *ircConn {
	return &ircConn{
		sock:      conn,
		r:         bufio.NewReader(conn),
		w:         bufio.NewWriter(conn),
		connected: true,
	}
}

// readLine blocks until a full CRLF-delimited line arrives, the idle
// timeout elapses (in which case readLine returns errIdleTimeout so the
// caller can synthesize a PING and keep reading), or the socket errors.
var errIdleTimeout = &ErrIoFailure{Op: "read", Err: errTimeoutSentinel{}}

type errTimeoutSentinel struct{}

func (errTimeoutSentinel) Error() string { return "idle read timeout" }

func (c *ircConn) readLine() (string, error) {
	_ = c.sock.SetReadDeadline(time.Now().Add(idleReadTimeout))

	line, err := c.r.ReadString(delim)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "", errIdleTimeout
		}
		return "", &ErrIoFailure{Op: "read", Err: err}
	}
	return line, nil
}

// writeRaw writes a single already-framed line plus CRLF, and flushes.
// Guarded by wmu so it is atomic with respect to other writers (the
// sender loop and the reader loop's synthetic idle PING).
func (c *ircConn) writeRaw(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := c.w.WriteString(line); err != nil {
		return &ErrIoFailure{Op: "write", Err: err}
	}
	if _, err := c.w.Write(endline); err != nil {
		return &ErrIoFailure{Op: "write", Err: err}
	}
	return c.w.Flush()
}

func (c *ircConn) close() error {
	return c.sock.Close()
}

// readLoop feeds every decoded line to the dispatcher. On idle timeout it
// injects a raw PING directly through the write path (bypassing the
// outbound queue) and keeps reading. On EOF or a hard socket error it
// returns, and the caller treats the connection as closed.
func (c *Client) readLoop(ctx context.Context) {
	defer c.debugf("closing readLoop")
	c.debugf("starting readLoop")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.conn.readLine()
		if err == errIdleTimeout {
			_ = c.conn.writeRaw("PING " + strconv.FormatInt(time.Now().Unix(), 10))
			continue
		}
		if err != nil {
			c.debugf("read error: %v", err)
			return
		}

		c.debugf("<-- %s", strings.TrimRight(line, "\r\n"))

		func() {
			defer func() {
				if r := recover(); r != nil {
					c.debugf("panic in dispatch, recovered: %v", r)
				}
			}()
			c.dispatchLine(line)
		}()
	}
}
