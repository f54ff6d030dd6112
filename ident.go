// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

const identPort = 113
const identIdleTimeout = 60 * time.Second

// StartIdentServer opens port 113, answers one RFC 1413 query with the
// client's configured username, and shuts down after one reply or 60
// seconds of inactivity. A bind failure (port in use, unprivileged
// process) is returned to the caller; the main connection proceeds
// regardless of whether the ident server could start.
func (c *Client) StartIdentServer() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", identPort))
	if err != nil {
		return &ErrIoFailure{Op: "ident-listen", Err: err}
	}

	go c.identLoop(ln)
	return nil
}

func (c *Client) identLoop(ln net.Listener) {
	defer ln.Close()

	type accepted struct {
		conn net.Conn
		err  error
	}
	ch := make(chan accepted, 1)

	go func() {
		conn, err := ln.Accept()
		ch <- accepted{conn, err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return
		}
		c.answerIdent(a.conn)
	case <-time.After(identIdleTimeout):
	}
}

func (c *Client) answerIdent(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(identIdleTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}

	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return
	}
	clientPort := strings.TrimSpace(parts[0])
	serverPort := strings.TrimSpace(parts[1])

	reply := fmt.Sprintf("%s, %s : USERID : UNIX : %s\r\n", clientPort, serverPort, c.Config.UserName)
	_, _ = conn.Write([]byte(reply))
}
