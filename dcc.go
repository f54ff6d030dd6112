// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DCCDirection distinguishes an inbound transfer offered to us from one
// we initiated.
type DCCDirection int

const (
	DCCIncoming DCCDirection = iota
	DCCOutgoing
)

// DCCTransfer is a negotiated (or negotiating) DCC session: a file
// transfer or a chat. The core only tracks the negotiation envelope; the
// byte-level transfer loop is left to the caller.
type DCCTransfer struct {
	// ID opaquely identifies this session for logging/metrics; it has no
	// wire representation.
	ID        string
	Direction DCCDirection
	PeerNick  string
	PeerLogin string
	PeerHost  string

	// Filename is empty for a chat session.
	Filename string
	IsChat   bool

	Addr     string
	Port     int
	Size     int64
	Progress int64

	AwaitingResume bool
}

// key used for the awaiting-resume list: (nick, port).
type resumeKey struct {
	nick string
	port int
}

// DCCManager negotiates the SEND/RESUME/ACCEPT/CHAT verbs carried inside
// CTCP DCC requests, and drives outgoing DCC CHAT offers.
type DCCManager struct {
	client *Client

	mu      sync.Mutex
	waiting map[resumeKey]*DCCTransfer

	// Incoming is called with every negotiated incoming transfer/chat
	// request. Accepting and receiving the transfer is left to the caller.
	Incoming func(t *DCCTransfer)
	// ChatRequest is called when a peer offers a DCC CHAT.
	ChatRequest func(t *DCCTransfer)
}

func newDCCManager(client *Client) *DCCManager {
	return &DCCManager{client: client, waiting: make(map[resumeKey]*DCCTransfer)}
}

// handle parses the text following CTCP DCC and dispatches by verb.
func (m *DCCManager) handle(source *Source, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	switch verb {
	case "SEND":
		m.handleSend(source, args)
	case "RESUME":
		m.handleResume(source, args)
	case "ACCEPT":
		m.handleAccept(source, args)
	case "CHAT":
		m.handleChat(source, args)
	}
}

// handleSend parses "SEND nick login host filename addr port [size]".
func (m *DCCManager) handleSend(source *Source, args []string) {
	if len(args) < 6 {
		return
	}

	filename := args[3]
	port, _ := strconv.Atoi(args[5])

	size := int64(-1)
	if len(args) >= 7 {
		if n, err := strconv.ParseInt(args[6], 10, 64); err == nil {
			size = n
		}
	}

	t := &DCCTransfer{
		ID:        uuid.NewString(),
		Direction: DCCIncoming,
		PeerNick:  args[0],
		PeerLogin: args[1],
		PeerHost:  args[2],
		Filename:  filename,
		Addr:      args[4],
		Port:      port,
		Size:      size,
	}
	if source != nil {
		t.PeerNick = source.Name
	}

	if m.Incoming != nil {
		m.Incoming(t)
	}
}

// handleResume parses "RESUME _ port progress": finds a matching
// awaiting-resume transfer, sets its progress, removes it from the
// waiting list, and replies with the literal DCC ACCEPT quirk.
func (m *DCCManager) handleResume(source *Source, args []string) {
	if len(args) < 3 || source == nil {
		return
	}

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	progress, _ := strconv.ParseInt(args[2], 10, 64)

	key := resumeKey{nick: ToRFC1459(source.Name), port: port}

	m.mu.Lock()
	t, ok := m.waiting[key]
	if ok {
		t.Progress = progress
		delete(m.waiting, key)
	}
	n := len(m.waiting)
	m.mu.Unlock()
	if ok {
		m.reportActive(n)
	}

	if !ok {
		return
	}

	// The reply always names "file.ext" regardless of the transfer's
	// actual filename; this is a literal quirk of the source this was
	// ported from, preserved rather than "fixed".
	reply := fmt.Sprintf("ACCEPT file.ext %d %d", port, progress)
	_ = m.client.Cmd.SendCTCP(source.Name, "DCC", reply)
}

// handleAccept parses "ACCEPT _ port progress": finds and removes the
// matching awaiting-resume entry, then hands the transfer, with Progress
// set, to Incoming so the caller can resume the receive.
func (m *DCCManager) handleAccept(source *Source, args []string) {
	if len(args) < 3 || source == nil {
		return
	}

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	progress, _ := strconv.ParseInt(args[2], 10, 64)

	key := resumeKey{nick: ToRFC1459(source.Name), port: port}

	m.mu.Lock()
	t, ok := m.waiting[key]
	if ok {
		delete(m.waiting, key)
	}
	n := len(m.waiting)
	m.mu.Unlock()
	if ok {
		m.reportActive(n)
	}

	if !ok {
		return
	}

	t.Progress = progress
	if m.Incoming != nil {
		m.Incoming(t)
	}
}

// handleChat parses "CHAT _ addr port" and surfaces an incoming chat
// request to the caller via ChatRequest.
func (m *DCCManager) handleChat(source *Source, args []string) {
	if len(args) < 3 || source == nil {
		return
	}

	port, _ := strconv.Atoi(args[2])
	t := &DCCTransfer{
		ID:        uuid.NewString(),
		Direction: DCCIncoming,
		PeerNick:  source.Name,
		IsChat:    true,
		Addr:      args[1],
		Port:      port,
	}

	if m.ChatRequest != nil {
		m.ChatRequest(t)
	}
}

// awaitResume registers t in the awaiting-resume list so a later
// RESUME/ACCEPT pair from nick/port can find it.
func (m *DCCManager) awaitResume(nick string, port int, t *DCCTransfer) {
	t.AwaitingResume = true
	m.mu.Lock()
	m.waiting[resumeKey{nick: ToRFC1459(nick), port: port}] = t
	n := len(m.waiting)
	m.mu.Unlock()
	m.reportActive(n)
}

func (m *DCCManager) reportActive(n int) {
	if mc := m.client.Config.Metrics; mc != nil {
		mc.DccSessionsActive.Set(float64(n))
	}
}

// ipToLong encodes a 4-byte IPv4 address as a big-endian unsigned 32-bit
// integer, per the DCC CHAT wire format. Returns ErrInvalidArgument if b
// is not exactly 4 bytes.
func ipToLong(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, &ErrInvalidArgument{Reason: "ip must be 4 bytes"}
	}
	n := uint32(b[0])
	n = n*256 + uint32(b[1])
	n = n*256 + uint32(b[2])
	n = n*256 + uint32(b[3])
	return n, nil
}

// longToIp is the inverse of ipToLong.
func longToIp(n uint32) []byte {
	return []byte{
		byte(n >> 24),
		byte(n >> 16),
		byte(n >> 8),
		byte(n),
	}
}

// OutgoingChat binds a listener on a configured (or any free) port,
// advertises it to nick via a DCC CHAT offer, accepts exactly one
// connection, and returns it. Returns nil on any failure -- negotiation
// errors are swallowed locally, per the error handling design.
func (m *DCCManager) OutgoingChat(nick string) net.Conn {
	ln, port, err := m.listenOnConfiguredPort()
	if err != nil {
		return nil
	}
	defer ln.Close()

	ip := m.client.Config.DccLocalAddress
	if ip == nil {
		ip = localAddrOf(ln)
	}
	ipNum, err := ipToLong(ip.To4())
	if err != nil {
		return nil
	}

	if err := m.client.Cmd.SendCTCP(nick, "DCC", fmt.Sprintf("CHAT chat %d %d", ipNum, port)); err != nil {
		return nil
	}

	timeout := m.client.Config.DccAcceptTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(timeout))

	conn, err := ln.Accept()
	if err != nil {
		return nil
	}
	return conn
}

func (m *DCCManager) listenOnConfiguredPort() (net.Listener, int, error) {
	ports := m.client.Config.DccPorts
	if len(ports) == 0 {
		ln, err := net.Listen("tcp", ":0")
		if err != nil {
			return nil, 0, err
		}
		return ln, ln.Addr().(*net.TCPAddr).Port, nil
	}

	var lastErr error
	for _, p := range ports {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p))
		if err == nil {
			return ln, p, nil
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func localAddrOf(ln net.Listener) net.IP {
	if tcpLn, ok := ln.(*net.TCPListener); ok {
		if addr, ok := tcpLn.Addr().(*net.TCPAddr); ok && addr.IP != nil && !addr.IP.IsUnspecified() {
			return addr.IP
		}
	}
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return net.IPv4(127, 0, 0, 1)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP
}
