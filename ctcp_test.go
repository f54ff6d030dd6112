// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func TestEncodeDecodeCTCPRoundTrip(t *testing.T) {
	raw := encodeCTCPRaw(CTCP_VERSION, "")
	e := &Event{
		Source:  &Source{Name: "nick", Ident: "user", Host: "host"},
		Command: PRIVMSG,
		Params:  []string{"target"},
		Trailing: raw,
	}

	ctcp := decodeCTCP(e)
	if ctcp == nil {
		t.Fatalf("decodeCTCP returned nil for %q", raw)
	}
	if ctcp.Command != CTCP_VERSION {
		t.Fatalf("decodeCTCP.Command = %q, want %q", ctcp.Command, CTCP_VERSION)
	}
	if ctcp.Text != "" {
		t.Fatalf("decodeCTCP.Text = %q, want empty", ctcp.Text)
	}
}

func TestEncodeDecodeCTCPWithArgs(t *testing.T) {
	raw := encodeCTCPRaw(CTCP_PING, "123456")
	e := &Event{
		Source:  &Source{Name: "nick"},
		Command: NOTICE,
		Params:  []string{"target"},
		Trailing: raw,
	}

	ctcp := decodeCTCP(e)
	if ctcp == nil {
		t.Fatalf("decodeCTCP returned nil for %q", raw)
	}
	if ctcp.Command != CTCP_PING || ctcp.Text != "123456" {
		t.Fatalf("decodeCTCP = %#v, want Command=%q Text=%q", ctcp, CTCP_PING, "123456")
	}
	if !ctcp.Reply {
		t.Fatalf("decodeCTCP.Reply = false for a NOTICE-carried CTCP")
	}
}

func TestDecodeCTCPRejectsPlainMessage(t *testing.T) {
	e := &Event{Command: PRIVMSG, Params: []string{"target"}, Trailing: "just a regular message"}
	if ctcp := decodeCTCP(e); ctcp != nil {
		t.Fatalf("decodeCTCP = %#v, want nil for a non-CTCP message", ctcp)
	}
}

func TestEncodeCTCPRawRejectsEmptyTag(t *testing.T) {
	if out := encodeCTCPRaw("", "text"); out != "" {
		t.Fatalf("encodeCTCPRaw(\"\", ...) = %q, want empty", out)
	}
}

func TestIsCTCPTag(t *testing.T) {
	cases := map[string]bool{
		"VERSION": true,
		"PING123": true,
		"":        false,
		"lower":   false,
		"has space": false,
	}
	for tag, want := range cases {
		if got := isCTCPTag(tag); got != want {
			t.Fatalf("isCTCPTag(%q) = %t, want %t", tag, got, want)
		}
	}
}
