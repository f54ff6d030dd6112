// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func newTestClient(nick string) *Client {
	c := New(Config{
		ConnectionSettings: ConnectionSettings{Server: "irc.example.com", Port: 6667},
		Identity:           Identity{Nick: nick, UserName: "user"},
	})
	return c
}

func TestRegistryJoinPartInvariant(t *testing.T) {
	c := newTestClient("me")

	c.dispatchLine(":me!user@host JOIN #test")
	ch := c.LookupChannel("#test")
	if ch == nil {
		t.Fatalf("channel not tracked after self JOIN")
	}
	if !ch.UserIn("me") {
		t.Fatalf("self not tracked as member after JOIN")
	}

	c.dispatchLine(":other!user@host JOIN #test")
	if !ch.UserIn("other") {
		t.Fatalf("other user not tracked as member after JOIN")
	}

	c.dispatchLine(":other!user@host PART #test")
	if ch.UserIn("other") {
		t.Fatalf("other user still tracked after PART")
	}

	c.dispatchLine(":me!user@host PART #test")
	if c.LookupChannel("#test") != nil {
		t.Fatalf("channel still tracked after our own PART")
	}
}

func TestRegistryKickRemovesTarget(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #test")
	c.dispatchLine(":other!user@host JOIN #test")

	c.dispatchLine(":op!user@host KICK #test other :bye")

	ch := c.LookupChannel("#test")
	if ch == nil {
		t.Fatalf("channel dropped after unrelated KICK")
	}
	if ch.UserIn("other") {
		t.Fatalf("kicked user still tracked")
	}
}

func TestRegistryKickOfSelfDropsChannel(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #test")

	c.dispatchLine(":op!user@host KICK #test me :bye")

	if c.LookupChannel("#test") != nil {
		t.Fatalf("channel still tracked after self KICK")
	}
}

func TestRegistryQuitRemovesFromEveryChannel(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #a")
	c.dispatchLine(":me!user@host JOIN #b")
	c.dispatchLine(":other!user@host JOIN #a")
	c.dispatchLine(":other!user@host JOIN #b")

	c.dispatchLine(":other!user@host QUIT :leaving")

	if c.LookupChannel("#a").UserIn("other") || c.LookupChannel("#b").UserIn("other") {
		t.Fatalf("quitting user still tracked somewhere")
	}
}

func TestRegistryNickRenamePreservesPrefix(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #test")
	c.dispatchLine(":op!user@host JOIN #test")
	c.dispatchLine(":op!user@host MODE #test +o op")

	ch := c.LookupChannel("#test")
	if !ch.Lookup("op").IsOp() {
		t.Fatalf("setup failed: op not flagged as op before rename")
	}

	c.dispatchLine(":op!user@host NICK newop")

	if ch.UserIn("op") {
		t.Fatalf("old nick still tracked after NICK rename")
	}
	u := ch.Lookup("newop")
	if u == nil || !u.IsOp() {
		t.Fatalf("renamed user lost op prefix: %#v", u)
	}
}

func TestToRFC1459CaseMapping(t *testing.T) {
	cases := map[string]string{
		"NICK":   "nick",
		"[Test]": "{test}",
		`A\B`:    `a|b`,
		"~x":     "^x",
	}
	for in, want := range cases {
		if got := ToRFC1459(in); got != want {
			t.Fatalf("ToRFC1459(%q) = %q, want %q", in, got, want)
		}
	}
}
