// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func TestProcessChannelModeEmitsGranularThenAggregate(t *testing.T) {
	c := newTestClient("me")

	var seen []string
	c.Handlers.Add(CapFull, func(client *Client, e *Event) {
		seen = append(seen, e.Command)
	})

	c.dispatchLine(":me!user@host JOIN #test")
	seen = nil

	c.dispatchLine(":op!user@host MODE #test +ov victim victim")

	want := []string{EvOp, EvVoice, EvModeChannel}
	if len(seen) != len(want) {
		t.Fatalf("event sequence = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("event sequence = %v, want %v", seen, want)
		}
	}

	ch := c.LookupChannel("#test")
	victim := ch.Lookup("victim")
	if victim == nil || victim.Prefix != "@+" {
		t.Fatalf("victim prefix = %#v, want @+", victim)
	}
}

func TestProcessChannelModeRevokeClearsOnlyOneFlag(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #test")
	c.dispatchLine(":op!user@host MODE #test +ov victim victim")
	c.dispatchLine(":op!user@host MODE #test -o victim")

	ch := c.LookupChannel("#test")
	victim := ch.Lookup("victim")
	if victim.Prefix != "+" {
		t.Fatalf("victim prefix after -o = %q, want %q", victim.Prefix, "+")
	}
}

func TestProcessChannelModeLimitArgOnlyOnGrant(t *testing.T) {
	c := newTestClient("me")
	c.dispatchLine(":me!user@host JOIN #test")

	var limitEvents []*Event
	c.Handlers.Add(CapFull, func(client *Client, e *Event) {
		if e.Command == EvSetChannelLimit || e.Command == EvRemoveChannelLimit {
			limitEvents = append(limitEvents, e.Copy())
		}
	})

	c.dispatchLine(":op!user@host MODE #test +l 50")
	c.dispatchLine(":op!user@host MODE #test -l")

	if len(limitEvents) != 2 {
		t.Fatalf("got %d limit events, want 2: %#v", len(limitEvents), limitEvents)
	}
	if len(limitEvents[0].Params) != 2 || limitEvents[0].Params[1] != "50" {
		t.Fatalf("grant limit event params = %#v, want channel+50", limitEvents[0].Params)
	}
	if len(limitEvents[1].Params) != 1 {
		t.Fatalf("revoke limit event params = %#v, want channel only", limitEvents[1].Params)
	}
}

func TestProcessModeUserTarget(t *testing.T) {
	c := newTestClient("me")

	var got *Event
	c.Handlers.Add(CapFull, func(client *Client, e *Event) {
		if e.Command == EvModeUser {
			got = e.Copy()
		}
	})

	c.dispatchLine(":me!user@host MODE me +i")

	if got == nil {
		t.Fatalf("EvModeUser not emitted for a non-channel MODE target")
	}
	if got.Trailing != "+i" {
		t.Fatalf("EvModeUser.Trailing = %q, want %q", got.Trailing, "+i")
	}
}
