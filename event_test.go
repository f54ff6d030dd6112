// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func mockEvent() *Event {
	return &Event{
		Source:  &Source{Name: "nick", Ident: "user", Host: "host.com"},
		Command: "PRIVMSG",
		Params:  []string{"#channel"},
		Trailing: "1 2 3",
	}
}

var testsParseEvent = []struct {
	in   string
	want string
}{
	{in: ":host.domain.com TEST", want: ":host.domain.com TEST"},
	{in: ":host.domain.com TEST\r\n", want: ":host.domain.com TEST"},
	{in: ":host.domain.com TEST arg1 arg2", want: ":host.domain.com TEST arg1 arg2"},
	{in: ":host.domain.com TEST :test1", want: ":host.domain.com TEST :test1"},
	{in: ":host.domain.com TEST :test1 test2", want: ":host.domain.com TEST :test1 test2"},
	{in: ":nick!user@host TEST :test1 test2", want: ":nick!user@host TEST :test1 test2"},
	{in: ":nick!user@host TEST arg1 arg2 :test1", want: ":nick!user@host TEST arg1 arg2 :test1"},
}

func TestParseEvent(t *testing.T) {
	for _, tt := range testsParseEvent {
		got := ParseEvent(tt.in)
		if got == nil {
			t.Fatalf("ParseEvent(%q) returned nil", tt.in)
		}
		if got.String() != tt.want {
			t.Fatalf("ParseEvent(%q).String() = %q, want %q", tt.in, got.String(), tt.want)
		}
	}
}

func TestParseEventTooShort(t *testing.T) {
	if e := ParseEvent(""); e != nil {
		t.Fatalf("ParseEvent(\"\") = %#v, want nil", e)
	}
	if e := ParseEvent("a"); e != nil {
		t.Fatalf("ParseEvent(%q) = %#v, want nil", "a", e)
	}
}

func TestEventBytesTruncates(t *testing.T) {
	e := &Event{Command: "PRIVMSG", Params: []string{"#chan"}, Trailing: stringOfLen(600)}

	out := e.Bytes()
	if len(out) > maxLength {
		t.Fatalf("Event.Bytes() length = %d, want <= %d", len(out), maxLength)
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestEventLast(t *testing.T) {
	e := &Event{Params: []string{"a", "b"}}
	if got := e.Last(); got != "b" {
		t.Fatalf("Event.Last() = %q, want %q", got, "b")
	}

	e.Trailing = "trailer"
	if got := e.Last(); got != "trailer" {
		t.Fatalf("Event.Last() = %q, want %q", got, "trailer")
	}
}

func TestEventIsAction(t *testing.T) {
	e := ParseEvent(":nick!user@host PRIVMSG #test :\x01ACTION waves\x01")
	if !e.IsAction() {
		t.Fatalf("Event.IsAction() = false, want true for %#v", e)
	}
	if got := e.StripAction(); got != "waves" {
		t.Fatalf("Event.StripAction() = %q, want %q", got, "waves")
	}

	e.Command = "NOTICE"
	if e.IsAction() {
		t.Fatalf("Event.IsAction() = true, want false once command is NOTICE")
	}
}

func TestEventIsFromChannelAndUser(t *testing.T) {
	chanEvent := &Event{Command: PRIVMSG, Params: []string{"#test"}}
	if !chanEvent.IsFromChannel() {
		t.Fatalf("IsFromChannel() = false, want true")
	}
	if chanEvent.IsFromUser() {
		t.Fatalf("IsFromUser() = true, want false")
	}

	userEvent := &Event{Command: PRIVMSG, Params: []string{"nick"}}
	if !userEvent.IsFromUser() {
		t.Fatalf("IsFromUser() = false, want true")
	}
	if userEvent.IsFromChannel() {
		t.Fatalf("IsFromChannel() = true, want false")
	}
}

func TestEventCopyIsIndependent(t *testing.T) {
	e := &Event{Command: JOIN, Params: []string{"#a", "#b"}}
	cp := e.Copy()

	cp.Params[0] = "#changed"
	if e.Params[0] == "#changed" {
		t.Fatalf("Event.Copy() did not produce an independent Params slice")
	}
}
