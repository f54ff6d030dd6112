// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"reflect"
	"testing"
)

var testsParseSource = []struct {
	name    string
	test    string
	wantSrc *Source
}{
	{name: "full", test: "nick!user@hostname.com", wantSrc: &Source{
		Name: "nick", Ident: "user", Host: "hostname.com",
	}},
	{name: "no host", test: "a!b", wantSrc: &Source{
		Name: "a", Ident: "b", Host: "",
	}},
	{name: "no ident", test: "a@b", wantSrc: &Source{
		Name: "a", Ident: "", Host: "b",
	}},
	{name: "server only", test: "irc.example.com", wantSrc: &Source{
		Name: "irc.example.com", Ident: "", Host: "",
	}},
}

func TestParseSource(t *testing.T) {
	for _, tt := range testsParseSource {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSource(tt.test)
			if !reflect.DeepEqual(got, tt.wantSrc) {
				t.Fatalf("ParseSource(%q) = %#v, want %#v", tt.test, got, tt.wantSrc)
			}
		})
	}
}

func TestSourceIsHostmaskAndServer(t *testing.T) {
	full := ParseSource("nick!user@host")
	if !full.IsHostmask() {
		t.Fatalf("IsHostmask() = false on full source")
	}
	if full.IsServer() {
		t.Fatalf("IsServer() = true on full source")
	}

	server := ParseSource("irc.example.com")
	if server.IsHostmask() {
		t.Fatalf("IsHostmask() = true on bare server source")
	}
	if !server.IsServer() {
		t.Fatalf("IsServer() = false on bare server source")
	}
}

func TestSourceIDCaseFolds(t *testing.T) {
	a := ParseSource("Nick!user@host")
	b := ParseSource("nick!other@elsewhere")

	if a.ID() != b.ID() {
		t.Fatalf("Source.ID() not case-folded: %q vs %q", a.ID(), b.ID())
	}
}
