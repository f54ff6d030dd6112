// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "testing"

func TestIPLongRoundTrip(t *testing.T) {
	cases := [][4]byte{
		{127, 0, 0, 1},
		{192, 168, 1, 254},
		{0, 0, 0, 0},
		{255, 255, 255, 255},
	}

	for _, b := range cases {
		n, err := ipToLong(b[:])
		if err != nil {
			t.Fatalf("ipToLong(%v) returned error: %v", b, err)
		}
		got := longToIp(n)
		if len(got) != 4 || got[0] != b[0] || got[1] != b[1] || got[2] != b[2] || got[3] != b[3] {
			t.Fatalf("round trip through ipToLong/longToIp: got %v, want %v", got, b)
		}
	}
}

func TestIPToLongRejectsWrongLength(t *testing.T) {
	if _, err := ipToLong([]byte{1, 2, 3}); err == nil {
		t.Fatalf("ipToLong([1,2,3]) returned nil error, want ErrInvalidArgument")
	}
}

func TestDCCResumeAcceptUsesLiteralFilename(t *testing.T) {
	c := newTestClient("me")
	c.DCC.awaitResume("peer", 5555, &DCCTransfer{Filename: "real-name.zip", Port: 5555})

	c.DCC.handleResume(&Source{Name: "peer"}, []string{"_", "5555", "42"})

	line, ok := c.queue.Dequeue()
	if !ok {
		t.Fatalf("no line enqueued after handleResume")
	}
	if !contains(line, "ACCEPT file.ext 5555 42") {
		t.Fatalf("DCC ACCEPT reply = %q, want it to contain the literal file.ext quirk", line)
	}
}

func TestDCCHandleSendRejectsTooFewArgs(t *testing.T) {
	c := newTestClient("me")

	var got *DCCTransfer
	c.DCC.Incoming = func(t *DCCTransfer) { got = t }

	c.DCC.handleSend(&Source{Name: "peer"}, []string{"a", "b", "c", "d", "e"})

	if got != nil {
		t.Fatalf("handleSend with 5 args dispatched a transfer, want it rejected: %#v", got)
	}
}

func TestDCCResumeRemovesFromWaitingList(t *testing.T) {
	c := newTestClient("me")
	c.DCC.awaitResume("peer", 4000, &DCCTransfer{})

	c.DCC.handleResume(&Source{Name: "peer"}, []string{"_", "4000", "0"})

	c.DCC.mu.Lock()
	_, stillWaiting := c.DCC.waiting[resumeKey{nick: ToRFC1459("peer"), port: 4000}]
	c.DCC.mu.Unlock()

	if stillWaiting {
		t.Fatalf("transfer still tracked in waiting list after RESUME handled")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
