// Copyright 2016-2017 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import "bytes"

// defaultChannelPrefixes is the fixed channel-prefix set this client
// recognizes when no server ISUPPORT CHANTYPES negotiation is in play
// (IRCv3/capability negotiation is out of scope).
var defaultChannelPrefixes = [...]byte{'#', '&', '+', '!'}

// IsValidChannel reports whether channel looks like an RFC 1459/2812
// channel name: one of the recognized prefix characters followed by at
// least one more octet, excluding NUL, BELL, CR, LF, space, comma, colon.
func IsValidChannel(channel string) bool {
	if len(channel) <= 1 || len(channel) > 50 {
		return false
	}

	if bytes.IndexByte(defaultChannelPrefixes[:], channel[0]) == -1 {
		return false
	}

	bad := []byte{0x00, 0x07, 0x0D, 0x0A, 0x20, 0x2C, 0x3A}
	for i := 1; i < len(channel); i++ {
		if bytes.IndexByte(bad, channel[i]) != -1 {
			return false
		}
	}

	return true
}

// IsValidNick reports whether nick is a syntactically valid IRC nickname.
//
//	nickname =  ( letter / special ) *8( letter / digit / special / "-" )
func IsValidNick(nick string) bool {
	if len(nick) <= 0 {
		return false
	}

	if nick[0] < 0x41 || nick[0] > 0x7D {
		return false
	}

	for i := 1; i < len(nick); i++ {
		if (nick[i] < 0x41 || nick[i] > 0x7D) && (nick[i] < 0x30 || nick[i] > 0x39) && nick[i] != 0x2D {
			return false
		}
	}

	return true
}

// IsValidUser reports whether user is a syntactically valid IRC username
// (ident), a looser subset of the nick grammar used for WHO targets.
func IsValidUser(user string) bool {
	if len(user) <= 0 {
		return false
	}

	for i := 0; i < len(user); i++ {
		if user[i] == 0x00 || user[i] == 0x0D || user[i] == 0x0A || user[i] == 0x20 || user[i] == '@' {
			return false
		}
	}

	return true
}

// ToRFC1459 case-folds name per the rfc1459 casemapping: ASCII letters
// lower, and "{}|^" treated as the lowercase forms of "[]\~". Used as the
// canonical form for channel/nick map keys throughout state tracking.
func ToRFC1459(name string) string {
	b := []byte(name)
	for i, c := range b {
		switch {
		case c >= 'A' && c <= 'Z':
			b[i] = c + ('a' - 'A')
		case c == '[':
			b[i] = '{'
		case c == ']':
			b[i] = '}'
		case c == '\\':
			b[i] = '|'
		case c == '~':
			b[i] = '^'
		}
	}
	return string(b)
}
