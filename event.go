// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	eventSpace byte = 0x20 // Separator.
	maxLength       = 510  // Maximum length is 510 (2 for line endings).
)

// cutCRFunc is used to trim CR/LF characters from raw lines.
func cutCRFunc(r rune) bool {
	return r == '\r' || r == '\n'
}

// Event represents one parsed IRC protocol message, see RFC1459 section
// 2.3.1:
//
//    <message>  :: [':' <prefix> <SPACE>] <command> <params> <crlf>
//    <prefix>   :: <servername> | <nick> ['!' <user>] ['@' <host>]
//    <command>  :: <letter>{<letter>} | <number> <number> <number>
//    <params>   :: <SPACE> [':' <trailing> | <middle> <params>]
type Event struct {
	Source        *Source  // The source of the event, if any.
	Command       string   // The IRC command, e.g. JOIN, PRIVMSG, 001.
	Params        []string // Space-separated parameters (excludes trailing).
	Trailing      string   // Trailing (":"-prefixed) parameter text, if any.
	EmptyTrailing bool     // Re-encode an explicit but empty trailing param.
	Sensitive     bool     // If true, should not be logged (e.g. PASS/OPER).
	// Extra carries a typed payload for synthetic events (e.g.
	// *TopicPayload, *ChannelInfoPayload) that don't fit Params/Trailing.
	Extra interface{}
}

// ParseEvent parses a single raw wire line into an Event. Returns nil if
// the line is too short to be a valid event.
func ParseEvent(raw string) (e *Event) {
	if raw = strings.TrimFunc(raw, cutCRFunc); len(raw) < 2 {
		return nil
	}

	i, j := 0, 0
	e = &Event{}

	if raw[0] == messagePrefix {
		// Prefix ends with a space.
		i = strings.IndexByte(raw, eventSpace)

		if i < 2 {
			return nil
		}

		e.Source = ParseSource(raw[1:i])

		// Skip space at the end of the prefix.
		i++
	}

	// Find end of command.
	j = i + strings.IndexByte(raw[i:], eventSpace)

	if j < i {
		e.Command = strings.ToUpper(raw[i:])
		return e
	}

	e.Command = strings.ToUpper(raw[i:j])
	// Skip space after command.
	j++

	// Find the prefix that introduces the trailing parameter (" :"),
	// searching from the space after the command so that a trailing
	// parameter directly following the command is found too. k is the
	// index of the ':' relative to j.
	k := bytes.Index([]byte(raw[j-1:]), []byte{eventSpace, messagePrefix})

	if k < 0 || raw[j+k-1] != eventSpace {
		// No trailing argument.
		if j <= len(raw) {
			e.Params = strings.Split(raw[j:], string(eventSpace))
		}
		return e
	}

	// Compensate for index computed on the substring.
	k = k + j

	if k > j {
		e.Params = strings.Split(raw[j:k-1], string(eventSpace))
	}

	e.Trailing = raw[k+1:]

	if len(e.Trailing) <= 0 {
		e.EmptyTrailing = true
	}

	return e
}

// Len calculates the length of the wire representation of the event.
func (e *Event) Len() (length int) {
	if e.Source != nil {
		length += e.Source.Len() + 2
	}

	length += len(e.Command)

	if len(e.Params) > 0 {
		length += len(e.Params)
		for i := 0; i < len(e.Params); i++ {
			length += len(e.Params[i])
		}
	}

	if len(e.Trailing) > 0 || e.EmptyTrailing {
		length += len(e.Trailing) + 2
	}

	return
}

// Bytes returns the wire-format []byte representation of the event,
// stripped of any embedded newlines/carriage returns and hard-truncated
// so that the result plus the caller-appended CRLF never exceeds 512
// bytes (RFC 2812 section 2.3).
func (e *Event) Bytes() []byte {
	buffer := new(bytes.Buffer)

	if e.Source != nil {
		buffer.WriteByte(messagePrefix)
		e.Source.writeTo(buffer)
		buffer.WriteByte(eventSpace)
	}

	buffer.WriteString(e.Command)

	if len(e.Params) > 0 {
		buffer.WriteByte(eventSpace)
		buffer.WriteString(strings.Join(e.Params, string(eventSpace)))
	}

	if len(e.Trailing) > 0 || e.EmptyTrailing {
		buffer.WriteByte(eventSpace)
		buffer.WriteByte(messagePrefix)
		buffer.WriteString(e.Trailing)
	}

	// maxLength (510) leaves exactly 2 bytes of headroom for the CRLF
	// the sender appends, keeping the full line at or under 512 bytes.
	if buffer.Len() > maxLength {
		buffer.Truncate(maxLength)
	}

	out := buffer.Bytes()

	for i := 0; i < len(out); i++ {
		if out[i] == 0x0A || out[i] == 0x0D {
			out = append(out[:i], out[i+1:]...)
			i--
		}
	}

	return out
}

// String returns the event's wire-format string representation.
func (e *Event) String() string {
	return string(e.Bytes())
}

// Last returns the trailing parameter if present, otherwise the final
// space-separated parameter, mirroring what most command handlers treat
// as "the rest of the line".
func (e *Event) Last() string {
	if len(e.Trailing) > 0 || e.EmptyTrailing {
		return e.Trailing
	}
	if len(e.Params) > 0 {
		return e.Params[len(e.Params)-1]
	}
	return ""
}

// Copy returns a shallow copy of the event, safe to hand to a concurrently
// executing handler while the dispatcher reuses the original.
func (e *Event) Copy() *Event {
	out := *e
	out.Params = append([]string(nil), e.Params...)
	return &out
}

// IsAction reports whether the event is a PRIVMSG CTCP ACTION (/me).
func (e *Event) IsAction() bool {
	if len(e.Trailing) <= 0 || e.Command != PRIVMSG {
		return false
	}

	if !strings.HasPrefix(e.Trailing, "\001ACTION") || e.Trailing[len(e.Trailing)-1] != ctcpDelim {
		return false
	}

	return true
}

// IsFromChannel reports whether a PRIVMSG/NOTICE was sent to a channel.
func (e *Event) IsFromChannel() bool {
	if len(e.Params) != 1 {
		return false
	}
	if (e.Command != PRIVMSG && e.Command != NOTICE) || !IsValidChannel(e.Params[0]) {
		return false
	}
	return true
}

// IsFromUser reports whether a PRIVMSG/NOTICE was sent directly to a user.
func (e *Event) IsFromUser() bool {
	if len(e.Params) != 1 {
		return false
	}
	if (e.Command != PRIVMSG && e.Command != NOTICE) || !IsValidNick(e.Params[0]) {
		return false
	}
	return true
}

// StripAction returns the message text of a CTCP ACTION with the CTCP
// envelope removed; returns Trailing unmodified if not an action.
func (e *Event) StripAction() string {
	if !e.IsAction() || len(e.Trailing) < 9 {
		return e.Trailing
	}

	return e.Trailing[8 : len(e.Trailing)-1]
}

// Pretty returns a human-readable rendering of the event for logging, if
// the command is one this client knows how to summarize.
func (e *Event) Pretty() (out string, ok bool) {
	switch e.Command {
	case INITIALIZED:
		return fmt.Sprintf("[*] connection to %s initialized", e.Trailing), true
	case CONNECTED:
		return fmt.Sprintf("[*] successfully connected to %s", e.Last()), true
	case PRIVMSG, NOTICE, EvMsgChannel, EvMsgPrivate:
		if len(e.Params) > 0 && e.Source != nil {
			return fmt.Sprintf("[%s] (%s) %s", strings.Join(e.Params, ","), e.Source.Name, e.Trailing), true
		}
	case JOIN:
		if e.Source != nil {
			return fmt.Sprintf("[*] %s has joined %s", e.Source.Name, strings.Join(e.Params, ", ")), true
		}
	case PART:
		if e.Source != nil {
			return fmt.Sprintf("[*] %s has left %s (%s)", e.Source.Name, strings.Join(e.Params, ", "), e.Trailing), true
		}
	case ERROR:
		return fmt.Sprintf("[*] an error occurred: %s", e.Trailing), true
	case QUIT:
		if e.Source != nil {
			return fmt.Sprintf("[*] %s has quit (%s)", e.Source.Name, e.Trailing), true
		}
	case KICK:
		if len(e.Params) == 2 && e.Source != nil {
			return fmt.Sprintf("[%s] *** %s has kicked %s: %s", e.Params[0], e.Source.Name, e.Params[1], e.Trailing), true
		}
	case NICK:
		if len(e.Params) == 1 && e.Source != nil {
			return fmt.Sprintf("[*] %s is now known as %s", e.Source.Name, e.Params[0]), true
		}
	case MODE:
		if len(e.Params) > 1 && e.Source != nil {
			return fmt.Sprintf("[%s] %s set modes: %s", e.Params[0], e.Source.Name, strings.Join(e.Params[1:], " ")), true
		}
	}

	return "", false
}
