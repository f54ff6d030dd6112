// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

// modeSpec describes one recognized channel mode letter: whether it is
// argument-taking, and whether that argument is only consumed on the
// grant (+) direction (the channel user-limit letter, 'l').
type modeSpec struct {
	takesArg    bool
	argOnGrant  bool // true means the arg is only consumed for "+"
	grantEvent  string
	revokeEvent string
}

// channelModeTable is the fixed mode-letter table this client understands.
// Unrecognized letters are silently skipped, consuming no argument.
var channelModeTable = map[byte]modeSpec{
	'o': {takesArg: true, grantEvent: EvOp, revokeEvent: EvDeop},
	'v': {takesArg: true, grantEvent: EvVoice, revokeEvent: EvDeVoice},
	'k': {takesArg: true, grantEvent: EvSetChannelKey, revokeEvent: EvRemoveChannelKey},
	'l': {takesArg: true, argOnGrant: true, grantEvent: EvSetChannelLimit, revokeEvent: EvRemoveChannelLimit},
	'b': {takesArg: true, grantEvent: EvSetChannelBan, revokeEvent: EvRemoveChannelBan},
	't': {grantEvent: EvSetTopicProtection, revokeEvent: EvRemoveTopicProtection},
	'n': {grantEvent: EvSetNoExternalMessages, revokeEvent: EvRemoveNoExternalMessages},
	'i': {grantEvent: EvSetInviteOnly, revokeEvent: EvRemoveInviteOnly},
	'm': {grantEvent: EvSetModerated, revokeEvent: EvRemoveModerated},
	'p': {grantEvent: EvSetPrivate, revokeEvent: EvRemovePrivate},
	's': {grantEvent: EvSetSecret, revokeEvent: EvRemoveSecret},
}

// processMode handles a parsed MODE command: e.Params[0] is the target
// (channel or user), e.Params[1] is the mode string, and any remaining
// params are the mode arguments in order.
func (c *Client) processMode(e *Event) {
	if len(e.Params) < 2 {
		return
	}

	target := e.Params[0]
	modeStr := e.Params[1]
	modeArgs := e.Params[2:]

	if !IsValidChannel(target) {
		c.emit(&Event{Source: e.Source, Command: EvModeUser, Params: []string{target}, Trailing: modeStr})
		return
	}

	c.processChannelMode(e.Source, target, modeStr, modeArgs)
}

// processChannelMode walks modeStr left to right, maintaining a sign
// state, and emits one granular event per recognized letter in order
// before a final aggregate EvModeChannel event carrying the raw string.
func (c *Client) processChannelMode(source *Source, channel, modeStr string, args []string) {
	grant := true
	argIdx := 0

	nextArg := func() string {
		if argIdx >= len(args) {
			return ""
		}
		a := args[argIdx]
		argIdx++
		return a
	}

	for i := 0; i < len(modeStr); i++ {
		switch modeStr[i] {
		case '+':
			grant = true
			continue
		case '-':
			grant = false
			continue
		}

		spec, ok := channelModeTable[modeStr[i]]
		if !ok {
			continue
		}

		var arg string
		if spec.takesArg {
			if spec.argOnGrant && !grant {
				// revoke direction for this letter never carries an arg
			} else {
				arg = nextArg()
			}
		}

		switch modeStr[i] {
		case 'o':
			c.applyOpVoice(channel, arg, grant, true)
		case 'v':
			c.applyOpVoice(channel, arg, grant, false)
		}

		event := spec.revokeEvent
		if grant {
			event = spec.grantEvent
		}

		params := []string{channel}
		if arg != "" {
			params = append(params, arg)
		}
		c.emit(&Event{Source: source, Command: event, Params: params})
	}

	c.emit(&Event{Source: source, Command: EvModeChannel, Params: []string{channel}, Trailing: modeStr})
}

// applyOpVoice replaces the affected user's prefix per the grant/revoke
// direction of the given flag. If the user is not yet tracked in the
// channel, a record is created so the prefix is not lost.
func (c *Client) applyOpVoice(channel, nick string, grant, isOp bool) {
	if nick == "" {
		return
	}

	ch, _ := c.state.createChannel(channel)
	u := ch.Lookup(nick)
	hadOp, hadVoice := false, false
	if u != nil {
		hadOp, hadVoice = u.IsOp(), u.HasVoice()
	}

	if isOp {
		hadOp = grant
	} else {
		hadVoice = grant
	}

	prefix := ""
	switch {
	case hadOp && hadVoice:
		prefix = "@+"
	case hadOp:
		prefix = "@"
	case hadVoice:
		prefix = "+"
	}

	c.state.setPrefix(channel, nick, prefix)
}
