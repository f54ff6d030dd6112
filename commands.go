// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"errors"
	"fmt"
)

// Commands holds a set of convenience methods that encode and enqueue
// common outbound IRC lines.
type Commands struct {
	client *Client
}

// Nick requests a nickname change.
func (cmd *Commands) Nick(name string) error {
	if !IsValidNick(name) {
		return &ErrInvalidTarget{Target: name}
	}
	return cmd.client.send(&Event{Command: NICK, Params: []string{name}})
}

// Join enters a list of channels, batching as many as fit on one line.
func (cmd *Commands) Join(channels ...string) error {
	max := maxLength - len(JOIN) - 1

	var buffer string
	for i := 0; i < len(channels); i++ {
		if !IsValidChannel(channels[i]) {
			return &ErrInvalidTarget{Target: channels[i]}
		}

		if len(buffer+","+channels[i]) > max {
			if err := cmd.client.send(&Event{Command: JOIN, Params: []string{buffer}}); err != nil {
				return err
			}
			buffer = ""
		}

		if len(buffer) == 0 {
			buffer = channels[i]
		} else {
			buffer += "," + channels[i]
		}

		if i == len(channels)-1 {
			return cmd.client.send(&Event{Command: JOIN, Params: []string{buffer}})
		}
	}
	return nil
}

// JoinKey enters a password-protected channel.
func (cmd *Commands) JoinKey(channel, password string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	return cmd.client.send(&Event{Command: JOIN, Params: []string{channel, password}})
}

// Part leaves channel with no part message.
func (cmd *Commands) Part(channel string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	return cmd.client.send(&Event{Command: PART, Params: []string{channel}})
}

// PartMessage leaves channel with the given part message.
func (cmd *Commands) PartMessage(channel, message string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	return cmd.client.send(&Event{Command: PART, Params: []string{channel}, Trailing: message})
}

// SendCTCP sends a CTCP request to target via PRIVMSG.
func (cmd *Commands) SendCTCP(target, ctcpType, message string) error {
	out := encodeCTCPRaw(ctcpType, message)
	if out == "" {
		return errors.New("invalid CTCP")
	}
	return cmd.Message(target, out)
}

// SendCTCPf is SendCTCP with fmt.Sprintf-style formatting.
func (cmd *Commands) SendCTCPf(target, ctcpType, format string, a ...interface{}) error {
	return cmd.SendCTCP(target, ctcpType, fmt.Sprintf(format, a...))
}

// SendCTCPReply sends a CTCP response to target via NOTICE.
func (cmd *Commands) SendCTCPReply(target, ctcpType, message string) error {
	out := encodeCTCPRaw(ctcpType, message)
	if out == "" {
		return errors.New("invalid CTCP")
	}
	return cmd.Notice(target, out)
}

// SendCTCPReplyf is SendCTCPReply with fmt.Sprintf-style formatting.
func (cmd *Commands) SendCTCPReplyf(target, ctcpType, format string, a ...interface{}) error {
	return cmd.SendCTCPReply(target, ctcpType, fmt.Sprintf(format, a...))
}

// Message sends a PRIVMSG to target (channel or nick).
func (cmd *Commands) Message(target, message string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	return cmd.client.send(&Event{Command: PRIVMSG, Params: []string{target}, Trailing: message})
}

// Messagef is Message with fmt.Sprintf-style formatting.
func (cmd *Commands) Messagef(target, format string, a ...interface{}) error {
	return cmd.Message(target, fmt.Sprintf(format, a...))
}

// Action sends a PRIVMSG ACTION (/me) to target.
func (cmd *Commands) Action(target, message string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	return cmd.client.send(&Event{Command: PRIVMSG, Params: []string{target}, Trailing: encodeCTCPRaw(CTCP_ACTION, message)})
}

// Actionf is Action with fmt.Sprintf-style formatting.
func (cmd *Commands) Actionf(target, format string, a ...interface{}) error {
	return cmd.Action(target, fmt.Sprintf(format, a...))
}

// Notice sends a NOTICE to target (channel or nick).
func (cmd *Commands) Notice(target, message string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	return cmd.client.send(&Event{Command: NOTICE, Params: []string{target}, Trailing: message})
}

// Noticef is Notice with fmt.Sprintf-style formatting.
func (cmd *Commands) Noticef(target, format string, a ...interface{}) error {
	return cmd.Notice(target, fmt.Sprintf(format, a...))
}

// SendRaw parses and enqueues a raw wire line.
func (cmd *Commands) SendRaw(raw string) error {
	e := ParseEvent(raw)
	if e == nil {
		return errors.New("invalid event: " + raw)
	}
	return cmd.client.send(e)
}

// SendRawf is SendRaw with fmt.Sprintf-style formatting.
func (cmd *Commands) SendRawf(format string, a ...interface{}) error {
	return cmd.SendRaw(fmt.Sprintf(format, a...))
}

// Topic requests changing channel's topic. Does not verify length.
func (cmd *Commands) Topic(channel, message string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	return cmd.client.send(&Event{Command: TOPIC, Params: []string{channel}, Trailing: message})
}

// Who sends a WHO query for target.
func (cmd *Commands) Who(target string) error {
	if !IsValidNick(target) && !IsValidChannel(target) && !IsValidUser(target) {
		return &ErrInvalidTarget{Target: target}
	}
	return cmd.client.send(&Event{Command: WHO, Params: []string{target}})
}

// Whois sends a WHOIS query for nick.
func (cmd *Commands) Whois(nick string) error {
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	return cmd.client.send(&Event{Command: WHOIS, Params: []string{nick}})
}

// Ping sends a PING to the server carrying id.
func (cmd *Commands) Ping(id string) error {
	return cmd.client.send(&Event{Command: PING, Params: []string{id}})
}

// Pong replies to a previously received PING carrying id.
func (cmd *Commands) Pong(id string) error {
	return cmd.client.send(&Event{Command: PONG, Params: []string{id}})
}

// Oper authenticates as an IRC operator.
func (cmd *Commands) Oper(user, pass string) error {
	return cmd.client.send(&Event{Command: OPER, Params: []string{user, pass}, Sensitive: true})
}

// Kick removes nick from channel with an optional reason.
func (cmd *Commands) Kick(channel, nick, reason string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	if reason != "" {
		return cmd.client.send(&Event{Command: KICK, Params: []string{channel, nick}, Trailing: reason})
	}
	return cmd.client.send(&Event{Command: KICK, Params: []string{channel, nick}})
}

// Invite invites nick to channel.
func (cmd *Commands) Invite(channel, nick string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	return cmd.client.send(&Event{Command: INVITE, Params: []string{nick, channel}})
}

// Away marks the client away with reason, or calls Back if reason is empty.
func (cmd *Commands) Away(reason string) error {
	if reason == "" {
		return cmd.Back()
	}
	return cmd.client.send(&Event{Command: AWAY, Trailing: reason})
}

// Back clears the away status set by Away.
func (cmd *Commands) Back() error {
	return cmd.client.send(&Event{Command: AWAY})
}

// List requests channel/topic listings, batching multiple channels per line.
func (cmd *Commands) List(channels ...string) error {
	if len(channels) == 0 {
		return cmd.client.send(&Event{Command: LIST})
	}

	max := maxLength - len(LIST) - 1

	var buffer string
	for i := 0; i < len(channels); i++ {
		if !IsValidChannel(channels[i]) {
			return &ErrInvalidTarget{Target: channels[i]}
		}

		if len(buffer+","+channels[i]) > max {
			if err := cmd.client.send(&Event{Command: LIST, Params: []string{buffer}}); err != nil {
				return err
			}
			buffer = ""
		}

		if len(buffer) == 0 {
			buffer = channels[i]
		} else {
			buffer += "," + channels[i]
		}

		if i == len(channels)-1 {
			return cmd.client.send(&Event{Command: LIST, Params: []string{buffer}})
		}
	}
	return nil
}

// Whowas sends a WHOWAS query for nick, requesting up to amount results.
func (cmd *Commands) Whowas(nick string, amount int) error {
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	return cmd.client.send(&Event{Command: WHOWAS, Params: []string{nick, fmt.Sprintf("%d", amount)}})
}
