// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"strconv"
	"strings"
	"time"
)

// dispatchLine parses one raw wire line and routes it to state updates
// and dispatched events. It never panics; a malformed line that fails to
// parse is dropped silently, mirroring an ircd that should not be
// sending them in the first place.
func (c *Client) dispatchLine(raw string) {
	trimmed := strings.TrimRight(raw, "\r\n")

	if strings.HasPrefix(trimmed, "PING ") {
		c.emit(&Event{Command: PING, Trailing: strings.TrimPrefix(trimmed, "PING ")})
		return
	}

	e := ParseEvent(trimmed)
	if e == nil {
		return
	}

	if isNumeric(e.Command) {
		c.processNumeric(e)
		return
	}

	switch e.Command {
	case PRIVMSG, NOTICE:
		c.processMessage(e)
	case JOIN:
		c.processJoin(e)
	case PART:
		c.processPart(e)
	case NICK:
		c.processNick(e)
	case QUIT:
		c.processQuit(e)
	case KICK:
		c.processKick(e)
	case MODE:
		c.processMode(e)
	case TOPIC:
		c.processTopicCommand(e)
	case INVITE:
		c.emit(e)
	default:
		params := append([]string{e.Command}, e.Params...)
		c.emit(&Event{Source: e.Source, Command: UNKNOWN, Params: params, Trailing: e.Trailing})
	}
}

// firstTarget returns e.Params[0] if present, else the trailing parameter --
// JOIN in particular is sometimes sent with the channel as a trailing
// argument rather than a middle parameter.
func firstTarget(e *Event) string {
	if len(e.Params) > 0 {
		return e.Params[0]
	}
	return e.Trailing
}

func (c *Client) processMessage(e *Event) {
	if ctcp := decodeCTCP(e); ctcp != nil {
		c.CTCP.call(c, ctcp)
		return
	}

	if len(e.Params) != 1 {
		return
	}

	target := e.Params[0]
	switch {
	case IsValidChannel(target):
		c.emit(&Event{Source: e.Source, Command: EvMsgChannel, Params: []string{target}, Trailing: e.Trailing})
	case IsValidNick(target):
		c.emit(&Event{Source: e.Source, Command: EvMsgPrivate, Params: []string{target}, Trailing: e.Trailing})
	}
}

func (c *Client) processJoin(e *Event) {
	channel := firstTarget(e)
	if channel == "" || e.Source == nil {
		return
	}

	c.state.addUser(channel, e.Source.Name, "")
	if c.isMe(e.Source.Name) {
		c.state.createChannel(channel)
	}

	c.emit(&Event{Source: e.Source, Command: JOIN, Params: []string{channel}})
}

func (c *Client) processPart(e *Event) {
	if len(e.Params) < 1 || e.Source == nil {
		return
	}
	channel := e.Params[0]

	c.state.removeUser(channel, e.Source.Name)
	c.emit(&Event{Source: e.Source, Command: PART, Params: []string{channel}, Trailing: e.Trailing})
}

func (c *Client) processNick(e *Event) {
	if e.Source == nil {
		return
	}
	newNick := firstTarget(e)
	if newNick == "" {
		return
	}

	c.state.renameUser(e.Source.Name, newNick)
	if c.isMe(e.Source.Name) {
		c.setCurrentNick(newNick)
	}

	c.emit(&Event{Source: e.Source, Command: NICK, Params: []string{newNick}})
}

func (c *Client) processQuit(e *Event) {
	if e.Source == nil {
		return
	}
	c.state.removeUserEverywhere(e.Source.Name)
	c.emit(&Event{Source: e.Source, Command: QUIT, Trailing: e.Trailing})
}

func (c *Client) processKick(e *Event) {
	if len(e.Params) < 2 {
		return
	}
	channel, kicked := e.Params[0], e.Params[1]

	c.state.removeUser(channel, kicked)
	c.emit(&Event{Source: e.Source, Command: KICK, Params: []string{channel, kicked}, Trailing: e.Trailing})
}

// processTopicCommand handles a live TOPIC command (as opposed to the
// RPL_TOPIC/RPL_TOPICINFO numeric pair handled in the numeric processor).
func (c *Client) processTopicCommand(e *Event) {
	if len(e.Params) < 1 {
		return
	}
	channel := e.Params[0]
	setBy := ""
	if e.Source != nil {
		setBy = e.Source.Name
	}
	epochMS := time.Now().UnixNano() / int64(time.Millisecond)

	c.state.setTopic(channel, e.Trailing, setBy, epochMS)

	c.emit(&Event{
		Source:  e.Source,
		Command: EvTopic,
		Params:  []string{channel},
		Extra: &TopicPayload{
			Channel: channel,
			Topic:   e.Trailing,
			SetBy:   setBy,
			EpochMS: epochMS,
			Changed: true,
		},
	})
}

// processNumeric implements the numeric response pre-processing table
// (RPL_LIST, RPL_TOPIC/RPL_TOPICINFO stitching, RPL_NAMREPLY/ENDOFNAMES),
// then always forwards a generic server-response event.
func (c *Client) processNumeric(e *Event) {
	switch e.Command {
	case RPL_LIST:
		if len(e.Params) >= 3 {
			channel := e.Params[1]
			count, _ := strconv.Atoi(e.Params[2])
			c.emit(&Event{
				Source:  e.Source,
				Command: EvChannelInfo,
				Params:  []string{channel},
				Extra:   &ChannelInfoPayload{Channel: channel, UserCount: count, Topic: e.Trailing},
			})
		}
	case RPL_TOPIC:
		if len(e.Params) >= 2 {
			c.state.stashTopic(e.Params[1], e.Trailing)
		}
	case RPL_TOPICINFO:
		if len(e.Params) >= 4 {
			channel, setBy := e.Params[1], e.Params[2]
			var epochMS int64
			if secs, err := strconv.ParseInt(e.Params[3], 10, 64); err == nil {
				epochMS = secs * 1000
			}
			topic, _ := c.state.popStashedTopic(channel)
			c.state.setTopic(channel, topic, setBy, epochMS)
			c.emit(&Event{
				Source:  e.Source,
				Command: EvTopic,
				Params:  []string{channel},
				Extra: &TopicPayload{
					Channel: channel,
					Topic:   topic,
					SetBy:   setBy,
					EpochMS: epochMS,
					Changed: false,
				},
			})
		}
	case RPL_NAMREPLY:
		if len(e.Params) >= 3 {
			channel := e.Params[2]
			for _, tok := range strings.Fields(e.Trailing) {
				prefix, nick := "", tok
				switch tok[0] {
				case '@':
					prefix, nick = "@", tok[1:]
				case '+':
					prefix, nick = "+", tok[1:]
				case '.':
					prefix, nick = "", tok[1:]
				}
				c.state.addUser(channel, nick, prefix)
			}
		}
	case RPL_ENDOFNAMES:
		if len(e.Params) >= 2 {
			channel := e.Params[1]
			if ch := c.state.lookupChannel(channel); ch != nil {
				c.emit(&Event{Command: EvUserList, Params: []string{channel}, Extra: ch.Snapshot()})
			}
		}
	}

	c.emit(&Event{Source: e.Source, Command: EvServerResponse, Params: append([]string{e.Command}, e.Params...), Trailing: e.Trailing})
}
