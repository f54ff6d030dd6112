// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

// Synthetic command names the parser/mode-processor emit in place of (or
// alongside) the raw wire command, so that handlers can subscribe to a
// specific category of activity through the same Command-keyed
// dispatch used for everything else.
const (
	EvMsgChannel     = "MSG_CHANNEL"
	EvMsgPrivate     = "MSG_PRIVATE"
	EvServerResponse = "SERVER_RESPONSE"
	EvChannelInfo    = "CHANNEL_INFO"
	EvUserList       = "USER_LIST"

	EvModeChannel = "MODE_CHANNEL"
	EvModeUser    = "MODE_USER"

	EvOp       = "OP"
	EvDeop     = "DEOP"
	EvVoice    = "VOICE"
	EvDeVoice  = "DEVOICE"

	EvSetChannelKey    = "SET_CHANNEL_KEY"
	EvRemoveChannelKey = "REMOVE_CHANNEL_KEY"

	EvSetChannelLimit    = "SET_CHANNEL_LIMIT"
	EvRemoveChannelLimit = "REMOVE_CHANNEL_LIMIT"

	EvSetChannelBan    = "SET_CHANNEL_BAN"
	EvRemoveChannelBan = "REMOVE_CHANNEL_BAN"

	EvSetTopicProtection    = "SET_TOPIC_PROTECTION"
	EvRemoveTopicProtection = "REMOVE_TOPIC_PROTECTION"

	EvSetNoExternalMessages    = "SET_NO_EXTERNAL_MESSAGES"
	EvRemoveNoExternalMessages = "REMOVE_NO_EXTERNAL_MESSAGES"

	EvSetInviteOnly    = "SET_INVITE_ONLY"
	EvRemoveInviteOnly = "REMOVE_INVITE_ONLY"

	EvSetModerated    = "SET_MODERATED"
	EvRemoveModerated = "REMOVE_MODERATED"

	EvSetPrivate    = "SET_PRIVATE"
	EvRemovePrivate = "REMOVE_PRIVATE"

	EvSetSecret    = "SET_SECRET"
	EvRemoveSecret = "REMOVE_SECRET"

	EvTopic = "TOPIC_EVENT"
)

// TopicPayload carries the stitched result of a RPL_TOPIC/RPL_TOPICINFO
// pair, or of a live TOPIC command, as Event.Trailing/Params do not have
// room for the setBy/epoch_ms/changed fields the spec requires. The
// dispatcher stores one of these on Event.Extra.
type TopicPayload struct {
	Channel string
	Topic   string
	SetBy   string
	EpochMS int64
	Changed bool
}

// ChannelInfoPayload is the decoded form of a RPL_LIST line.
type ChannelInfoPayload struct {
	Channel   string
	UserCount int
	Topic     string
}
