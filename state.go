// Copyright 2016 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package pircbot

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"
)

// User is a (prefix, nick) tuple tracked per-channel. Two Users are equal
// iff their nicks match case-insensitively per the IRC casemapping; the
// prefix is metadata that mode events replace wholesale.
type User struct {
	Nick   string
	Prefix string // one of "", "+", "@", "@+"
}

// HasVoice reports whether the user holds the voice (+) flag.
func (u *User) HasVoice() bool {
	return u.Prefix == "+" || u.Prefix == "@+"
}

// IsOp reports whether the user holds the operator (@) flag.
func (u *User) IsOp() bool {
	return u.Prefix == "@" || u.Prefix == "@+"
}

// Channel is the per-channel membership and topic state the registry
// tracks for one joined or observed channel.
type Channel struct {
	Name  string
	Users cmap.ConcurrentMap // ToRFC1459(nick) -> *User

	Topic        string
	TopicSetBy   string
	TopicEpochMS int64

	Joined time.Time
}

// Len returns the number of tracked users in the channel.
func (ch *Channel) Len() int {
	return ch.Users.Count()
}

// UserIn reports whether nick is tracked as a member of the channel.
func (ch *Channel) UserIn(nick string) bool {
	return ch.Users.Has(ToRFC1459(nick))
}

// Lookup returns the tracked User record for nick, or nil.
func (ch *Channel) Lookup(nick string) *User {
	v, ok := ch.Users.Get(ToRFC1459(nick))
	if !ok {
		return nil
	}
	u, _ := v.(*User)
	return u
}

// Snapshot returns a point-in-time copy of the channel's user list.
func (ch *Channel) Snapshot() []*User {
	items := ch.Users.Items()
	out := make([]*User, 0, len(items))
	for _, v := range items {
		if u, ok := v.(*User); ok {
			out = append(out, u)
		}
	}
	return out
}

// registry is the channel/user state model described in the data model:
// a mapping from (lower-cased) channel name to an unordered set of Users
// keyed by nick, guarded so that all mutation and enumeration happen
// under a single lock and readers observe consistent snapshots.
type registry struct {
	mu       sync.RWMutex
	client   *Client
	channels cmap.ConcurrentMap // ToRFC1459(name) -> *Channel

	// topicScratch stitches a RPL_TOPIC (332) with its following
	// RPL_TOPICINFO (333) into a single topic event.
	topicScratchMu sync.Mutex
	topicScratch   map[string]string // ToRFC1459(channel) -> pending topic text
}

func newRegistry(client *Client) *registry {
	return &registry{
		client:       client,
		channels:     cmap.New(),
		topicScratch: make(map[string]string),
	}
}

func (r *registry) reset() {
	r.mu.Lock()
	r.channels = cmap.New()
	r.mu.Unlock()

	r.topicScratchMu.Lock()
	r.topicScratch = make(map[string]string)
	r.topicScratchMu.Unlock()
}

// createChannel creates an empty tracked channel if not already present.
// Returns the channel and whether it was newly created.
func (r *registry) createChannel(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ToRFC1459(name)
	if v, ok := r.channels.Get(key); ok {
		return v.(*Channel), false
	}

	ch := &Channel{Name: name, Users: cmap.New(), Joined: time.Now()}
	r.channels.Set(key, ch)
	return ch, true
}

// deleteChannel drops a tracked channel entirely, e.g. after we PART/are
// KICKed from it, or QUIT drops all of them.
func (r *registry) deleteChannel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels.Remove(ToRFC1459(name))
}

// lookupChannel returns the tracked channel by name, or nil.
func (r *registry) lookupChannel(name string) *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.channels.Get(ToRFC1459(name))
	if !ok {
		return nil
	}
	return v.(*Channel)
}

// channelNames returns a snapshot of every channel we are currently
// tracking as joined (our own channel set per the data model invariant).
func (r *registry) channelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.channels.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// addUser adds nick to channelName with the given prefix, creating the
// channel record if necessary. If the user already exists, its prefix is
// left untouched -- mode changes replace the prefix explicitly via
// setPrefix, JOIN/NAMREPLY only ever introduce new members.
func (r *registry) addUser(channelName, nick, prefix string) {
	ch, _ := r.createChannel(channelName)

	key := ToRFC1459(nick)
	if ch.Users.Has(key) {
		return
	}
	ch.Users.Set(key, &User{Nick: nick, Prefix: prefix})
}

// setPrefix replaces the prefix of nick within channelName, creating the
// user record if it did not already exist so mode changes targeting an
// as-yet-unseen nick are not lost.
func (r *registry) setPrefix(channelName, nick, prefix string) {
	ch, _ := r.createChannel(channelName)

	key := ToRFC1459(nick)
	if v, ok := ch.Users.Get(key); ok {
		u := v.(*User)
		u.Prefix = prefix
		return
	}
	ch.Users.Set(key, &User{Nick: nick, Prefix: prefix})
}

// removeUser removes nick from channelName. If the removed nick is our
// own, the whole channel is dropped per the registry invariant.
func (r *registry) removeUser(channelName, nick string) {
	ch := r.lookupChannel(channelName)
	if ch == nil {
		return
	}

	if r.client != nil && r.client.isMe(nick) {
		r.deleteChannel(channelName)
		return
	}

	ch.Users.Remove(ToRFC1459(nick))
}

// removeUserEverywhere removes nick from every tracked channel, used on
// QUIT. If nick is our own, every channel is dropped instead.
func (r *registry) removeUserEverywhere(nick string) {
	if r.client != nil && r.client.isMe(nick) {
		r.reset()
		return
	}

	r.mu.RLock()
	items := r.channels.Items()
	r.mu.RUnlock()

	key := ToRFC1459(nick)
	for _, v := range items {
		ch := v.(*Channel)
		ch.Users.Remove(key)
	}
}

// renameUser moves a nick to a new spelling across every tracked channel,
// preserving each channel's recorded prefix for that user.
func (r *registry) renameUser(from, to string) {
	r.mu.RLock()
	items := r.channels.Items()
	r.mu.RUnlock()

	fromKey, toKey := ToRFC1459(from), ToRFC1459(to)

	for _, v := range items {
		ch := v.(*Channel)
		old, ok := ch.Users.Pop(fromKey)
		if !ok {
			continue
		}
		u := old.(*User)
		u.Nick = to
		ch.Users.Set(toKey, u)
	}
}

// stashTopic records the pending topic text for channel, awaiting a
// RPL_TOPICINFO to pair with it.
func (r *registry) stashTopic(channel, topic string) {
	r.topicScratchMu.Lock()
	r.topicScratch[ToRFC1459(channel)] = topic
	r.topicScratchMu.Unlock()
}

// popStashedTopic returns and removes the pending topic text for channel,
// if any was stashed by a preceding RPL_TOPIC.
func (r *registry) popStashedTopic(channel string) (string, bool) {
	r.topicScratchMu.Lock()
	defer r.topicScratchMu.Unlock()

	key := ToRFC1459(channel)
	topic, ok := r.topicScratch[key]
	if ok {
		delete(r.topicScratch, key)
	}
	return topic, ok
}

// setTopic records the resolved topic metadata on the tracked channel,
// creating the channel record if it was not already known.
func (r *registry) setTopic(channel, topic, setBy string, epochMS int64) {
	ch, _ := r.createChannel(channel)
	ch.Topic = topic
	ch.TopicSetBy = setBy
	ch.TopicEpochMS = epochMS
}
