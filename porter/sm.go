// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package porter

import (
	"fmt"
	"time"

	"git.sr.ht/~wocky/xmpp/internal/ns"
	"git.sr.ht/~wocky/xmpp/stanza"
	"git.sr.ht/~wocky/xmpp/streamerror"
)

// smNS is the XEP-0198 Stream Management namespace the <r/>, <a/>, <enable/>,
// <enabled/>, <resume/>, and <resumed/> nonzas are qualified by.
const smNS = ns.SM

// AckWindowMax is the default maximum number of unacknowledged outbound
// stanzas (W(sent_acked, sent_count)) the porter will carry before forcing
// an ack round-trip, per XEP-0198 §4.
const AckWindowMax = 10

// window computes W(a, b) = (b - a) mod 2^32, the XEP-0198 ack-distance
// function; unsigned 32-bit subtraction wraps exactly the way the modular
// arithmetic requires.
func window(a, b uint32) uint32 { return b - a }

// smState is the Stream Management (XEP-0198 v3) context carried by a
// Porter: counters, the unacked outbound queue, and resumption state.
type smState struct {
	enabled   bool
	resumable bool
	id        string
	location  string
	timeout   time.Duration

	sentCount     uint32
	sentAcked     uint32
	receivedCount uint32
	outstandingR  int

	// unacked holds outbound stanzas serialized but not yet acked by the
	// peer, in send order; its length must equal window(sentAcked,
	// sentCount).
	unacked []*stanza.Stanza
}

// enable turns SM on following a successful <enabled/> from the server.
func (sm *smState) enable(id string, resumable bool, location string, timeout time.Duration) {
	sm.enabled = true
	sm.id = id
	sm.resumable = resumable
	sm.location = location
	sm.timeout = timeout
	sm.sentCount = 0
	sm.sentAcked = 0
	sm.receivedCount = 0
	sm.outstandingR = 0
	sm.unacked = nil
}

// onSent records a just-serialized stanza for ack tracking, if s is one of
// the three stanza kinds SM tracks (message, presence, iq).
func (sm *smState) onSent(s *stanza.Stanza) {
	if !sm.enabled || !isTracked(s) {
		return
	}
	sm.sentCount++
	sm.unacked = append(sm.unacked, s)
}

// onReceived increments the inbound counter SM must report in the next
// <a/>, if s is a tracked stanza kind. Per the ordering guarantee, this
// must run before the stanza is dispatched to handlers.
func (sm *smState) onReceived(s *stanza.Stanza) {
	if sm.enabled && isTracked(s) {
		sm.receivedCount++
	}
}

func isTracked(s *stanza.Stanza) bool {
	switch s.Type() {
	case stanza.TypeMessage, stanza.TypePresence, stanza.TypeIQ:
		return true
	default:
		return false
	}
}

// needsAck reports whether the outstanding ack window is wide enough (at
// least half of AckWindowMax) that the porter should proactively request
// an ack, and no earlier <r/> is still awaiting its <a/>.
func (sm *smState) needsAck() bool {
	return sm.enabled && sm.outstandingR == 0 && window(sm.sentAcked, sm.sentCount) >= AckWindowMax/2
}

// requestAck returns the <r/> Node to send, bumping outstandingR. Callers
// must not call this again until a corresponding <a/> arrives or
// outstandingR is reset.
func (sm *smState) requestAck() *stanza.Node {
	sm.outstandingR++
	return stanza.NewNode("r", smNS)
}

// handleA applies an inbound <a h='H'/>, trimming the unacked queue. It
// returns a stream error if the server has acked more than was ever sent.
func (sm *smState) handleA(h uint32) (streamerror.Error, bool) {
	if window(sm.sentAcked, h) > window(sm.sentAcked, sm.sentCount) {
		return streamerror.HandledCountTooHigh(), true
	}
	acked := window(sm.sentAcked, h)
	if int(acked) > len(sm.unacked) {
		acked = uint32(len(sm.unacked))
	}
	sm.unacked = sm.unacked[acked:]
	sm.sentAcked = h
	sm.outstandingR = 0
	return streamerror.Error{}, false
}

// handleR returns the <a h='received_count'/> Node to reply with.
func (sm *smState) handleR() *stanza.Node {
	n := stanza.NewNode("a", smNS)
	n.SetAttr("h", fmt.Sprintf("%d", sm.receivedCount))
	return n
}

// handleResumed validates a <resumed previd='…' h='H'/>, applies the ack,
// and returns the stanzas that must be replayed at the head of the send
// queue, in order.
func (sm *smState) handleResumed(previd string, h uint32) ([]*stanza.Stanza, error) {
	if previd != sm.id {
		return nil, fmt.Errorf("porter: resumption id mismatch: got %q, want %q", previd, sm.id)
	}
	if serr, bad := sm.handleA(h); bad {
		return nil, serr
	}
	replay := sm.unacked
	sm.unacked = nil
	sm.sentCount = sm.sentAcked
	return replay, nil
}

// handleFailed disables SM and drops all pending acknowledgement state
// following a <failed/>.
func (sm *smState) handleFailed() {
	sm.enabled = false
	sm.resumable = false
	sm.unacked = nil
	sm.outstandingR = 0
}

// Snapshot is a point-in-time, read-only copy of the Stream Management
// state, returned by Porter.SMState.
type Snapshot struct {
	Enabled       bool
	Resumable     bool
	ID            string
	Location      string
	Timeout       time.Duration
	SentCount     uint32
	SentAcked     uint32
	ReceivedCount uint32
	Unacked       int
}

func (sm *smState) snapshot() Snapshot {
	return Snapshot{
		Enabled:       sm.enabled,
		Resumable:     sm.resumable,
		ID:            sm.id,
		Location:      sm.location,
		Timeout:       sm.timeout,
		SentCount:     sm.sentCount,
		SentAcked:     sm.sentAcked,
		ReceivedCount: sm.receivedCount,
		Unacked:       len(sm.unacked),
	}
}
