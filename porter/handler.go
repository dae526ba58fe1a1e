// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package porter

import (
	"sort"
	"sync"

	"git.sr.ht/~wocky/xmpp/internal/ns"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// SenderMatch constrains which stanzas a registered handler is offered,
// based on the stanza's from address.
type SenderMatch int

const (
	// Anyone matches a stanza regardless of its from address.
	Anyone SenderMatch = iota
	// Server matches a stanza whose from attribute is absent, or equal to
	// the user's full JID, the user's bare JID, or the connected server's
	// bare domain.
	Server
	// SenderJID matches a stanza whose from address shares the bare JID
	// given at registration time; when the handler was registered with
	// senderFull set, the full JID must match exactly, otherwise any
	// resource (or no resource) matches.
	SenderJID
)

// HandlerID identifies a single registered handler, returned by
// RegisterHandler for use with UnregisterHandler.
type HandlerID uint64

// HandlerFunc processes one inbound stanza matched to a handler. A true
// return claims the stanza (stopping further dispatch, and for unanswered
// iq get/set requests, suppressing the automatic service-unavailable
// reply); false lets dispatch continue to the next matching handler in
// priority order.
type HandlerFunc func(s *stanza.Stanza) bool

// handlerEntry is one registry row, matching the StanzaHandler shape: a
// type/subtype filter, a sender-match rule with optional JID, a priority,
// an optional pattern subtree the stanza's root must be a superset of, and
// the callback itself.
type handlerEntry struct {
	id HandlerID

	typ    stanza.Type
	hasSub bool
	sub    stanza.SubType

	match      SenderMatch
	senderJID  jid.JID
	senderFull bool // when match == SenderJID, require an exact resource match

	priority int
	pattern  *stanza.Node

	fn HandlerFunc
}

func (h *handlerEntry) matchesType(s *stanza.Stanza) bool {
	if h.typ != stanza.TypeUnknown && s.Type() != h.typ {
		return false
	}
	if h.hasSub && s.SubType() != h.sub {
		return false
	}
	return true
}

func (h *handlerEntry) matchesSender(s *stanza.Stanza, local jid.JID, serverDomain string) bool {
	switch h.match {
	case Anyone:
		return true
	case Server:
		from := s.From()
		if from == "" {
			return true
		}
		if local != nil && (from == local.String() || from == local.Bare().String()) {
			return true
		}
		return from == serverDomain
	case SenderJID:
		from := s.From()
		if from == "" || h.senderJID == nil {
			return false
		}
		fj, err := jid.SafeFromString(from)
		if err != nil {
			return false
		}
		if !fj.Bare().Equal(h.senderJID.Bare()) {
			return false
		}
		if h.senderFull {
			return fj.Equal(h.senderJID)
		}
		return true
	default:
		return false
	}
}

func (h *handlerEntry) matchesPattern(s *stanza.Stanza) bool {
	if h.pattern == nil {
		return true
	}
	return s.Root().IsSuperset(h.pattern)
}

// registry is the priority-ordered table of handlers a Porter dispatches
// inbound stanzas against, plus the deferral queue power-saving mode
// redirects matched-but-deferrable stanzas into.
type registry struct {
	mu      sync.Mutex
	nextID  HandlerID
	entries []*handlerEntry

	powerSaving bool
	deferred    []*stanza.Stanza
}

func newRegistry() *registry { return &registry{} }

// register inserts a handler and keeps entries sorted by descending
// priority (higher priority runs first); within equal priority, insertion
// order is preserved.
func (r *registry) register(e *handlerEntry) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.id = r.nextID
	r.entries = append(r.entries, e)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].priority > r.entries[j].priority
	})
	return e.id
}

func (r *registry) unregister(id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// setPowerSaving toggles deferral mode. Disabling it returns every
// deferred stanza in original receive order, for the caller to redeliver
// through dispatch.
func (r *registry) setPowerSaving(on bool) []*stanza.Stanza {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.powerSaving = on
	if on {
		return nil
	}
	flushed := r.deferred
	r.deferred = nil
	return flushed
}

// deferrable reports whether a stanza may be queued rather than dispatched
// immediately while power saving is enabled: a subtype-less or
// 'unavailable' presence, or a message carrying one of the fixed set of
// PEP event-notification payloads (geoloc, nick, Sugar buddy properties,
// activities, current-activity, activity-properties), is unimportant;
// everything else, including iq traffic and direct messages, is not.
func deferrable(s *stanza.Stanza) bool {
	switch s.Type() {
	case stanza.TypePresence:
		return s.SubType() == stanza.SubTypeNone || s.SubType() == stanza.SubTypeUnavailable
	case stanza.TypeMessage:
		return isPEPEvent(s.Root())
	default:
		return false
	}
}

// isPEPEvent reports whether root carries a pubsub#event <event/> child
// with an items/notification payload in one of the power-saving-deferrable
// namespaces.
func isPEPEvent(root *stanza.Node) bool {
	event := root.Child("event", ns.PubSubEvent)
	if event == nil {
		return false
	}
	for _, payloadNS := range ns.PowerSavingDeferrable {
		found := false
		event.Each(func(c *stanza.Node) {
			if c.Namespace() == payloadNS {
				found = true
			}
			c.Each(func(gc *stanza.Node) {
				if gc.Namespace() == payloadNS {
					found = true
				}
			})
		})
		if found {
			return true
		}
	}
	return false
}

// dispatch runs a stanza through the registry. It returns true if some
// handler claimed the stanza (or it was deferred), and false if nothing
// matched and, for iq get/set, the caller should send the automatic
// service-unavailable reply. A stanza that is not deferred is preceded by
// every stanza deferred so far, dispatched in arrival order; the return
// value concerns s alone.
func (r *registry) dispatch(s *stanza.Stanza, local jid.JID, serverDomain string) bool {
	r.mu.Lock()
	if r.powerSaving && deferrable(s) {
		r.deferred = append(r.deferred, s)
		r.mu.Unlock()
		return true
	}
	flushed := r.deferred
	r.deferred = nil
	entries := make([]*handlerEntry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	claimed := false
	for _, st := range append(flushed, s) {
		claimed = false
		for _, e := range entries {
			if !e.matchesType(st) || !e.matchesSender(st, local, serverDomain) || !e.matchesPattern(st) {
				continue
			}
			if e.fn(st) {
				claimed = true
				break
			}
		}
	}
	return claimed
}
