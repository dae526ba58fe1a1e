// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ns provides namespace constants shared across the stack.
package ns // import "git.sr.ht/~wocky/xmpp/internal/ns"

// List of commonly used namespaces.
const (
	Client    = "jabber:client"
	Server    = "jabber:server"
	Stream    = "http://etherx.jabber.org/streams"
	StreamErr = "urn:ietf:params:xml:ns:xmpp-streams"
	StanzaErr = "urn:ietf:params:xml:ns:xmpp-stanzas"
	XML       = "http://www.w3.org/XML/1998/namespace"
	Bind      = "urn:ietf:params:xml:ns:xmpp-bind"
	SASL      = "urn:ietf:params:xml:ns:xmpp-sasl"
	StartTLS  = "urn:ietf:params:xml:ns:xmpp-tls"

	// SM is the XEP-0198 Stream Management namespace (v3).
	SM = "urn:xmpp:sm:3"

	// DiscoInfo and DiscoItems are the XEP-0030 Service Discovery namespaces.
	DiscoInfo  = "http://jabber.org/protocol/disco#info"
	DiscoItems = "http://jabber.org/protocol/disco#items"

	// Caps is the XEP-0115 Entity Capabilities namespace.
	Caps = "http://jabber.org/protocol/caps"

	// Data is the XEP-0004 Data Forms namespace.
	Data = "jabber:x:data"

	// PubSubEvent is the payload namespace used by PEP notifications.
	PubSubEvent = "http://jabber.org/protocol/pubsub#event"

	// GoogleAuth is an example of a foreign attribute namespace that ships
	// with a conventional short prefix baked in rather than a generated one.
	GoogleAuth = "http://www.google.com/talk/protocol/auth"
)

// PowerSavingDeferrable lists PEP payload namespaces considered unimportant
// for the purposes of power-saving deferral (see the porter package): a
// fixed set of small, bandwidth-sensitive personal-eventing namespaces.
var PowerSavingDeferrable = []string{
	"http://jabber.org/protocol/geoloc",
	"http://jabber.org/protocol/nick",
	"http://laptop.org/xmpp/buddy-properties",
	"http://laptop.org/xmpp/activities",
	"http://laptop.org/xmpp/current-activity",
	"http://laptop.org/xmpp/activity-properties",
}

// DefaultAttrPrefixes seeds the writer's namespace-to-prefix table with
// well-known short prefixes instead of a generated one.
var DefaultAttrPrefixes = map[string]string{
	GoogleAuth: "ga",
}
