// Copyright 2014 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmpp provides shared configuration for the Extensible Messaging
// and Presence Protocol, formerly known as "Jabber".
//
// The module is subdivided by concern: jid implements RFC 7622 addresses;
// stanza and streamerror implement the wire format and error taxonomy;
// xmlcodec implements the incremental reader/writer pair; porter is the
// per-connection dispatcher built on top of it; session wires a
// negotiated connection to a porter.Porter; disco, form, capshash, and
// capscache implement service discovery, data forms, and the XEP-0115
// capabilities hash and cache. This package holds the Config type shared
// across those packages' connectors.
//
// Be advised: This API is still unstable and is subject to change.
package xmpp // import "git.sr.ht/~wocky/xmpp"
