// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package porter implements the C2S porter: the per-connection dispatcher
// that owns one framed XML stream, serializes outbound stanzas through a
// FIFO send queue, routes inbound stanzas to registered handlers by
// type/subtype/sender/pattern and priority, correlates IQ request/response
// pairs (with a spoofing check on the response's from address), and
// implements XEP-0198 Stream Management: acknowledgement windowing,
// resumption, unacked replay, and keepalives.
//
// The porter depends on two small external collaborators rather than a
// concrete transport or dialer: an io.ReadWriteCloser for the framed
// connection, and a Reconnector for resumption after an unexpected
// disconnect. Everything else — TLS/SASL negotiation, DNS resolution,
// contact interning — lives outside this package.
package porter // import "git.sr.ht/~wocky/xmpp/porter"
