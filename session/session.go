// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package session wires an already-negotiated connection to a porter.Porter.
//
// Stream negotiation itself (resolving a server, dialing, STARTTLS, SASL,
// and resource binding) is an external collaborator's job, not this
// package's: Negotiate accepts a connection positioned right after that
// work is done — the point at which stanzas, not stream features, start
// flowing — and starts a Porter over it.
package session

import (
	"context"
	"io"

	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/porter"
)

// Resumption carries the XEP-0198 state needed to resume a previous
// stream: the id the server assigned to <enable/>, and the porter's last
// known handled-stanza counter. A nil Resumption means Negotiate starts
// the porter with Stream Management disabled.
type Resumption struct {
	ID string
	H  uint32
}

// Options configures Negotiate.
type Options struct {
	// Local is the full JID this session is bound to.
	Local jid.JID
	// ServerDomain is the authoritative domain stanzas are routed
	// against for spoof checks.
	ServerDomain string
	// Resume, if non-nil, starts the porter with Stream Management
	// already enabled (the connector is expected to have completed the
	// <enable/>/<enabled/> exchange, or the <resume/>/<resumed/>
	// exchange on reconnect, before calling Negotiate).
	Resume *Resumption
	// Reconnector, if non-nil, is consulted by the porter to resume the
	// stream after an unexpected disconnect. See porter.Reconnector.
	Reconnector porter.Reconnector
}

// Session is the minimal glue between a negotiated connection and the
// porter that serves it.
type Session struct {
	Porter *porter.Porter
}

// Negotiate constructs a Session by starting a porter.Porter over conn.
// It performs no stream negotiation of its own: conn must already be an
// open, authenticated XMPP stream (TLS and SASL complete, resource bound)
// per the connector interfaces this package treats as external.
func Negotiate(ctx context.Context, conn io.ReadWriteCloser, opts Options) (*Session, error) {
	smEnabled := opts.Resume != nil
	p := porter.NewPorter(conn, opts.Local, opts.ServerDomain, smEnabled, opts.Reconnector)
	p.Start()
	return &Session{Porter: p}, nil
}

// Close closes the underlying porter's stream with CloseAsync and returns
// its result; it does not wait for the remote end to acknowledge the
// close.
func (s *Session) Close(ctx context.Context) error {
	return <-s.Porter.CloseAsync(ctx)
}
