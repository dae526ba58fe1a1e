// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package porter

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sync"

	"mellium.im/xmlstream"

	"git.sr.ht/~wocky/xmpp/internal/attr"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/stanza"
	"git.sr.ht/~wocky/xmpp/stanza/xmpperror"
	"git.sr.ht/~wocky/xmpp/streamerror"
	"git.sr.ht/~wocky/xmpp/xmlcodec"
)

// Reconnector is the porter's sole collaborator for reconnection: it knows
// how to obtain a fresh transport and how to continue a negotiation the
// porter itself has no business knowing about (TLS, SASL, resource
// binding). It mirrors the teacher's dial/Session split: the porter
// depends only on this interface, never on a concrete dialer.
type Reconnector interface {
	// Resume returns a new connection to resume the stream on, after an
	// unexpected disconnect.
	Resume(ctx context.Context) (io.ReadWriteCloser, error)
	// Continue is called once the new connection's stream has been
	// reopened and negotiated far enough to attempt <resume/>; it gives
	// the collaborator a chance to observe or veto the attempt.
	Continue(ctx context.Context) error
}

// Porter owns exactly one framed XML connection plus its Stream
// Management context: a FIFO send queue served by one outstanding write, a
// single outstanding read dispatched to registered handlers, IQ
// request/response correlation, and XEP-0198 acknowledgement and
// resumption.
type Porter struct {
	local        jid.JID
	serverDomain string

	mu      sync.Mutex
	conn    io.ReadWriteCloser
	w       *xmlcodec.Writer
	r       *xmlcodec.Reader
	sm      smState
	started bool
	closed  bool

	reconnector Reconnector

	reg     *registry
	queue   *sendQueue
	pending map[string]*pendingIQ

	events chan error // remote-error / remote-closed notifications, best-effort
}

type pendingIQ struct {
	ch    chan IQResult
	reqTo string
}

// NewPorter constructs a Porter over conn, addressed as local (the user's
// full JID) and talking to serverDomain. If smEnabled is true, the porter
// starts with Stream Management already negotiated (the connector
// collaborator is expected to have done the <enable/>/<enabled/> exchange
// before handing the porter its connection).
func NewPorter(conn io.ReadWriteCloser, local jid.JID, serverDomain string, smEnabled bool, reconnector Reconnector) *Porter {
	p := &Porter{
		local:        local,
		serverDomain: serverDomain,
		conn:         conn,
		w:            xmlcodec.NewWriter(),
		r:            xmlcodec.NewReader(),
		reg:          newRegistry(),
		queue:        newSendQueue(),
		pending:      make(map[string]*pendingIQ),
		reconnector:  reconnector,
		events:       make(chan error, 1),
	}
	if smEnabled {
		p.sm.enabled = true
	}
	return p
}

// Events returns a best-effort, coalesced channel of remote-error /
// remote-closed notifications.
func (p *Porter) Events() <-chan error { return p.events }

func (p *Porter) notify(err error) {
	select {
	case p.events <- err:
	default:
	}
}

// Start begins the send and receive loops. It is idempotent.
func (p *Porter) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.sendLoop()
	go p.readLoop()
	go p.dispatchLoop()
}

// sendLoop is the single goroutine issuing writes; it serves the queue
// strictly FIFO, one write outstanding at a time.
func (p *Porter) sendLoop() {
	for {
		it, ok := p.queue.pop()
		if !ok {
			return
		}
		if it.ctx != nil && it.ctx.Err() != nil {
			it.result <- Result{Err: it.ctx.Err()}
			close(it.result)
			continue
		}

		out, err := p.w.WriteStanza(it.stanza)
		if err != nil {
			it.result <- Result{Err: err}
			close(it.result)
			continue
		}
		if _, err := p.conn.Write(out); err != nil {
			p.queue.drain(err)
			it.result <- Result{Err: err}
			close(it.result)
			p.notify(err)
			return
		}

		p.mu.Lock()
		p.sm.onSent(it.stanza)
		needAck := p.sm.needsAck()
		p.mu.Unlock()
		if needAck {
			p.sendRaw(p.sm.requestAck())
		}

		it.result <- Result{}
		close(it.result)
	}
}

// sendRaw writes a bare Node (an SM nonza) directly, bypassing the
// tracked-stanza send queue.
func (p *Porter) sendRaw(n *stanza.Node) {
	out, err := p.w.WriteNodeTree(stanza.NewNodeTree(n))
	if err != nil {
		return
	}
	p.conn.Write(out)
}

// readLoop pumps raw bytes from the connection into the incremental
// reader; xmlcodec.Reader's own background goroutine does the decoding.
func (p *Porter) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			p.r.Push(buf[:n])
		}
		if err != nil {
			if p.reconnect(err) {
				return
			}
			p.notify(err)
			return
		}
	}
}

// reconnect attempts XEP-0198 §3 stream resumption after an unexpected
// read error: it asks the reconnector for a fresh transport, resets the
// incremental reader onto it, lets the reconnector negotiate the new
// stream up to the point of a <resume/>, then sends it. The server's
// <resumed/> (handled by handleSM as it always is) replays any unacked
// stanzas via the normal send queue. It reports whether a new read/
// dispatch loop generation was started; the caller's own loop must
// return either way.
func (p *Porter) reconnect(origErr error) bool {
	p.mu.Lock()
	closed := p.closed
	resumable := p.sm.resumable
	reconnector := p.reconnector
	previd := p.sm.id
	h := p.sm.receivedCount
	p.mu.Unlock()

	if closed || !resumable || reconnector == nil {
		return false
	}

	ctx := context.Background()
	conn, err := reconnector.Resume(ctx)
	if err != nil {
		p.notify(fmt.Errorf("porter: resume after %v: %w", origErr, err))
		return false
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	p.r.Reset()

	if err := reconnector.Continue(ctx); err != nil {
		p.notify(fmt.Errorf("porter: resume negotiation: %w", err))
		return false
	}

	resume := stanza.NewNode("resume", smNS).
		SetAttr("previd", previd).
		SetAttr("h", fmt.Sprintf("%d", h))
	p.sendRaw(resume)

	go p.readLoop()
	go p.dispatchLoop()
	return true
}

// dispatchLoop drains stanzas from the reader's ready queue and routes
// them. It binds to the reader's current notify channel for its entire
// run; a reconnect's call to (*xmlcodec.Reader).Reset swaps that channel
// out from under it, so reconnect starts a fresh dispatchLoop generation
// rather than expecting this one to notice the swap.
func (p *Porter) dispatchLoop() {
	for range p.r.Ready() {
		for {
			s, ok := p.r.PopStanza()
			if !ok {
				break
			}
			if s == nil {
				return
			}
			p.handleInbound(s)
		}
	}
}

func (p *Porter) handleInbound(s *stanza.Stanza) {
	if s.Type() == stanza.TypeStreamError {
		p.notify(fmt.Errorf("porter: remote stream error: %s", s.Root().Name))
		return
	}

	if s.Root().Namespace() == smNS {
		p.handleSM(s.Root())
		return
	}

	tracked := isTracked(s)
	if tracked {
		p.mu.Lock()
		p.sm.onReceived(s)
		p.mu.Unlock()
	}

	if (s.Type() == stanza.TypeIQ) && (s.SubType() == stanza.SubTypeResult || s.SubType() == stanza.SubTypeError) {
		if p.resolveIQ(s) {
			return
		}
	}

	claimed := p.reg.dispatch(s, p.local, p.serverDomain)
	if !claimed && s.Type() == stanza.TypeIQ && (s.SubType() == stanza.SubTypeGet || s.SubType() == stanza.SubTypeSet) {
		reply, err := xmpperror.BuildIQError(s, xmpperror.ServiceUnavailable, "")
		if err == nil {
			p.SendAsync(context.Background(), reply)
		}
	}
}

// handleSM routes an inbound Stream Management nonza (r/a/enabled/
// resumed/failed) to the SM context, replying or closing as required.
func (p *Porter) handleSM(n *stanza.Node) {
	switch n.Name {
	case "r":
		p.mu.Lock()
		reply := p.sm.handleR()
		p.mu.Unlock()
		p.sendRaw(reply)

	case "a":
		hStr, _ := n.Attr("h")
		var h uint32
		fmt.Sscanf(hStr, "%d", &h)
		p.mu.Lock()
		serr, bad := p.sm.handleA(h)
		p.mu.Unlock()
		if bad {
			p.closeWithStreamError(serr)
		}

	case "enabled":
		id, _ := n.Attr("id")
		resumeAttr, _ := n.Attr("resume")
		location, _ := n.Attr("location")
		p.mu.Lock()
		p.sm.enable(id, resumeAttr == "true" || resumeAttr == "1", location, 0)
		p.mu.Unlock()

	case "resumed":
		previd, _ := n.Attr("previd")
		hStr, _ := n.Attr("h")
		var h uint32
		fmt.Sscanf(hStr, "%d", &h)
		p.mu.Lock()
		replay, err := p.sm.handleResumed(previd, h)
		p.mu.Unlock()
		if err != nil {
			p.notify(err)
			return
		}
		items := make([]*sendItem, 0, len(replay))
		for _, s := range replay {
			items = append(items, &sendItem{stanza: s, result: make(chan Result, 1)})
		}
		p.queue.mu.Lock()
		if !p.queue.closed {
			p.queue.items = append(items, p.queue.items...)
			p.queue.cond.Signal()
		}
		p.queue.mu.Unlock()
		p.mu.Lock()
		req := p.sm.requestAck()
		p.mu.Unlock()
		p.sendRaw(req)

	case "failed":
		p.mu.Lock()
		p.sm.handleFailed()
		p.mu.Unlock()
	}
}

// closeWithStreamError emits a fatal stream error and force-closes.
func (p *Porter) closeWithStreamError(serr streamerror.Error) {
	enc := xml.NewEncoder(p.conn)
	if _, err := xmlstream.Copy(enc, serr.TokenReader()); err == nil {
		enc.Flush()
	}
	p.ForceCloseAsync(context.Background())
}

// resolveIQ matches an inbound iq result/error against a pending
// SendIQAsync, applying the from/to spoofing check from the receive-path
// contract. It reports whether the stanza was consumed as a reply (found
// a pending id, spoof check included — a failing check still consumes the
// stanza, dropping it rather than dispatching it to handlers, and leaves
// the request pending so a genuine reply can still complete it).
func (p *Porter) resolveIQ(s *stanza.Stanza) bool {
	id := s.ID()
	p.mu.Lock()
	pend, ok := p.pending[id]
	spoofed := ok && !p.spoofOK(pend.reqTo, s.From())
	if ok && !spoofed {
		delete(p.pending, id)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	if spoofed {
		return true
	}
	pend.ch <- IQResult{Stanza: s}
	close(pend.ch)
	return true
}

// spoofOK implements the IQ-reply spoofing check: the response's from
// must equal the request's to, with the server-domain and own-JID
// exceptions the receive path allows.
func (p *Porter) spoofOK(reqTo, from string) bool {
	isOwn := func(v string) bool {
		if v == "" {
			return false
		}
		if p.local != nil && (v == p.local.String() || v == p.local.Bare().String()) {
			return true
		}
		return v == p.serverDomain
	}

	if reqTo == "" {
		return from == "" || isOwn(from)
	}
	if from == "" {
		return reqTo == p.serverDomain || isOwn(reqTo)
	}
	if from == reqTo {
		return true
	}
	if isOwn(reqTo) && isOwn(from) {
		return true
	}
	return false
}

// SendAsync enqueues s for serialization and returns a channel that
// receives exactly one Result once the write completes (or the send is
// cancelled, or the porter closes).
func (p *Porter) SendAsync(ctx context.Context, s *stanza.Stanza) <-chan Result {
	ch := make(chan Result, 1)
	ok := p.queue.push(&sendItem{ctx: ctx, stanza: s, result: ch})
	if !ok {
		ch <- Result{Err: ErrClosed}
		close(ch)
	}
	return ch
}

// SendIQAsync assigns a fresh id to iq (overwriting any existing one),
// enqueues it like SendAsync, and additionally completes the returned
// channel with the matching response stanza once one arrives.
func (p *Porter) SendIQAsync(ctx context.Context, iqStanza *stanza.Stanza) <-chan IQResult {
	out := make(chan IQResult, 1)

	id := p.nextID()
	iqStanza.Root().SetAttr("id", id)

	p.mu.Lock()
	p.pending[id] = &pendingIQ{ch: make(chan IQResult, 1), reqTo: iqStanza.To()}
	waiter := p.pending[id].ch
	p.mu.Unlock()

	sendCh := p.SendAsync(ctx, iqStanza)
	go func() {
		res := <-sendCh
		if res.Err != nil {
			p.mu.Lock()
			delete(p.pending, id)
			p.mu.Unlock()
			out <- IQResult{Err: res.Err}
			close(out)
			return
		}
		select {
		case r, ok := <-waiter:
			if !ok {
				out <- IQResult{Err: ErrForciblyClosed}
			} else {
				out <- r
			}
		case <-ctx.Done():
			p.mu.Lock()
			delete(p.pending, id)
			p.mu.Unlock()
			out <- IQResult{Err: ctx.Err()}
		}
		close(out)
	}()
	return out
}

// nextID returns a fresh id guaranteed not to collide with any currently
// outstanding SendIQAsync id.
func (p *Porter) nextID() string {
	for {
		id := attr.RandomID()
		p.mu.Lock()
		_, collide := p.pending[id]
		p.mu.Unlock()
		if !collide {
			return id
		}
	}
}

// RegisterHandler adds a handler to the dispatch registry. typ == 0
// (stanza.TypeUnknown) matches any stanza type; pattern, if non-nil,
// additionally requires the inbound stanza's root to be a superset of it.
func (p *Porter) RegisterHandler(match SenderMatch, typ stanza.Type, sub stanza.SubType, hasSub bool, priority int, senderJID jid.JID, senderFull bool, pattern *stanza.Node, fn HandlerFunc) HandlerID {
	return p.reg.register(&handlerEntry{
		typ:        typ,
		hasSub:     hasSub,
		sub:        sub,
		match:      match,
		senderJID:  senderJID,
		senderFull: senderFull,
		priority:   priority,
		pattern:    pattern,
		fn:         fn,
	})
}

// UnregisterHandler removes a previously registered handler.
func (p *Porter) UnregisterHandler(id HandlerID) { p.reg.unregister(id) }

// EnablePowerSaving toggles the deferral queue; disabling it redispatches
// every deferred stanza, in arrival order, ahead of anything else.
func (p *Porter) EnablePowerSaving(on bool) {
	flushed := p.reg.setPowerSaving(on)
	for _, s := range flushed {
		p.reg.dispatch(s, p.local, p.serverDomain)
	}
}

// SMState returns a point-in-time snapshot of the Stream Management
// context.
func (p *Porter) SMState() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sm.snapshot()
}

// LocalJID returns the porter's full JID.
func (p *Porter) LocalJID() jid.JID { return p.local }

// BareJID returns the porter's bare JID.
func (p *Porter) BareJID() jid.JID {
	if p.local == nil {
		return nil
	}
	return p.local.Bare()
}

// Resource returns the porter's bound resourcepart.
func (p *Porter) Resource() string {
	if p.local == nil {
		return ""
	}
	return p.local.Resourcepart()
}

// SendWhitespacePingAsync emits a keepalive: a single whitespace byte when
// SM is off, or a tracked <r/> when SM is on. If two <r/> requests are
// already outstanding, it concludes the peer is gone and force-closes
// instead.
func (p *Porter) SendWhitespacePingAsync(ctx context.Context) <-chan error {
	out := make(chan error, 1)
	p.mu.Lock()
	enabled := p.sm.enabled
	outstanding := p.sm.outstandingR
	p.mu.Unlock()

	if !enabled {
		_, err := p.conn.Write([]byte(" "))
		out <- err
		close(out)
		return out
	}
	if outstanding >= 2 {
		go func() { out <- (<-p.ForceCloseAsync(ctx)); close(out) }()
		return out
	}
	p.mu.Lock()
	n := p.sm.requestAck()
	p.mu.Unlock()
	p.sendRaw(n)
	out <- nil
	close(out)
	return out
}

// CloseAsync shuts the stream down: unless SM will resume this session it
// completes every still-queued send with ErrClosed, then flushes the
// writer, emits </stream:stream> and closes the transport. It does not
// move unacked stanzas back onto the send queue, does not wait for queued
// sends to be written, and does not wait for the remote peer to close.
func (p *Porter) CloseAsync(ctx context.Context) <-chan error {
	out := make(chan error, 1)
	go func() {
		p.mu.Lock()
		closed := p.closed
		p.closed = true
		resumable := p.sm.resumable
		p.mu.Unlock()
		if closed {
			out <- ErrClosed
			close(out)
			return
		}

		if !resumable {
			p.queue.drain(ErrClosed)
		}
		p.w.Flush()
		if _, err := p.conn.Write(p.w.StreamClose()); err != nil {
			out <- err
			close(out)
			return
		}
		out <- p.conn.Close()
		close(out)
	}()
	return out
}

// ForceCloseAsync tears the connection down immediately, completing every
// outstanding SendAsync/SendIQAsync future with ErrForciblyClosed.
func (p *Porter) ForceCloseAsync(ctx context.Context) <-chan error {
	out := make(chan error, 1)
	go func() {
		p.mu.Lock()
		p.closed = true
		pending := p.pending
		p.pending = make(map[string]*pendingIQ)
		p.mu.Unlock()

		p.queue.drain(ErrForciblyClosed)
		for _, pend := range pending {
			close(pend.ch)
		}
		out <- p.conn.Close()
		close(out)
	}()
	return out
}
