// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~wocky/xmpp/disco"
	"git.sr.ht/~wocky/xmpp/disco/info"
	"git.sr.ht/~wocky/xmpp/disco/items"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/porter"
)

func newTestPorter(t *testing.T) (*porter.Porter, net.Conn) {
	t.Helper()
	client, remote := net.Pipe()
	local, err := jid.SafeFromString("juliet@example.com/balcony")
	if err != nil {
		t.Fatal(err)
	}
	p := porter.NewPorter(client, local, "example.com", false, nil)
	p.Start()
	t.Cleanup(func() { p.ForceCloseAsync(context.Background()) })
	return p, remote
}

func readRemote(t *testing.T, remote net.Conn) string {
	t.Helper()
	buf := make([]byte, 4096)
	remote.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := remote.Read(buf)
	if err != nil {
		t.Fatalf("reading from remote: %v", err)
	}
	return string(buf[:n])
}

func TestServeInfoAnswersQuery(t *testing.T) {
	p, remote := newTestPorter(t)
	defer remote.Close()

	disco.ServeInfo(p, func(node string) (disco.Info, error) {
		return disco.Info{
			Identities: []info.Identity{{Category: "client", Type: "bot"}},
			Features:   []info.Feature{{Var: "urn:xmpp:ping"}},
		}, nil
	})

	remote.Write([]byte("<stream:stream xmlns='jabber:client' xmlns:stream='http://etherx.jabber.org/streams'>"))
	remote.Write([]byte("<iq type='get' id='q1' from='example.com'><query xmlns='http://jabber.org/protocol/disco#info'/></iq>"))

	out := readRemote(t, remote)
	if !strings.Contains(out, "type=\"result\"") && !strings.Contains(out, "type='result'") {
		t.Errorf("reply = %q, want a result IQ", out)
	}
	if !strings.Contains(out, "urn:xmpp:ping") {
		t.Errorf("reply = %q, want the registered feature", out)
	}
}

func TestServeItemsAnswersQuery(t *testing.T) {
	p, remote := newTestPorter(t)
	defer remote.Close()

	j, err := jid.SafeFromString("rooms.example.net")
	if err != nil {
		t.Fatal(err)
	}
	disco.ServeItems(p, func(node string) ([]items.Item, error) {
		return []items.Item{{JID: j, Name: "Music", Node: "music"}}, nil
	})

	remote.Write([]byte("<stream:stream xmlns='jabber:client' xmlns:stream='http://etherx.jabber.org/streams'>"))
	remote.Write([]byte("<iq type='get' id='q1' from='example.com'><query xmlns='http://jabber.org/protocol/disco#items'/></iq>"))

	out := readRemote(t, remote)
	if !strings.Contains(out, "rooms.example.net") {
		t.Errorf("reply = %q, want the registered item's jid", out)
	}
}
