// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package session_test

import (
	"context"
	"io"
	"net"
	"testing"

	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/session"
)

func TestNegotiateStartsPorter(t *testing.T) {
	client, remote := net.Pipe()
	defer remote.Close()

	local, err := jid.SafeFromString("juliet@example.com/balcony")
	if err != nil {
		t.Fatal(err)
	}

	s, err := session.Negotiate(context.Background(), client, session.Options{
		Local:        local,
		ServerDomain: "example.com",
	})
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if s.Porter == nil {
		t.Fatal("Negotiate() returned a nil Porter")
	}
	if got := s.Porter.LocalJID(); got.String() != local.String() {
		t.Errorf("LocalJID() = %v, want %v", got, local)
	}

	go io.Copy(io.Discard, remote)
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNegotiateEnablesStreamManagementWithResume(t *testing.T) {
	client, remote := net.Pipe()
	defer remote.Close()

	local, err := jid.SafeFromString("juliet@example.com/balcony")
	if err != nil {
		t.Fatal(err)
	}

	s, err := session.Negotiate(context.Background(), client, session.Options{
		Local:        local,
		ServerDomain: "example.com",
		Resume:       &session.Resumption{ID: "abc123", H: 0},
	})
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !s.Porter.SMState().Enabled {
		t.Error("SMState().Enabled = false, want true when Options.Resume is set")
	}
	s.Porter.ForceCloseAsync(context.Background())
}
