// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import "testing"

func TestValidSubType(t *testing.T) {
	cases := []struct {
		typ   Type
		sub   SubType
		valid bool
	}{
		{TypeMessage, SubTypeChat, true},
		{TypeMessage, SubTypeGet, false},
		{TypePresence, SubTypeNone, true},
		{TypePresence, SubTypeSubscribe, true},
		{TypePresence, SubTypeChat, false},
		{TypeIQ, SubTypeGet, true},
		{TypeIQ, SubTypeSet, true},
		{TypeIQ, SubTypeResult, true},
		{TypeIQ, SubTypeNone, false},
		{TypeStreamError, SubTypeNone, true},
		{TypeStreamError, SubTypeError, false},
	}
	for _, c := range cases {
		if got := ValidSubType(c.typ, c.sub); got != c.valid {
			t.Errorf("ValidSubType(%v, %v) = %v, want %v", c.typ, c.sub, got, c.valid)
		}
	}
}

func TestNewStanzaDecodesTypeAndSubType(t *testing.T) {
	root := NewNode("iq", "jabber:client")
	root.SetAttr("type", "get")
	root.SetAttr("id", "1")
	root.SetAttr("to", "juliet@example.com")
	root.SetAttr("from", "romeo@example.com")

	s, err := NewStanza(NewNodeTree(root))
	if err != nil {
		t.Fatal(err)
	}
	if s.Type() != TypeIQ {
		t.Errorf("Type() = %v, want TypeIQ", s.Type())
	}
	if s.SubType() != SubTypeGet {
		t.Errorf("SubType() = %v, want SubTypeGet", s.SubType())
	}
	if s.ID() != "1" {
		t.Errorf("ID() = %q, want 1", s.ID())
	}
	if s.To() != "juliet@example.com" {
		t.Errorf("To() = %q", s.To())
	}
	if s.From() != "romeo@example.com" {
		t.Errorf("From() = %q", s.From())
	}
}

func TestNewStanzaRejectsIllegalSubType(t *testing.T) {
	root := NewNode("iq", "jabber:client")
	// iq with no type attribute is not a legal combination.
	if _, err := NewStanza(NewNodeTree(root)); err == nil {
		t.Fatal("expected an error for an iq with no type attribute")
	}
}

func TestNewStanzaNilTree(t *testing.T) {
	if _, err := NewStanza(nil); err == nil {
		t.Fatal("expected an error for a nil tree")
	}
	if _, err := NewStanza(NewNodeTree(nil)); err == nil {
		t.Fatal("expected an error for a tree with a nil root")
	}
}

func TestSenderRecipientRoundTrip(t *testing.T) {
	root := NewNode("message", "jabber:client")
	root.SetAttr("type", "chat")
	s, err := NewStanza(NewNodeTree(root))
	if err != nil {
		t.Fatal(err)
	}
	if s.Sender() != nil || s.Recipient() != nil {
		t.Fatal("sender/recipient should start out unset")
	}
	s.SetSender("romeo")
	s.SetRecipient("juliet")
	if s.Sender() != "romeo" || s.Recipient() != "juliet" {
		t.Fatal("sender/recipient did not round trip")
	}
}
