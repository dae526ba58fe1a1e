// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmpperror_test

import (
	"testing"

	"git.sr.ht/~wocky/xmpp/stanza"
	"git.sr.ht/~wocky/xmpp/stanza/xmpperror"
)

func TestNodeRoundTrip(t *testing.T) {
	e := xmpperror.New(xmpperror.ItemNotFound, "no such node")
	n := e.Node()

	got, ok := xmpperror.FromNode(n)
	if !ok {
		t.Fatal("FromNode failed to decode a node we just built")
	}
	if got.Condition != xmpperror.ItemNotFound {
		t.Errorf("Condition = %q, want %q", got.Condition, xmpperror.ItemNotFound)
	}
	if got.Text != "no such node" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Type != xmpperror.Cancel {
		t.Errorf("Type = %v, want Cancel", got.Type)
	}
}

func TestLegacyCodeRoundTrip(t *testing.T) {
	cases := []xmpperror.Condition{
		xmpperror.BadRequest,
		xmpperror.NotAuthorized,
		xmpperror.ItemNotFound,
		xmpperror.Conflict,
		xmpperror.FeatureNotImplemented,
	}
	for _, c := range cases {
		code := xmpperror.LegacyCode(c)
		if code == 0 {
			t.Errorf("LegacyCode(%q) = 0, want a nonzero legacy code", c)
			continue
		}
		if got := xmpperror.FromLegacyCode(code); got != c {
			t.Errorf("FromLegacyCode(%d) = %q, want %q", code, got, c)
		}
	}
}

func TestFromLegacyCodeUnknown(t *testing.T) {
	if got := xmpperror.FromLegacyCode(999); got != xmpperror.UndefinedCondition {
		t.Errorf("FromLegacyCode(999) = %q, want UndefinedCondition", got)
	}
}

func TestBuildIQError(t *testing.T) {
	req, err := stanza.Build(stanza.TypeIQ, stanza.SubTypeGet,
		stanza.SetAttr("id", "42"),
		stanza.SetAttr("to", "server.example"),
		stanza.SetAttr("from", "romeo@example.com/orchard"),
		stanza.Elem("query"),
		stanza.NSDecl("jabber:iq:roster"),
	)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := xmpperror.BuildIQError(req, xmpperror.ServiceUnavailable, "")
	if err != nil {
		t.Fatal(err)
	}
	if reply.SubType() != stanza.SubTypeError {
		t.Fatalf("SubType() = %v, want SubTypeError", reply.SubType())
	}
	if reply.ID() != "42" {
		t.Errorf("ID() = %q, want 42", reply.ID())
	}
	if reply.From() != "server.example" || reply.To() != "romeo@example.com/orchard" {
		t.Errorf("from/to not swapped: from=%q to=%q", reply.From(), reply.To())
	}
	if len(reply.Root().Children) != 2 {
		t.Fatalf("expected 2 children (copied query + error), got %d", len(reply.Root().Children))
	}
	if reply.Root().Children[0].Name != "query" {
		t.Errorf("first child = %q, want the copied query element", reply.Root().Children[0].Name)
	}
	if reply.Root().Children[1].Name != "error" {
		t.Errorf("second child = %q, want error", reply.Root().Children[1].Name)
	}
}

func TestBuildIQResult(t *testing.T) {
	req, err := stanza.Build(stanza.TypeIQ, stanza.SubTypeGet,
		stanza.SetAttr("id", "7"),
		stanza.SetAttr("to", "server.example"),
		stanza.SetAttr("from", "romeo@example.com/orchard"),
	)
	if err != nil {
		t.Fatal(err)
	}
	query := stanza.NewNode("query", "jabber:iq:roster")
	reply, err := xmpperror.BuildIQResult(req, query)
	if err != nil {
		t.Fatal(err)
	}
	if reply.SubType() != stanza.SubTypeResult {
		t.Fatalf("SubType() = %v, want SubTypeResult", reply.SubType())
	}
	if reply.From() != "server.example" || reply.To() != "romeo@example.com/orchard" {
		t.Errorf("from/to not swapped: from=%q to=%q", reply.From(), reply.To())
	}
}
