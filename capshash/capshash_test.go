// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package capshash_test

import (
	"testing"

	"git.sr.ht/~wocky/xmpp/capshash"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// TestComputeSimpleExample reproduces XEP-0115 §5.2's "Simple Generation
// Example": a client advertising one identity and four features hashes to
// the verification string given in the XEP text.
func TestComputeSimpleExample(t *testing.T) {
	ver, err := capshash.Compute(
		[]string{
			"http://jabber.org/protocol/caps",
			"http://jabber.org/protocol/disco#info",
			"http://jabber.org/protocol/disco#items",
			"http://jabber.org/protocol/muc",
		},
		[]capshash.Identity{
			{Category: "client", Type: "pc", Name: "Exodus 0.9.1"},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	const want = "QgayPKawpkPSDYmwT/WM94uAlu0="
	if ver != want {
		t.Errorf("Compute() = %q, want %q", ver, want)
	}
}

func TestComputeNodeMatchesListsForm(t *testing.T) {
	query := stanza.NewNode("query", "http://jabber.org/protocol/disco#info")
	query.AppendChild(stanza.NewNode("identity", "").SetAttr("category", "client").SetAttr("type", "pc").SetAttr("name", "Exodus 0.9.1"))
	for _, f := range []string{
		"http://jabber.org/protocol/caps",
		"http://jabber.org/protocol/disco#info",
		"http://jabber.org/protocol/disco#items",
		"http://jabber.org/protocol/muc",
	} {
		query.AppendChild(stanza.NewNode("feature", "").SetAttr("var", f))
	}

	got, err := capshash.ComputeNode(query)
	if err != nil {
		t.Fatalf("ComputeNode returned error: %v", err)
	}
	const want = "QgayPKawpkPSDYmwT/WM94uAlu0="
	if got != want {
		t.Errorf("ComputeNode() = %q, want %q", got, want)
	}
}

func TestComputeDuplicateFormTypeIsError(t *testing.T) {
	form := capshash.Form{Fields: []capshash.Field{
		{Var: "FORM_TYPE", Hidden: true, Values: []string{"urn:example"}},
	}}
	_, err := capshash.Compute(nil, nil, []capshash.Form{form, form})
	if err != capshash.ErrDuplicateForm {
		t.Errorf("Compute() error = %v, want ErrDuplicateForm", err)
	}
}

func TestComputeAnonymousFieldIsError(t *testing.T) {
	form := capshash.Form{Fields: []capshash.Field{
		{Var: "FORM_TYPE", Hidden: true, Values: []string{"urn:example"}},
		{Var: "", Values: []string{"oops"}},
	}}
	_, err := capshash.Compute(nil, nil, []capshash.Form{form})
	if err != capshash.ErrAnonymousField {
		t.Errorf("Compute() error = %v, want ErrAnonymousField", err)
	}
}

func TestComputeNonHiddenFormTypeIsSkipped(t *testing.T) {
	form := capshash.Form{Fields: []capshash.Field{
		{Var: "FORM_TYPE", Hidden: false, Values: []string{"urn:example"}},
	}}
	withForm, err := capshash.Compute([]string{"a"}, nil, []capshash.Form{form})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	withoutForm, err := capshash.Compute([]string{"a"}, nil, nil)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if withForm != withoutForm {
		t.Errorf("a non-hidden FORM_TYPE form changed the hash: %q != %q", withForm, withoutForm)
	}
}
