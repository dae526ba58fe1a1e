// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco_test

import (
	"testing"

	"git.sr.ht/~wocky/xmpp/disco"
	"git.sr.ht/~wocky/xmpp/disco/info"
	"git.sr.ht/~wocky/xmpp/form"
)

func TestInfoHashSimpleExample(t *testing.T) {
	i := disco.Info{
		Identities: []info.Identity{{Category: "client", Type: "pc", Name: "Exodus 0.9.1"}},
		Features: []info.Feature{
			{Var: "http://jabber.org/protocol/caps"},
			{Var: "http://jabber.org/protocol/disco#info"},
			{Var: "http://jabber.org/protocol/disco#items"},
			{Var: "http://jabber.org/protocol/muc"},
		},
	}
	got, err := i.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	const want = "QgayPKawpkPSDYmwT/WM94uAlu0="
	if got != want {
		t.Errorf("Hash() = %q, want %q", got, want)
	}
}

func TestInfoNodeParseRoundTrip(t *testing.T) {
	i := disco.Info{
		Identities: []info.Identity{{Category: "client", Type: "bot", Name: "test bot"}},
		Features:   []info.Feature{{Var: "urn:xmpp:ping"}},
		Forms: []*form.Data{form.New(
			form.Hidden("FORM_TYPE", form.Value("urn:xmpp:dataforms:softwareinfo")),
			form.TextSingle("os", form.Value("Linux")),
		)},
	}
	n, err := i.ToNode()
	if err != nil {
		t.Fatalf("node: %v", err)
	}

	got, err := disco.ParseInfo(n)
	if err != nil {
		t.Fatalf("ParseInfo: %v", err)
	}
	if len(got.Identities) != 1 || got.Identities[0].Category != "client" || got.Identities[0].Name != "test bot" {
		t.Errorf("Identities = %+v", got.Identities)
	}
	if len(got.Features) != 1 || got.Features[0].Var != "urn:xmpp:ping" {
		t.Errorf("Features = %+v", got.Features)
	}
	if len(got.Forms) != 1 {
		t.Fatalf("Forms = %+v, want 1 form", got.Forms)
	}
	ft, ok := got.Forms[0].FormType()
	if !ok || ft != "urn:xmpp:dataforms:softwareinfo" {
		t.Errorf("FormType() = %q, %t", ft, ok)
	}
}
