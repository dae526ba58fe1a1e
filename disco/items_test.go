// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco_test

import (
	"encoding/xml"
	"strings"
	"testing"

	"git.sr.ht/~wocky/xmpp/disco"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/stanza"
)

func TestItemsQueryMarshal(t *testing.T) {
	q := disco.ItemsQuery{Node: "music"}
	b, err := xml.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `node="music"`) {
		t.Errorf("marshal = %q, want node attribute", got)
	}
	if !strings.Contains(got, disco.NSItems) {
		t.Errorf("marshal = %q, want disco#items namespace", got)
	}
}

func TestParseItems(t *testing.T) {
	j, err := jid.SafeFromString("rooms.example.net")
	if err != nil {
		t.Fatal(err)
	}

	q := stanza.NewNode("query", disco.NSItems)
	q.AppendChild(stanza.NewNode("item", disco.NSItems).
		SetAttr("jid", j.String()).
		SetAttr("name", "Music").
		SetAttr("node", "music"))

	got := disco.ParseItems(q)
	if len(got) != 1 {
		t.Fatalf("ParseItems() returned %d items, want 1", len(got))
	}
	if got[0].Name != "Music" || got[0].Node != "music" {
		t.Errorf("got %+v", got[0])
	}
	if !got[0].JID.Equal(j) {
		t.Errorf("JID = %v, want %v", got[0].JID, j)
	}
}
