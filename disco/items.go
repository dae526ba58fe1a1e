// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"context"
	"encoding/xml"

	"mellium.im/xmlstream"

	"git.sr.ht/~wocky/xmpp/disco/items"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/porter"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// ItemsQuery is the payload of a query for a node's items.
type ItemsQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#items query"`
	Node    string   `xml:"node,attr,omitempty"`
}

// TokenReader implements xmlstream.Marshaler.
func (q ItemsQuery) TokenReader() xml.TokenReader {
	start := xml.StartElement{Name: xml.Name{Space: NSItems, Local: "query"}}
	if q.Node != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "node"}, Value: q.Node})
	}
	return xmlstream.Wrap(nil, start)
}

// WriteXML implements xmlstream.WriterTo.
func (q ItemsQuery) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, q.TokenReader())
}

// MarshalXML implements xml.Marshaler.
func (q ItemsQuery) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := q.WriteXML(e)
	return err
}

// ParseItems decodes a disco#items query node into its list of items.
func ParseItems(q *stanza.Node) []items.Item {
	var out []items.Item
	for _, c := range q.Children {
		if c.Name != "item" {
			continue
		}
		item := items.Item{Name: mustAttr(c, "name")}
		if jidStr, ok := c.Attr("jid"); ok {
			if j, err := jid.SafeFromString(jidStr); err == nil {
				item.JID = j
			}
		}
		item.Node = mustAttr(c, "node")
		out = append(out, item)
	}
	return out
}

func mustAttr(n *stanza.Node, key string) string {
	v, _ := n.Attr(key)
	return v
}

// GetItems discovers a node's items on to.
// An empty node means to query the root items for to.
// It blocks until a response arrives or ctx is cancelled, and does not
// page: it returns exactly the items present in the single IQ result.
func GetItems(ctx context.Context, p *porter.Porter, to jid.JID, node string) ([]items.Item, error) {
	query := ItemsQuery{Node: node}
	qNode, err := nodeFromTokenReader(query.TokenReader())
	if err != nil {
		return nil, err
	}
	root := stanza.NewNode("iq", "")
	root.SetAttr("type", "get")
	if to != nil {
		root.SetAttr("to", to.String())
	}
	root.AppendChild(qNode)
	s, err := stanza.NewStanza(stanza.NewNodeTree(root))
	if err != nil {
		return nil, err
	}
	res := <-p.SendIQAsync(ctx, s)
	if res.Err != nil {
		return nil, res.Err
	}
	q := res.Stanza.Root().Child("query", NSItems)
	if q == nil {
		return nil, nil
	}
	return ParseItems(q), nil
}
