// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"bytes"
	"context"
	"encoding/xml"

	"mellium.im/xmlstream"

	"git.sr.ht/~wocky/xmpp/capshash"
	"git.sr.ht/~wocky/xmpp/disco/info"
	"git.sr.ht/~wocky/xmpp/form"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/porter"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// InfoQuery is the payload of a query for a node's identities and features.
type InfoQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/disco#info query"`
	Node    string   `xml:"node,attr,omitempty"`
}

func (q InfoQuery) wrap(r xml.TokenReader) xml.TokenReader {
	start := xml.StartElement{Name: xml.Name{Space: NSInfo, Local: "query"}}
	if q.Node != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "node"}, Value: q.Node})
	}
	return xmlstream.Wrap(r, start)
}

// TokenReader implements xmlstream.Marshaler.
func (q InfoQuery) TokenReader() xml.TokenReader {
	return q.wrap(nil)
}

// WriteXML implements xmlstream.WriterTo.
func (q InfoQuery) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, q.TokenReader())
}

// MarshalXML implements xml.Marshaler.
func (q InfoQuery) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := q.WriteXML(e)
	return err
}

// Info is the result of a disco#info query: a node's identities,
// features, and any extended data forms (e.g. the XEP-0115
// software-version form used to seed the capabilities hash).
type Info struct {
	InfoQuery
	Identities []info.Identity
	Features   []info.Feature
	Forms      []*form.Data
}

// marshalerTokenReader round-trips an xml.Marshaler through an in-memory
// encoder/decoder pair, bridging form.Data (which only knows how to
// xml.Marshal itself) onto the xml.TokenReader/stanza.Node world the rest
// of this package is built on.
func marshalerTokenReader(m xml.Marshaler) (xml.TokenReader, error) {
	var buf bytes.Buffer
	e := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: "wrapper"}}
	if err := m.MarshalXML(e, start); err != nil {
		return nil, err
	}
	if err := e.Flush(); err != nil {
		return nil, err
	}
	return xml.NewDecoder(&buf), nil
}

// TokenReader implements xmlstream.Marshaler.
func (i Info) TokenReader() xml.TokenReader {
	var payloads []xml.TokenReader
	for _, f := range i.Features {
		payloads = append(payloads, f.TokenReader())
	}
	for _, ident := range i.Identities {
		payloads = append(payloads, ident.TokenReader())
	}
	for _, f := range i.Forms {
		tr, err := marshalerTokenReader(f)
		if err != nil {
			payloads = append(payloads, xmlstream.ReaderFunc(func() (xml.Token, error) { return nil, err }))
			continue
		}
		payloads = append(payloads, tr)
	}
	return i.InfoQuery.wrap(xmlstream.MultiReader(payloads...))
}

// WriteXML implements xmlstream.WriterTo.
func (i Info) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, i.TokenReader())
}

// MarshalXML implements xml.Marshaler.
func (i Info) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := i.WriteXML(e)
	return err
}

// Hash computes the XEP-0115 entity capabilities verification string for
// this Info, suitable for use as a cache key against a capscache.Store.
func (i Info) Hash() (string, error) {
	identities := make([]capshash.Identity, len(i.Identities))
	for n, ident := range i.Identities {
		identities[n] = capshash.Identity{
			Category: ident.Category,
			Type:     ident.Type,
			Lang:     ident.Lang,
			Name:     ident.Name,
		}
	}
	features := make([]string, len(i.Features))
	for n, f := range i.Features {
		features[n] = f.Var
	}
	forms := make([]capshash.Form, 0, len(i.Forms))
	for _, f := range i.Forms {
		cf, ok := capshash.FromData(f)
		if !ok {
			continue
		}
		forms = append(forms, cf)
	}
	return capshash.Compute(features, identities, forms)
}

// ToNode builds the *stanza.Node subtree for this Info (a disco#info query
// element populated with its identities, features, and forms), suitable
// for use as an IQ result payload.
func (i Info) ToNode() (*stanza.Node, error) {
	q := stanza.NewNode("query", NSInfo)
	if i.Node != "" {
		q.SetAttr("node", i.Node)
	}
	for _, ident := range i.Identities {
		n, err := nodeFromTokenReader(ident.TokenReader())
		if err != nil {
			return nil, err
		}
		q.AppendChild(n)
	}
	for _, f := range i.Features {
		n, err := nodeFromTokenReader(f.TokenReader())
		if err != nil {
			return nil, err
		}
		q.AppendChild(n)
	}
	for _, f := range i.Forms {
		tr, err := marshalerTokenReader(f)
		if err != nil {
			return nil, err
		}
		n, err := nodeFromTokenReader(tr)
		if err != nil {
			return nil, err
		}
		q.AppendChild(n)
	}
	return q, nil
}

// ParseInfo decodes a disco#info query node into an Info value.
func ParseInfo(q *stanza.Node) (Info, error) {
	var out Info
	if node, ok := q.Attr("node"); ok {
		out.Node = node
	}
	for _, c := range q.Children {
		switch {
		case c.Name == "identity":
			cat, _ := c.Attr("category")
			typ, _ := c.Attr("type")
			name, _ := c.Attr("name")
			lang, _ := c.AttrNS("lang", "http://www.w3.org/XML/1998/namespace")
			out.Identities = append(out.Identities, info.Identity{
				Category: cat,
				Type:     typ,
				Name:     name,
				Lang:     lang,
			})
		case c.Name == "feature":
			v, _ := c.Attr("var")
			out.Features = append(out.Features, info.Feature{Var: v})
		case c.Name == "x" && c.Namespace() == form.NS:
			d, err := parseFormNode(c)
			if err != nil {
				return out, err
			}
			out.Forms = append(out.Forms, d)
		}
	}
	return out, nil
}

// GetInfo discovers a node's identities, features, and forms from to.
// An empty node means to query the root node of to.
// It blocks until a response arrives or ctx is cancelled.
func GetInfo(ctx context.Context, p *porter.Porter, to jid.JID, node string) (Info, error) {
	query := InfoQuery{Node: node}
	qNode, err := nodeFromTokenReader(query.TokenReader())
	if err != nil {
		return Info{}, err
	}
	root := stanza.NewNode("iq", "")
	root.SetAttr("type", "get")
	if to != nil {
		root.SetAttr("to", to.String())
	}
	root.AppendChild(qNode)
	s, err := stanza.NewStanza(stanza.NewNodeTree(root))
	if err != nil {
		return Info{}, err
	}
	res := <-p.SendIQAsync(ctx, s)
	if res.Err != nil {
		return Info{}, res.Err
	}
	q := res.Stanza.Root().Child("query", NSInfo)
	if q == nil {
		return Info{}, nil
	}
	return ParseInfo(q)
}
