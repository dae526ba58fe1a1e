// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"crypto"
	"encoding/xml"
	"strings"

	"mellium.im/xmlstream"
)

// Caps is the <c/> element included in a presence stanza to advertise
// entity capabilities: a node (an opaque string identifying the client
// software) and a ver (the XEP-0115 verification string for that node's
// current Info, computed by capshash).
type Caps struct {
	XMLName xml.Name    `xml:"http://jabber.org/protocol/caps c"`
	Hash    crypto.Hash `xml:"hash,attr"`
	Node    string      `xml:"node,attr"`
	Ver     string      `xml:"ver,attr"`
}

// NewCaps builds a Caps advertisement for node from info's SHA-1
// verification string.
func NewCaps(node string, info Info) (Caps, error) {
	ver, err := info.Hash()
	if err != nil {
		return Caps{}, err
	}
	return Caps{Hash: crypto.SHA1, Node: node, Ver: ver}, nil
}

// TokenReader implements xmlstream.Marshaler.
func (c Caps) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Space: NSCaps, Local: "c"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "hash"}, Value: strings.ToLower(c.Hash.String())},
			{Name: xml.Name{Local: "node"}, Value: c.Node},
			{Name: xml.Name{Local: "ver"}, Value: c.Ver},
		},
	})
}

// WriteXML implements xmlstream.WriterTo.
func (c Caps) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, c.TokenReader())
}

// MarshalXML implements xml.Marshaler.
func (c Caps) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	_, err := c.WriteXML(e)
	return err
}

// UnmarshalXML implements xml.Unmarshaler.
func (c *Caps) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "hash":
			switch attr.Value {
			case "sha-1":
				c.Hash = crypto.SHA1
			case "sha-224":
				c.Hash = crypto.SHA224
			case "sha-256":
				c.Hash = crypto.SHA256
			case "sha-384":
				c.Hash = crypto.SHA384
			case "sha-512":
				c.Hash = crypto.SHA512
			}
		case "node":
			c.Node = attr.Value
		case "ver":
			c.Ver = attr.Value
		}
	}
	return xmlstream.Skip(d)
}
