// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"encoding/xml"
	"io"

	"git.sr.ht/~wocky/xmpp/stanza"
)

// nodeFromTokenReader drains tr and builds the equivalent *stanza.Node
// tree, bridging components that only know how to marshal themselves as
// an xml.TokenReader (identities, features, data forms) onto the
// stanza.Node tree porter sends over the wire.
func nodeFromTokenReader(tr xml.TokenReader) (*stanza.Node, error) {
	var root, cur *stanza.Node
	var stack []*stanza.Node
	for {
		tok, err := tr.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := stanza.NewNode(t.Name.Local, t.Name.Space)
			for _, a := range t.Attr {
				n.SetAttrNS(a.Name.Local, a.Name.Space, a.Value)
			}
			if cur != nil {
				cur.AppendChild(n)
				stack = append(stack, cur)
			} else {
				root = n
			}
			cur = n
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			cur, stack = stack[len(stack)-1], stack[:len(stack)-1]
		case xml.CharData:
			if cur != nil {
				cur.Content += string(t)
			}
		}
	}
	return root, nil
}
