// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"encoding/xml"

	"git.sr.ht/~wocky/xmpp/form"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// parseFormNode decodes a <x xmlns="jabber:x:data"/> node into a form.Data.
func parseFormNode(n *stanza.Node) (*form.Data, error) {
	dec := xml.NewTokenDecoder(n.TokenReader())
	d := &form.Data{}
	if err := dec.Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}
