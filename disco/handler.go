// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"context"

	"git.sr.ht/~wocky/xmpp/disco/items"
	"git.sr.ht/~wocky/xmpp/porter"
	"git.sr.ht/~wocky/xmpp/stanza"
	"git.sr.ht/~wocky/xmpp/stanza/xmpperror"
)

// InfoProvider answers disco#info queries for a node. An empty node
// string means the root node.
type InfoProvider func(node string) (Info, error)

// ItemsProvider answers disco#items queries for a node.
type ItemsProvider func(node string) ([]items.Item, error)

// ServeInfo registers p as an IQ-GET responder to disco#info queries,
// using info to answer each request. It returns the HandlerID so the
// caller can UnregisterHandler it later.
func ServeInfo(p *porter.Porter, info InfoProvider) porter.HandlerID {
	pattern := stanza.NewNode("iq", "").
		SetAttr("type", "get").
		AppendChild(stanza.NewNode("query", NSInfo))
	return p.RegisterHandler(porter.Anyone, stanza.TypeIQ, stanza.SubTypeGet, true, 0, nil, false, pattern,
		func(s *stanza.Stanza) bool {
			q := s.Root().Child("query", NSInfo)
			var node string
			if q != nil {
				node, _ = q.Attr("node")
			}
			result, err := info(node)
			if err != nil {
				reply, buildErr := xmpperror.BuildIQError(s, xmpperror.ItemNotFound, err.Error())
				if buildErr == nil {
					p.SendAsync(context.Background(), reply) //nolint:errcheck
				}
				return true
			}
			result.Node = node
			resultNode, err := result.ToNode()
			if err != nil {
				return true
			}
			reply, err := xmpperror.BuildIQResult(s, resultNode)
			if err != nil {
				return true
			}
			p.SendAsync(context.Background(), reply) //nolint:errcheck
			return true
		})
}

// ServeItems registers p as an IQ-GET responder to disco#items queries,
// using items to answer each request.
func ServeItems(p *porter.Porter, provider ItemsProvider) porter.HandlerID {
	pattern := stanza.NewNode("iq", "").
		SetAttr("type", "get").
		AppendChild(stanza.NewNode("query", NSItems))
	return p.RegisterHandler(porter.Anyone, stanza.TypeIQ, stanza.SubTypeGet, true, 0, nil, false, pattern,
		func(s *stanza.Stanza) bool {
			q := s.Root().Child("query", NSItems)
			var node string
			if q != nil {
				node, _ = q.Attr("node")
			}
			found, err := provider(node)
			if err != nil {
				reply, buildErr := xmpperror.BuildIQError(s, xmpperror.ItemNotFound, err.Error())
				if buildErr == nil {
					p.SendAsync(context.Background(), reply) //nolint:errcheck
				}
				return true
			}
			resultQuery := stanza.NewNode("query", NSItems)
			if node != "" {
				resultQuery.SetAttr("node", node)
			}
			for _, item := range found {
				n, err := nodeFromTokenReader(item.TokenReader())
				if err != nil {
					continue
				}
				resultQuery.AppendChild(n)
			}
			reply, err := xmpperror.BuildIQResult(s, resultQuery)
			if err != nil {
				return true
			}
			p.SendAsync(context.Background(), reply) //nolint:errcheck
			return true
		})
}
