// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"

	"mellium.im/xmlstream"
)

// Attr is a single attribute on a Node: a key, an optional explicit
// namespace (zero meaning "no namespace / inherit"), and a value. A prefix
// hint may be set by the writer when serializing; it is not meaningful on
// its own.
type Attr struct {
	Key    string
	NS     NS
	Value  string
	prefix string
}

// Node is a single tagged XML element: a name, a namespace, an ordered,
// possibly-empty attribute list, optional text content, and an ordered list
// of children. A Node is owned by its parent (or by the NodeTree that roots
// it); there is no shared ownership and no reference counting, unlike the
// GObject-based original this design is grounded on.
type Node struct {
	Name     string
	NS       NS
	Attrs    []Attr
	Content  string
	Children []*Node

	// Lang carries this node's effective xml:lang, if any, inherited from
	// an ancestor unless overridden locally.
	Lang string
}

// NewNode constructs a Node with the given name in the given namespace. The
// name must be non-empty; the namespace may be the empty string, in which
// case the node inherits its parent's namespace once attached.
func NewNode(name, namespace string) *Node {
	return &Node{Name: name, NS: InternNS(namespace)}
}

// Namespace returns the node's namespace URI.
func (n *Node) Namespace() string { return n.NS.URI() }

// SetAttr sets (overwriting any existing value for the same key+namespace)
// an unqualified attribute.
func (n *Node) SetAttr(key, value string) *Node {
	return n.SetAttrNS(key, "", value)
}

// SetAttrNS sets (overwriting any existing value for the same key+namespace)
// a namespace-qualified attribute.
func (n *Node) SetAttrNS(key, namespace, value string) *Node {
	id := InternNS(namespace)
	for i := range n.Attrs {
		if n.Attrs[i].Key == key && n.Attrs[i].NS == id {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, NS: id, Value: value})
	return n
}

// Attr returns the value of an unqualified attribute and whether it was
// present.
func (n *Node) Attr(key string) (string, bool) {
	return n.AttrNS(key, "")
}

// AttrNS returns the value of a namespace-qualified attribute and whether it
// was present.
func (n *Node) AttrNS(key, namespace string) (string, bool) {
	id := InternNS(namespace)
	for _, a := range n.Attrs {
		if a.Key == key && a.NS == id {
			return a.Value, true
		}
	}
	return "", false
}

// AppendChild appends a new child node, preserving arrival order.
func (n *Node) AppendChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// Child returns the first child node matching name and, if namespace is
// non-empty, namespace.
func (n *Node) Child(name, namespace string) *Node {
	var id NS
	if namespace != "" {
		id = InternNS(namespace)
	}
	for _, c := range n.Children {
		if c.Name != name {
			continue
		}
		if namespace != "" && c.NS != id {
			continue
		}
		return c
	}
	return nil
}

// Each invokes fn for every direct child.
func (n *Node) Each(fn func(*Node)) {
	for _, c := range n.Children {
		fn(c)
	}
}

// Clone returns a deep copy of the node and its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Name:    n.Name,
		NS:      n.NS,
		Content: n.Content,
		Lang:    n.Lang,
		Attrs:   append([]Attr(nil), n.Attrs...),
	}
	for _, c := range n.Children {
		cp.Children = append(cp.Children, c.Clone())
	}
	return cp
}

// IsSuperset reports whether n is a superset of the pattern node subset, as
// used for stanza-handler pattern matching: a nil subset is always
// satisfied; the element name must match exactly; the namespace is checked
// only when subset.NS is non-zero; content is checked only when non-empty;
// every attribute present on subset must exist on n with the same value
// (and namespace, if the pattern specified one); and for every child of
// subset there must exist SOME child of n that is, recursively, a superset
// of it (order-independent, existential — not a keyed single-child lookup).
func (n *Node) IsSuperset(subset *Node) bool {
	if subset == nil {
		return true
	}
	if n == nil {
		return false
	}
	if n.Name != subset.Name {
		return false
	}
	if subset.NS != 0 && n.NS != subset.NS {
		return false
	}
	if subset.Content != "" && n.Content != subset.Content {
		return false
	}
	for _, want := range subset.Attrs {
		got, ok := n.AttrNS(want.Key, want.NS.URI())
		if !ok || got != want.Value {
			return false
		}
	}
	for _, wantChild := range subset.Children {
		found := false
		for _, haveChild := range n.Children {
			if haveChild.IsSuperset(wantChild) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TokenReader returns an xml.TokenReader emitting the wire encoding of the
// node and its subtree, using mellium.im/xmlstream's composition helpers to
// bridge the node-tree model onto the token-stream substrate the rest of
// the stack (and the writer) is built on.
func (n *Node) TokenReader() xml.TokenReader {
	if n == nil {
		return xmlstream.ReaderFunc(func() (xml.Token, error) { return nil, nil })
	}
	start := xml.StartElement{Name: xml.Name{Local: n.Name, Space: n.NS.URI()}}
	for _, a := range n.Attrs {
		name := xml.Name{Local: a.Key}
		if a.NS != 0 {
			name.Space = a.NS.URI()
		}
		start.Attr = append(start.Attr, xml.Attr{Name: name, Value: a.Value})
	}

	var inner xml.TokenReader
	if n.Content != "" {
		inner = xmlstream.Token(xml.CharData(n.Content))
	}
	for _, c := range n.Children {
		if inner == nil {
			inner = c.TokenReader()
		} else {
			inner = xmlstream.MultiReader(inner, c.TokenReader())
		}
	}
	return xmlstream.Wrap(inner, start)
}
