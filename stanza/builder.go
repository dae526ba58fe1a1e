// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

// builderState tracks the current cursor while a BuildOption sequence runs:
// a stack of open elements (the top is "current") and the tree root.
type builderState struct {
	root  *Node
	stack []*Node
}

func (b *builderState) current() *Node {
	if len(b.stack) == 0 {
		return b.root
	}
	return b.stack[len(b.stack)-1]
}

// BuildOption is one opcode in the builder DSL: Elem (START), End (END),
// SetAttr and SetAttrNS (ATTR), Text (TEXT), NSDecl (NS), and Assign
// (ASSIGN) are its constructors. Mis-nesting (an End with no matching Elem) is tolerated by
// clamping at the root rather than panicking or corrupting the tree.
type BuildOption func(*builderState)

// Build constructs a Stanza of the given type and subtype from a sequence
// of BuildOptions, starting from a fresh root element named after typ.
func Build(typ Type, sub SubType, opts ...BuildOption) (*Stanza, error) {
	root := NewNode(typ.String(), "")
	if sub != SubTypeNone && sub != SubTypeUnknown {
		root.SetAttr("type", sub.String())
	}
	st := &builderState{root: root}
	for _, opt := range opts {
		opt(st)
	}
	return NewStanza(NewNodeTree(root))
}

// Elem opens a new child element under the current cursor and makes it the
// new cursor; everything until the matching End (or the end of the option
// list) becomes its content.
func Elem(name string) BuildOption {
	return func(b *builderState) {
		child := NewNode(name, "")
		b.current().AppendChild(child)
		b.stack = append(b.stack, child)
	}
}

// End closes the innermost open Elem, returning the cursor to its parent.
// Calling End with no open Elem is a no-op: the tree is never corrupted by
// mis-nested Build options, only diagnosably wrong.
func End() BuildOption {
	return func(b *builderState) {
		if len(b.stack) > 0 {
			b.stack = b.stack[:len(b.stack)-1]
		}
	}
}

// SetAttr sets an unqualified attribute on the current cursor element.
func SetAttr(key, value string) BuildOption {
	return func(b *builderState) { b.current().SetAttr(key, value) }
}

// SetAttrNS sets a namespace-qualified attribute on the current cursor
// element.
func SetAttrNS(key, namespace, value string) BuildOption {
	return func(b *builderState) { b.current().SetAttrNS(key, namespace, value) }
}

// Text sets the current cursor element's text content.
func Text(s string) BuildOption {
	return func(b *builderState) { b.current().Content = s }
}

// NSDecl sets the current cursor element's namespace.
func NSDecl(uri string) BuildOption {
	return func(b *builderState) { b.current().NS = InternNS(uri) }
}

// Assign captures a pointer to the current cursor element into out, for
// callers that need to keep working with a specific node (e.g. to attach
// further children outside of the Build call that created it).
func Assign(out **Node) BuildOption {
	return func(b *builderState) { *out = b.current() }
}
