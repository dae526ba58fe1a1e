// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import "encoding/xml"

// NodeTree is a thin owning wrapper around a root Node. It exists as its
// own type (distinct from *Node) so that ownership and whole-tree
// operations (cloning, top-level decode) have an obvious home, mirroring
// the original implementation's split between a node and the tree/document
// it roots.
type NodeTree struct {
	Root *Node
}

// NewNodeTree wraps root in a new, owning NodeTree.
func NewNodeTree(root *Node) *NodeTree {
	return &NodeTree{Root: root}
}

// Clone returns a deep copy of the tree.
func (t *NodeTree) Clone() *NodeTree {
	if t == nil {
		return nil
	}
	return &NodeTree{Root: t.Root.Clone()}
}

// TokenReader returns an xml.TokenReader for the whole tree.
func (t *NodeTree) TokenReader() xml.TokenReader {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.TokenReader()
}
