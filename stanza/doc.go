// Copyright 2017 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package stanza implements the Node/NodeTree/Stanza tagged-XML-tree model
// XMPP stanzas are built from, a small builder DSL for constructing one,
// and the closed stanza type/subtype matrix that constrains what
// combinations are legal.
//
// Unlike a token-stream encoding, a Stanza always has a complete tree
// available for inspection (pattern matching, attribute lookups by
// namespace, deep copies of a child into a reply) before it is serialized
// or after it is parsed.
package stanza // import "git.sr.ht/~wocky/xmpp/stanza"
