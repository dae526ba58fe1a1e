// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import "testing"

func TestBuildSimpleIQ(t *testing.T) {
	s, err := Build(TypeIQ, SubTypeGet,
		SetAttr("id", "1"),
		SetAttr("to", "example.com"),
		Elem("query"),
		NSDecl("jabber:iq:roster"),
		End(),
	)
	if err != nil {
		t.Fatal(err)
	}
	if s.Type() != TypeIQ || s.SubType() != SubTypeGet {
		t.Fatalf("got type=%v sub=%v", s.Type(), s.SubType())
	}
	if s.ID() != "1" {
		t.Fatalf("ID() = %q, want 1", s.ID())
	}
	if len(s.Root().Children) != 1 {
		t.Fatalf("expected one child, got %d", len(s.Root().Children))
	}
	query := s.Root().Children[0]
	if query.Name != "query" || query.Namespace() != "jabber:iq:roster" {
		t.Fatalf("unexpected query child: %+v", query)
	}
}

func TestBuildNestedElementsAndText(t *testing.T) {
	s, err := Build(TypeMessage, SubTypeChat,
		SetAttr("to", "juliet@example.com"),
		Elem("body"),
		Text("Wherefore art thou?"),
		End(),
	)
	if err != nil {
		t.Fatal(err)
	}
	body := s.Root().Child("body", "")
	if body == nil {
		t.Fatal("expected a body child")
	}
	if body.Content != "Wherefore art thou?" {
		t.Fatalf("body content = %q", body.Content)
	}
}

func TestBuildAssignCapturesCursor(t *testing.T) {
	var query *Node
	s, err := Build(TypeIQ, SubTypeSet,
		Elem("query"),
		NSDecl("jabber:iq:roster"),
		Assign(&query),
		End(),
	)
	if err != nil {
		t.Fatal(err)
	}
	if query == nil {
		t.Fatal("Assign did not capture the cursor")
	}
	if query != s.Root().Children[0] {
		t.Fatal("Assign captured the wrong node")
	}
}

func TestEndWithNoOpenElemIsNoop(t *testing.T) {
	// A mis-nested End before any Elem must not panic or corrupt the tree.
	s, err := Build(TypeIQ, SubTypeGet,
		End(),
		SetAttr("id", "1"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID() != "1" {
		t.Fatalf("ID() = %q, want 1", s.ID())
	}
}

func TestBuildRejectsIllegalSubType(t *testing.T) {
	if _, err := Build(TypeIQ, SubTypeChat); err == nil {
		t.Fatal("expected an error building an iq with a message-only subtype")
	}
}
