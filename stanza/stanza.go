// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import "fmt"

// Type is the closed set of top-level stanza/nonza kinds the core
// understands at the porter level.
type Type int

// The closed set of stanza types.
const (
	TypeUnknown Type = iota
	TypeMessage
	TypePresence
	TypeIQ
	TypeStream
	TypeFeatures
	TypeAuth
	TypeChallenge
	TypeResponse
	TypeSuccess
	TypeFailure
	TypeStreamError
)

func (t Type) String() string {
	switch t {
	case TypeMessage:
		return "message"
	case TypePresence:
		return "presence"
	case TypeIQ:
		return "iq"
	case TypeStream:
		return "stream"
	case TypeFeatures:
		return "features"
	case TypeAuth:
		return "auth"
	case TypeChallenge:
		return "challenge"
	case TypeResponse:
		return "response"
	case TypeSuccess:
		return "success"
	case TypeFailure:
		return "failure"
	case TypeStreamError:
		return "error"
	default:
		return "unknown"
	}
}

// SubType is the closed set of stanza subtypes (the root element's "type"
// attribute), scoped to the Type it was declared against.
type SubType int

// The closed set of stanza subtypes. Not every subtype is legal for every
// Type; see ValidSubType.
const (
	SubTypeNone SubType = iota
	SubTypeError
	SubTypeUnknown

	// message
	SubTypeNormal
	SubTypeChat
	SubTypeGroupChat
	SubTypeHeadline

	// presence
	SubTypeAvailable
	SubTypeUnavailable
	SubTypeProbe
	SubTypeSubscribe
	SubTypeUnsubscribe
	SubTypeSubscribed
	SubTypeUnsubscribed

	// iq
	SubTypeGet
	SubTypeSet
	SubTypeResult
)

func (s SubType) String() string {
	switch s {
	case SubTypeNone:
		return ""
	case SubTypeError:
		return "error"
	case SubTypeNormal:
		return "normal"
	case SubTypeChat:
		return "chat"
	case SubTypeGroupChat:
		return "groupchat"
	case SubTypeHeadline:
		return "headline"
	case SubTypeAvailable:
		return "available"
	case SubTypeUnavailable:
		return "unavailable"
	case SubTypeProbe:
		return "probe"
	case SubTypeSubscribe:
		return "subscribe"
	case SubTypeUnsubscribe:
		return "unsubscribe"
	case SubTypeSubscribed:
		return "subscribed"
	case SubTypeUnsubscribed:
		return "unsubscribed"
	case SubTypeGet:
		return "get"
	case SubTypeSet:
		return "set"
	case SubTypeResult:
		return "result"
	default:
		return "unknown"
	}
}

// messageSubTypes, presenceSubTypes, and iqSubTypes enumerate the legal
// subtypes for each stanza Type; SubTypeError is legal on all three.
var messageSubTypes = map[SubType]bool{
	SubTypeNormal: true, SubTypeChat: true, SubTypeGroupChat: true, SubTypeHeadline: true, SubTypeError: true,
}
var presenceSubTypes = map[SubType]bool{
	SubTypeNone: true, SubTypeUnavailable: true, SubTypeProbe: true, SubTypeSubscribe: true,
	SubTypeUnsubscribe: true, SubTypeSubscribed: true, SubTypeUnsubscribed: true, SubTypeError: true,
}
var iqSubTypes = map[SubType]bool{
	SubTypeGet: true, SubTypeSet: true, SubTypeResult: true, SubTypeError: true,
}

// ValidSubType reports whether subtype is a legal combination for typ.
// Types other than message/presence/iq only ever carry SubTypeNone.
func ValidSubType(typ Type, sub SubType) bool {
	switch typ {
	case TypeMessage:
		return messageSubTypes[sub]
	case TypePresence:
		return presenceSubTypes[sub]
	case TypeIQ:
		return iqSubTypes[sub]
	default:
		return sub == SubTypeNone
	}
}

// typeFromName maps a root element's local name to a Type, assuming the
// jabber:client/jabber:server/stream namespace conventions.
func typeFromName(name string) Type {
	switch name {
	case "message":
		return TypeMessage
	case "presence":
		return TypePresence
	case "iq":
		return TypeIQ
	case "stream":
		return TypeStream
	case "features":
		return TypeFeatures
	case "auth":
		return TypeAuth
	case "challenge":
		return TypeChallenge
	case "response":
		return TypeResponse
	case "success":
		return TypeSuccess
	case "failure":
		return TypeFailure
	case "error":
		return TypeStreamError
	default:
		return TypeUnknown
	}
}

func subTypeFromAttr(typ Type, attr string) SubType {
	if attr == "" {
		if typ == TypePresence {
			return SubTypeNone
		}
		if typ == TypeIQ || typ == TypeMessage {
			return SubTypeUnknown
		}
		return SubTypeNone
	}
	switch attr {
	case "error":
		return SubTypeError
	case "normal":
		return SubTypeNormal
	case "chat":
		return SubTypeChat
	case "groupchat":
		return SubTypeGroupChat
	case "headline":
		return SubTypeHeadline
	case "unavailable":
		return SubTypeUnavailable
	case "probe":
		return SubTypeProbe
	case "subscribe":
		return SubTypeSubscribe
	case "unsubscribe":
		return SubTypeUnsubscribe
	case "subscribed":
		return SubTypeSubscribed
	case "unsubscribed":
		return SubTypeUnsubscribed
	case "get":
		return SubTypeGet
	case "set":
		return SubTypeSet
	case "result":
		return SubTypeResult
	default:
		return SubTypeUnknown
	}
}

// Stanza is a NodeTree whose root is one of the closed set of stanza/nonza
// element names, with its Type and SubType decoded and cached, plus
// optional, non-owning slots for a sender/recipient contact object (valid
// only when a contact-factory collaborator is wired in; this package never
// populates them itself).
type Stanza struct {
	Tree *NodeTree

	typ  SubType
	kind Type

	sender, recipient any
}

// NewStanza wraps tree as a Stanza, decoding its Type/SubType from the root
// node. It returns an error if the root's subtype is not legal for its
// element.
func NewStanza(tree *NodeTree) (*Stanza, error) {
	if tree == nil || tree.Root == nil {
		return nil, fmt.Errorf("stanza: nil tree")
	}
	kind := typeFromName(tree.Root.Name)
	typAttr, _ := tree.Root.Attr("type")
	sub := subTypeFromAttr(kind, typAttr)
	if !ValidSubType(kind, sub) {
		return nil, fmt.Errorf("stanza: illegal subtype %q for element %q", typAttr, tree.Root.Name)
	}
	return &Stanza{Tree: tree, kind: kind, typ: sub}, nil
}

// Type returns the decoded stanza type.
func (s *Stanza) Type() Type { return s.kind }

// SubType returns the decoded stanza subtype.
func (s *Stanza) SubType() SubType { return s.typ }

// Root returns the stanza's root node.
func (s *Stanza) Root() *Node { return s.Tree.Root }

// ID returns the stanza's "id" attribute, if any.
func (s *Stanza) ID() string {
	v, _ := s.Root().Attr("id")
	return v
}

// From returns the stanza's "from" attribute, if any.
func (s *Stanza) From() string {
	v, _ := s.Root().Attr("from")
	return v
}

// To returns the stanza's "to" attribute, if any.
func (s *Stanza) To() string {
	v, _ := s.Root().Attr("to")
	return v
}

// Sender returns the non-owning sender contact object associated with this
// stanza by an external contact-factory collaborator, if any was set via
// SetSender.
func (s *Stanza) Sender() any { return s.sender }

// SetSender attaches a non-owning sender contact object (opaque to this
// package) to the stanza.
func (s *Stanza) SetSender(v any) { s.sender = v }

// Recipient returns the non-owning recipient contact object, if any.
func (s *Stanza) Recipient() any { return s.recipient }

// SetRecipient attaches a non-owning recipient contact object to the
// stanza.
func (s *Stanza) SetRecipient(v any) { s.recipient = v }
