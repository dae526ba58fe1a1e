// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmpperror implements the stanza-level <error/> taxonomy defined in
// RFC 6120 §8.3, a mapping to the legacy numeric error codes still seen on
// the wire from older deployments, and the IQ result/error builders a
// request handler uses to reply to a query.
package xmpperror // import "git.sr.ht/~wocky/xmpp/stanza/xmpperror"

import (
	"strconv"

	"golang.org/x/text/language"

	"git.sr.ht/~wocky/xmpp/internal/ns"
	"git.sr.ht/~wocky/xmpp/jid"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// Type is the RFC 6120 §8.3.2 error type: what the sender should do in
// response to an error.
type Type int

// The closed set of stanza error types.
const (
	// Cancel indicates that the error cannot be remedied and the operation
	// should not be retried.
	Cancel Type = iota

	// Continue indicates that the operation can proceed (the condition was
	// only a warning).
	Continue

	// Modify indicates that the operation can be retried after changing the
	// data sent.
	Modify

	// Auth indicates that an operation should be retried after providing
	// credentials.
	Auth

	// Wait indicates that an error is temporary and may be retried.
	Wait
)

func (t Type) String() string {
	switch t {
	case Continue:
		return "continue"
	case Modify:
		return "modify"
	case Auth:
		return "auth"
	case Wait:
		return "wait"
	default:
		return "cancel"
	}
}

func typeFromAttr(s string) Type {
	switch s {
	case "continue":
		return Continue
	case "modify":
		return Modify
	case "auth":
		return Auth
	case "wait":
		return Wait
	default:
		return Cancel
	}
}

// Condition is a defined stanza error condition, qualified by the
// urn:ietf:params:xml:ns:xmpp-stanzas namespace.
type Condition string

// The 23 stanza error conditions defined in RFC 6120 §8.3.3.
const (
	BadRequest            Condition = "bad-request"
	Conflict              Condition = "conflict"
	FeatureNotImplemented Condition = "feature-not-implemented"
	Forbidden             Condition = "forbidden"
	Gone                  Condition = "gone"
	InternalServerError   Condition = "internal-server-error"
	ItemNotFound          Condition = "item-not-found"
	JIDMalformed          Condition = "jid-malformed"
	NotAcceptable         Condition = "not-acceptable"
	NotAllowed            Condition = "not-allowed"
	NotAuthorized         Condition = "not-authorized"
	PaymentRequired       Condition = "payment-required"
	PolicyViolation       Condition = "policy-violation"
	RecipientUnavailable  Condition = "recipient-unavailable"
	Redirect              Condition = "redirect"
	RegistrationRequired  Condition = "registration-required"
	RemoteServerNotFound  Condition = "remote-server-not-found"
	RemoteServerTimeout   Condition = "remote-server-timeout"
	ResourceConstraint    Condition = "resource-constraint"
	ServiceUnavailable    Condition = "service-unavailable"
	SubscriptionRequired  Condition = "subscription-required"
	UndefinedCondition    Condition = "undefined-condition"
	UnexpectedRequest     Condition = "unexpected-request"
)

// defaultType is the error type a condition implies when the sender does
// not specify one explicitly, per RFC 6120 §8.3.3.
var defaultType = map[Condition]Type{
	BadRequest:            Modify,
	Conflict:              Cancel,
	FeatureNotImplemented: Cancel,
	Forbidden:             Auth,
	Gone:                  Modify,
	InternalServerError:   Wait,
	ItemNotFound:          Cancel,
	JIDMalformed:          Modify,
	NotAcceptable:         Modify,
	NotAllowed:            Cancel,
	NotAuthorized:         Auth,
	PaymentRequired:       Auth,
	PolicyViolation:       Modify,
	RecipientUnavailable:  Wait,
	Redirect:              Modify,
	RegistrationRequired:  Auth,
	RemoteServerNotFound:  Cancel,
	RemoteServerTimeout:   Wait,
	ResourceConstraint:    Wait,
	ServiceUnavailable:    Cancel,
	SubscriptionRequired:  Auth,
	UndefinedCondition:    Cancel,
	UnexpectedRequest:     Wait,
}

// legacyCodes maps each condition to the legacy numeric error codes old
// (pre-RFC 3920) deployments send instead of, or alongside, a condition
// element. The first entry is the canonical code returned by LegacyCode.
var legacyCodes = map[Condition][]int{
	UndefinedCondition:    {500},
	Redirect:              {302},
	Gone:                  {302},
	BadRequest:            {400},
	UnexpectedRequest:     {400},
	JIDMalformed:          {400},
	NotAuthorized:         {401},
	PaymentRequired:       {402},
	Forbidden:             {403},
	ItemNotFound:          {404},
	RecipientUnavailable:  {404},
	RemoteServerNotFound:  {404},
	NotAllowed:            {405},
	NotAcceptable:         {406},
	RegistrationRequired:  {407},
	SubscriptionRequired:  {407},
	RemoteServerTimeout:   {408, 504},
	Conflict:              {409},
	InternalServerError:   {500},
	ResourceConstraint:    {500},
	FeatureNotImplemented: {501},
	ServiceUnavailable:    {502, 503, 510},
}

// legacyToCondition inverts legacyCodes for FromLegacyCode, preferring the
// first condition found for codes that multiple conditions share (e.g. 404
// resolves to ItemNotFound, the most common case on the wire).
var legacyToCondition = map[int]Condition{
	500: UndefinedCondition,
	302: Redirect,
	400: BadRequest,
	401: NotAuthorized,
	402: PaymentRequired,
	403: Forbidden,
	404: ItemNotFound,
	405: NotAllowed,
	406: NotAcceptable,
	407: RegistrationRequired,
	408: RemoteServerTimeout,
	409: Conflict,
	501: FeatureNotImplemented,
	502: ServiceUnavailable,
	503: ServiceUnavailable,
	504: RemoteServerTimeout,
	510: ServiceUnavailable,
}

// LegacyCode returns the canonical pre-RFC-3920 numeric error code for c, or
// 0 if c has no legacy equivalent.
func LegacyCode(c Condition) int {
	codes := legacyCodes[c]
	if len(codes) == 0 {
		return 0
	}
	return codes[0]
}

// FromLegacyCode returns the condition a legacy numeric error code maps to,
// or UndefinedCondition if code is not recognized.
func FromLegacyCode(code int) Condition {
	if c, ok := legacyToCondition[code]; ok {
		return c
	}
	return UndefinedCondition
}

// Error is a decoded stanza <error/> element. It implements the error
// interface so it can be returned directly from request handlers.
type Error struct {
	By        jid.JID
	Type      Type
	Condition Condition
	Lang      language.Tag
	Text      string

	// Specialized holds an application-specific error element (name,
	// namespace) alongside the defined condition, when the sender attached
	// one. It is opaque to this package.
	Specialized *stanza.Node
}

// Error satisfies the error interface, returning Text if set or the bare
// condition name otherwise.
func (e Error) Error() string {
	if e.Text != "" {
		return e.Text
	}
	return string(e.Condition)
}

// New returns an Error for condition using its RFC 6120-defined default
// type.
func New(condition Condition, text string) Error {
	return Error{Type: defaultType[condition], Condition: condition, Text: text}
}

// Node renders e as a <error/> Node in the jabber:client namespace, with its
// defined condition element, a legacy numeric "code" attribute when one is
// defined for the condition, and, if Text is set, a <text/> child.
func (e Error) Node() *stanza.Node {
	n := stanza.NewNode("error", "")
	n.SetAttr("type", e.Type.String())
	if e.By != nil {
		n.SetAttr("by", e.By.String())
	}
	if code := LegacyCode(e.Condition); code != 0 {
		n.SetAttr("code", strconv.Itoa(code))
	}
	cond := stanza.NewNode(string(e.Condition), ns.StanzaErr)
	n.AppendChild(cond)
	if e.Specialized != nil {
		n.AppendChild(e.Specialized)
	}
	if e.Text != "" {
		text := stanza.NewNode("text", ns.StanzaErr)
		text.Content = e.Text
		if tag := e.Lang.String(); tag != "" && tag != "und" {
			text.Lang = tag
		}
		n.AppendChild(text)
	}
	return n
}

// ToNode is an alias for Node kept for callers that construct an error
// inline: ToNode(condition, message) builds and renders an Error in one
// step.
func ToNode(condition Condition, message string) *stanza.Node {
	return New(condition, message).Node()
}

// FromNode decodes an <error/> Node (as found as a child of a stanza whose
// type="error") into an Error. ok is false if n is not a well-formed stanza
// error element.
func FromNode(n *stanza.Node) (e Error, ok bool) {
	if n == nil || n.Name != "error" {
		return Error{}, false
	}
	if typ, set := n.Attr("type"); set {
		e.Type = typeFromAttr(typ)
	}
	if by, set := n.Attr("by"); set {
		if j, err := jid.SafeFromString(by); err == nil {
			e.By = j
		}
	}
	for _, child := range n.Children {
		if child.Namespace() != ns.StanzaErr {
			continue
		}
		switch child.Name {
		case "text":
			e.Text = child.Content
			if child.Lang != "" {
				if tag, err := language.Parse(child.Lang); err == nil {
					e.Lang = tag
				}
			}
		default:
			e.Condition = Condition(child.Name)
			ok = true
		}
	}
	if !ok {
		// No recognized condition element; fall back to the legacy
		// numeric code attribute, then to an application-specific
		// extension, before defaulting to undefined-condition.
		if code, set := n.Attr("code"); set {
			if v, err := strconv.Atoi(code); err == nil {
				e.Condition = FromLegacyCode(v)
				ok = true
			}
		}
		for _, child := range n.Children {
			if child.Namespace() != ns.StanzaErr {
				e.Specialized = child
				if !ok {
					e.Condition = UndefinedCondition
				}
				ok = true
				break
			}
		}
		if !ok {
			e.Condition = UndefinedCondition
			ok = true
		}
	}
	return e, ok
}

// BuildIQResult constructs a result IQ in reply to req: to/from are
// swapped, id is copied, type is set to "result", and children becomes the
// reply's payload.
func BuildIQResult(req *stanza.Stanza, children ...*stanza.Node) (*stanza.Stanza, error) {
	root := stanza.NewNode("iq", "")
	root.SetAttr("id", req.ID())
	root.SetAttr("to", req.From())
	root.SetAttr("from", req.To())
	root.SetAttr("type", stanza.SubTypeResult.String())
	for _, c := range children {
		root.AppendChild(c)
	}
	return stanza.NewStanza(stanza.NewNodeTree(root))
}

// BuildIQError constructs an error IQ in reply to req per RFC 6120 §8.3.1:
// to/from are swapped, id is copied, type is set to "error", the first
// child of the original request is copied into the reply (RFC 3920 §9.2.3
// legacy compatibility requirement carried forward by RFC 6120), and an
// <error/> element built from cond/text is appended.
func BuildIQError(req *stanza.Stanza, cond Condition, text string) (*stanza.Stanza, error) {
	root := stanza.NewNode("iq", "")
	root.SetAttr("id", req.ID())
	root.SetAttr("to", req.From())
	root.SetAttr("from", req.To())
	root.SetAttr("type", stanza.SubTypeError.String())

	if len(req.Root().Children) > 0 {
		root.AppendChild(req.Root().Children[0].Clone())
	}
	root.AppendChild(New(cond, text).Node())

	return stanza.NewStanza(stanza.NewNodeTree(root))
}
