// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package streamerror

import (
	"encoding/xml"
	"io"
	"net"

	"mellium.im/xmlstream"

	"git.sr.ht/~wocky/xmpp/internal/ns"
)

// A list of stream errors defined in RFC 6120 §4.9.3
var (
	// BadFormat is used when the entity has sent XML that cannot be processed.
	// This error can be used instead of the more specific XML-related errors,
	// such as <bad-namespace-prefix/>, <invalid-xml/>, <not-well-formed/>,
	// <restricted-xml/>, and <unsupported-encoding/>. However, the more specific
	// errors are RECOMMENDED.
	BadFormat = Error{Condition: "bad-format"}

	// BadNamespacePrefix is sent when an entity has sent a namespace prefix that
	// is unsupported, or has sent no namespace prefix, on an element that needs
	// such a prefix.
	BadNamespacePrefix = Error{Condition: "bad-namespace-prefix"}

	// Conflict is sent when the server either (1) is closing the existing stream
	// for this entity because a new stream has been initiated that conflicts with
	// the existing stream, or (2) is refusing a new stream for this entity
	// because allowing the new stream would conflict with an existing stream.
	Conflict = Error{Condition: "conflict"}

	// ConnectionTimeout results when one party is closing the stream because it
	// has reason to believe that the other party has permanently lost the ability
	// to communicate over the stream.
	ConnectionTimeout = Error{Condition: "connection-timeout"}

	// HostGone is sent when the value of the 'to' attribute provided in the
	// initial stream header corresponds to an FQDN that is no longer serviced by
	// the receiving entity.
	HostGone = Error{Condition: "host-gone"}

	// HostUnknown is sent when the value of the 'to' attribute provided in the
	// initial stream header does not correspond to an FQDN that is serviced by
	// the receiving entity.
	HostUnknown = Error{Condition: "host-unknown"}

	// ImproperAddressing is used when a stanza sent between two servers lacks a
	// 'to' or 'from' attribute, or the value violates the rules for XMPP
	// addresses.
	ImproperAddressing = Error{Condition: "improper-addressing"}

	// InternalServerError is sent when the server has experienced a
	// misconfiguration or other internal error that prevents it from servicing
	// the stream.
	InternalServerError = Error{Condition: "internal-server-error"}

	// InvalidFrom is sent when data provided in a 'from' attribute does not
	// match an authorized JID or validated domain.
	InvalidFrom = Error{Condition: "invalid-from"}

	// InvalidID is sent when an SM resumption request names a previd that
	// does not match any resumable session held by this entity.
	InvalidID = Error{Condition: "invalid-id"}

	// InvalidNamespace may be sent when the stream namespace or default
	// content namespace is unsupported.
	InvalidNamespace = Error{Condition: "invalid-namespace"}

	// InvalidXML may be sent when the entity has sent invalid XML over the
	// stream to a server that performs validation.
	InvalidXML = Error{Condition: "invalid-xml"}

	// NotAuthorized may be sent when the entity has attempted to send XML
	// stanzas or other outbound data before the stream has been authenticated.
	NotAuthorized = Error{Condition: "not-authorized"}

	// NotWellFormed may be sent when the initiating entity has sent XML that
	// violates the well-formedness rules of XML or XML namespaces.
	NotWellFormed = Error{Condition: "not-well-formed"}

	// PolicyViolation may be sent when an entity has violated some local
	// service policy (e.g., a stanza exceeds a configured size limit).
	PolicyViolation = Error{Condition: "policy-violation"}

	// RemoteConnectionFailed may be sent when the server is unable to properly
	// connect to a remote entity that is needed for authentication or
	// authorization.
	RemoteConnectionFailed = Error{Condition: "remote-connection-failed"}

	// Reset is sent when the server is closing the stream because it has new
	// security-critical features to offer or keys/certificates have expired.
	Reset = Error{Condition: "reset"}

	// ResourceConstraint may be sent when the server lacks the system
	// resources necessary to service the stream.
	ResourceConstraint = Error{Condition: "resource-constraint"}

	// RestrictedXML may be sent when the entity has attempted to send
	// restricted XML features such as a comment or processing instruction.
	RestrictedXML = Error{Condition: "restricted-xml"}

	// SystemShutdown may be sent when the server is being shut down and all
	// active streams are being closed.
	SystemShutdown = Error{Condition: "system-shutdown"}

	// UndefinedCondition may be sent when the error condition is not one of
	// those defined by the other conditions in this list; it is normally
	// combined with an application-specific condition child element.
	UndefinedCondition = Error{Condition: "undefined-condition"}

	// UnsupportedEncoding may be sent when the initiating entity has encoded
	// the stream in an encoding that is not UTF-8.
	UnsupportedEncoding = Error{Condition: "unsupported-encoding"}

	// UnsupportedFeature may be sent when the receiving entity has advertised
	// a mandatory-to-negotiate stream feature that the initiating entity does
	// not support.
	UnsupportedFeature = Error{Condition: "unsupported-feature"}

	// UnsupportedStanzaType may be sent when the initiating entity has sent a
	// first-level child of the stream that is not supported by the server.
	UnsupportedStanzaType = Error{Condition: "unsupported-stanza-type"}

	// UnsupportedVersion may be sent when the 'version' attribute provided by
	// the initiating entity specifies a version of XMPP that is not
	// supported.
	UnsupportedVersion = Error{Condition: "unsupported-version"}
)

// HandledCountTooHigh builds the XEP-0198 application-specific stream error
// sent when an <a/> or <resumed/> names a handled count that exceeds what
// this entity actually sent: <undefined-condition/> plus a
// <handled-count-too-high/> child in the SM namespace.
func HandledCountTooHigh() Error {
	return Error{
		Condition:   "undefined-condition",
		specialized: "handled-count-too-high",
		specialNS:   ns.SM,
	}
}

// New returns a stream error with the given condition and, optionally,
// human-readable text.
func New(condition, text string) Error {
	return Error{Condition: condition, Text: text}
}

// SeeOtherHostError returns a new see-other-host error with the given network
// address as the host. If the address appears to be a raw IPv6 address (eg.
// "::1"), the error wraps it in brackets ("[::1]").
func SeeOtherHostError(addr net.Addr) Error {
	var cdata string
	if ip := net.ParseIP(addr.String()); ip != nil && ip.To4() == nil && ip.To16() != nil {
		cdata = "[" + addr.String() + "]"
	} else {
		cdata = addr.String()
	}
	return Error{Condition: "see-other-host", Text: cdata}
}

// Error represents an unrecoverable stream-level error (RFC 6120 §4.9).
// Decoding one logically ends the stream.
type Error struct {
	// Condition is one of the defined-condition element names in
	// urn:ietf:params:xml:ns:xmpp-streams, e.g. "bad-format".
	Condition string
	// Text is optional human-readable error text.
	Text string

	// specialized holds an application-specific extension element name
	// (e.g. XEP-0198's "handled-count-too-high") and its namespace, used
	// alongside UndefinedCondition.
	specialized string
	specialNS   string
}

// Error satisfies the builtin error interface and returns the condition
// name, e.g. "restricted-xml".
func (s Error) Error() string {
	if s.Text != "" {
		return s.Condition + ": " + s.Text
	}
	return s.Condition
}

// Specialized reports the application-specific extension element name and
// namespace carried alongside an UndefinedCondition error, if any.
func (s Error) Specialized() (name, namespace string, ok bool) {
	return s.specialized, s.specialNS, s.specialized != ""
}

// UnmarshalXML satisfies the xml package's Unmarshaler interface.
func (s *Error) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	se := struct {
		XMLName xml.Name
		Err     struct {
			XMLName xml.Name
		} `xml:",any"`
		Text string `xml:"urn:ietf:params:xml:ns:xmpp-streams text"`
	}{}
	if err := d.DecodeElement(&se, &start); err != nil {
		return err
	}
	s.Condition = se.Err.XMLName.Local
	s.Text = se.Text
	return nil
}

// MarshalXML satisfies the xml package's Marshaler interface.
func (s Error) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return s.WriteXML(e, xml.StartElement{})
}

// WriteXML satisfies the xmlstream.Marshaler interface.
func (s Error) WriteXML(w xmlstream.TokenWriter, _ xml.StartElement) error {
	_, err := xmlstream.Copy(w, s.TokenReader())
	if err != nil {
		return err
	}
	return w.Flush()
}

// TokenReader returns an xml.TokenReader that emits the wire encoding of the
// error, including a specialized extension child if one is set.
func (s Error) TokenReader() xml.TokenReader {
	var inner xml.TokenReader = xmlstream.Wrap(nil, xml.StartElement{
		Name: xml.Name{Local: s.Condition, Space: ns.StreamErr},
	})
	if s.specialized != "" {
		inner = xmlstream.MultiReader(
			inner,
			xmlstream.Wrap(nil, xml.StartElement{
				Name: xml.Name{Local: s.specialized, Space: s.specialNS},
			}),
		)
	}
	if s.Text != "" {
		inner = xmlstream.MultiReader(
			inner,
			xmlstream.Wrap(
				xmlstream.ReaderFunc(func() (xml.Token, error) {
					return xml.CharData(s.Text), io.EOF
				}),
				xml.StartElement{Name: xml.Name{Local: "text", Space: ns.StreamErr}},
			),
		)
	}
	return xmlstream.Wrap(inner, xml.StartElement{
		Name: xml.Name{Local: "error", Space: ns.Stream},
	})
}
