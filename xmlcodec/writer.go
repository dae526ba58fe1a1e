// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlcodec

import (
	"bytes"
	"fmt"

	"git.sr.ht/~wocky/xmpp/internal/ns"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// defaultPrefixes seeds the namespace-to-prefix table every Writer starts
// from; it is read-only and shared across every Writer in the process.
// Writer-local overrides live in each Writer's own overlay so that two
// writers never race on a shared, mutable table.
var defaultPrefixes = map[string]string{
	ns.Stream:     "stream",
	"http://www.google.com/talk/protocol/auth": "ga",
}

// Writer serializes Stanzas (and the streaming open/close bracket around
// them) to XML. Each write call (StreamOpen, StreamClose, WriteStanza,
// WriteNodeTree) serializes into an internal buffer and returns a fresh
// copy of the bytes, resetting the buffer; the returned slice is the
// caller's to keep and is not touched by later writes.
type Writer struct {
	streaming bool
	buf       bytes.Buffer

	defaultNS string
	overlay   map[string]string
	nextQuark uint32
}

// NewWriter constructs a streaming-mode Writer whose elements default to
// the jabber:client namespace.
func NewWriter() *Writer {
	return &Writer{streaming: true, defaultNS: ns.Client}
}

// NewNonStreamingWriter constructs a Writer in non-streaming mode.
func NewNonStreamingWriter() *Writer {
	return &Writer{streaming: false, defaultNS: ns.Client}
}

// SetPrefix overrides the writer-local prefix used for a namespace. It must
// be called before the namespace is first emitted; overrides made after
// that point do not retroactively change already-written output.
func (w *Writer) SetPrefix(namespace, prefix string) {
	if w.overlay == nil {
		w.overlay = make(map[string]string)
	}
	w.overlay[namespace] = prefix
}

func (w *Writer) prefixFor(namespace string) string {
	if namespace == "" || namespace == w.defaultNS {
		return ""
	}
	if p, ok := w.overlay[namespace]; ok {
		return p
	}
	if p, ok := defaultPrefixes[namespace]; ok {
		return p
	}
	id := stanza.InternNS(namespace)
	generated := "wocky-" + base26(uint32(id))
	w.SetPrefix(namespace, generated)
	return generated
}

func base26(v uint32) string {
	if v == 0 {
		return "a"
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{byte('a' + v%26)}, buf...)
		v /= 26
	}
	return string(buf)
}

// Flush discards the writer's internal buffer.
func (w *Writer) Flush() { w.buf.Reset() }

func (w *Writer) bytes() []byte {
	out := append([]byte(nil), w.buf.Bytes()...)
	w.buf.Reset()
	return out
}

// StreamOpen emits the XML declaration and an unclosed <stream:stream>
// start tag binding the default namespace to jabber:client and the stream
// prefix to the XMPP streams namespace. Only legal in streaming mode.
func (w *Writer) StreamOpen(to, from, version, lang, id string) []byte {
	w.buf.Reset()
	w.buf.WriteString(`<?xml version='1.0' encoding='UTF-8'?>`)
	w.buf.WriteString("\n")
	fmt.Fprintf(&w.buf, `<stream:stream xmlns='%s' xmlns:stream='%s'`, w.defaultNS, ns.Stream)
	if to != "" {
		fmt.Fprintf(&w.buf, ` to='%s'`, escapeAttr(to))
	}
	if from != "" {
		fmt.Fprintf(&w.buf, ` from='%s'`, escapeAttr(from))
	}
	if version != "" {
		fmt.Fprintf(&w.buf, ` version='%s'`, escapeAttr(version))
	}
	if lang != "" {
		fmt.Fprintf(&w.buf, ` xml:lang='%s'`, escapeAttr(lang))
	}
	if id != "" {
		fmt.Fprintf(&w.buf, ` id='%s'`, escapeAttr(id))
	}
	w.buf.WriteString(">")
	return w.bytes()
}

// StreamClose emits the closing </stream:stream> tag and a trailing
// newline.
func (w *Writer) StreamClose() []byte {
	w.buf.Reset()
	w.buf.WriteString("</stream:stream>\n")
	return w.bytes()
}

// WriteStanza serializes a Stanza's tree.
func (w *Writer) WriteStanza(s *stanza.Stanza) ([]byte, error) {
	return w.WriteNodeTree(s.Tree)
}

// WriteNodeTree serializes t's root and descendants, omitting the
// containing namespace declaration when it equals the writer's current
// default, emitting explicit xmlns declarations for elements whose
// namespace differs from their parent's, and prefixing stream-namespace
// elements with "stream:".
func (w *Writer) WriteNodeTree(t *stanza.NodeTree) ([]byte, error) {
	w.buf.Reset()
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("xmlcodec: nil node tree")
	}
	w.writeNode(t.Root, w.defaultNS)
	return w.bytes(), nil
}

func (w *Writer) writeNode(n *stanza.Node, parentNS string) {
	localNS := n.Namespace()
	name := n.Name
	if localNS == ns.Stream {
		name = "stream:" + name
	}

	fmt.Fprintf(&w.buf, "<%s", name)
	if localNS != "" && localNS != parentNS && localNS != ns.Stream {
		fmt.Fprintf(&w.buf, " xmlns='%s'", escapeAttr(localNS))
	}
	if n.Lang != "" {
		fmt.Fprintf(&w.buf, " xml:lang='%s'", escapeAttr(n.Lang))
	}
	for _, a := range n.Attrs {
		key := a.Key
		if a.NS != 0 {
			if prefix := w.prefixFor(a.NS.URI()); prefix != "" {
				key = prefix + ":" + key
			}
		}
		fmt.Fprintf(&w.buf, " %s='%s'", key, escapeAttr(a.Value))
	}

	if n.Content == "" && len(n.Children) == 0 {
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteString(">")
	if n.Content != "" {
		w.buf.WriteString(escapeText(n.Content))
	}
	for _, c := range n.Children {
		w.writeNode(c, localNS)
	}
	fmt.Fprintf(&w.buf, "</%s>", name)
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '\'':
			buf.WriteString("&apos;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
