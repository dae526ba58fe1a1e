// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package xmlcodec implements the incremental, non-blocking XML stream
// reader and writer the C2S porter speaks over: Push-driven stanza
// decoding keyed off a <stream:stream> wrapper in streaming mode, and a
// namespace-prefix-aware serializer for the other direction.
package xmlcodec // import "git.sr.ht/~wocky/xmpp/xmlcodec"
