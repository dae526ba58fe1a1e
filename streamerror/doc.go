// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package streamerror contains XMPP stream-level errors as defined by RFC
// 6120 §4.9. Decoding a stream error always means the stream is logically
// closed, even if the underlying transport is still open; callers are
// expected to tear the connection down after observing one.
package streamerror // import "git.sr.ht/~wocky/xmpp/streamerror"
