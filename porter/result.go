// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package porter

import (
	"errors"

	"git.sr.ht/~wocky/xmpp/stanza"
)

// ErrForciblyClosed is the error completing any outstanding send/close
// future when ForceCloseAsync tears the connection down.
var ErrForciblyClosed = errors.New("porter: connection forcibly closed")

// ErrClosed is returned by operations attempted after the porter has
// already closed.
var ErrClosed = errors.New("porter: porter is closed")

// ErrSpoofed marks an IQ response that failed the from-address spoofing
// check; it is never delivered to the waiting caller; it is surfaced here
// only for tests and logging that observe the drop.
var ErrSpoofed = errors.New("porter: iq response failed the spoofing check")

// Result is the outcome of a SendAsync call.
type Result struct {
	Err error
}

// IQResult is the outcome of a SendIQAsync call: either the matching
// response stanza, or an error (including context cancellation or
// ErrForciblyClosed).
type IQResult struct {
	Stanza *stanza.Stanza
	Err    error
}
