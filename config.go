// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmpp

import (
	"golang.org/x/text/language"
)

// Config holds the pieces of stream negotiation this module does not
// perform itself (TLS, SASL, and resource binding are an external
// connector's job, see the package doc) but that the connector needs in
// order to negotiate on behalf of a particular identity.
type Config struct {
	// The default language for any streams constructed using this config.
	Lang language.Tag

	// The authorization identity, and password to authenticate with.
	// Identity is used when a user wants to act on behalf of another user. For
	// instance, an admin might want to log in as another user to help them
	// troubleshoot an issue. Normally it is left blank and the localpart of the
	// Origin JID is used.
	Identity, Password string
}
