// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package streamerror_test

import (
	"encoding/xml"
	"fmt"
	"net"
	"testing"

	"git.sr.ht/~wocky/xmpp/streamerror"
)

var (
	_ error           = (*streamerror.Error)(nil)
	_ error           = streamerror.Error{}
	_ xml.Marshaler   = (*streamerror.Error)(nil)
	_ xml.Marshaler   = streamerror.Error{}
	_ xml.Unmarshaler = (*streamerror.Error)(nil)
)

var marshalSeeOtherHostTests = [...]struct {
	ipaddr net.Addr
	xml    string
}{
	0: {&net.IPAddr{IP: net.ParseIP("::1")}, `<error xmlns="http://etherx.jabber.org/streams"><see-other-host xmlns="urn:ietf:params:xml:ns:xmpp-streams"></see-other-host><text xmlns="urn:ietf:params:xml:ns:xmpp-streams">[::1]</text></error>`},
	1: {&net.IPAddr{IP: net.ParseIP("127.0.0.1")}, `<error xmlns="http://etherx.jabber.org/streams"><see-other-host xmlns="urn:ietf:params:xml:ns:xmpp-streams"></see-other-host><text xmlns="urn:ietf:params:xml:ns:xmpp-streams">127.0.0.1</text></error>`},
}

func TestMarshalSeeOtherHost(t *testing.T) {
	for i, test := range marshalSeeOtherHostTests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			soh := streamerror.SeeOtherHostError(test.ipaddr)
			xb, err := xml.Marshal(soh)
			if err != nil {
				t.Fatal(err)
			}
			if xbs := string(xb); xbs != test.xml {
				t.Errorf("Bad output:\nwant=`%s`,\ngot=`%s`", test.xml, xbs)
			}
		})
	}
}

var unmarshalTests = [...]struct {
	xml string
	se  streamerror.Error
	err bool
}{
	0: {
		`<stream:error><restricted-xml xmlns="urn:ietf:params:xml:ns:xmpp-streams"></restricted-xml></stream:error>`,
		streamerror.RestrictedXML, false,
	},
	1: {
		`<stream:error></a>`,
		streamerror.RestrictedXML, true,
	},
}

func TestUnmarshal(t *testing.T) {
	for i, test := range unmarshalTests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			s := streamerror.Error{}
			err := xml.Unmarshal([]byte(test.xml), &s)
			switch {
			case test.err && err == nil:
				t.Errorf("Expected unmarshaling error for `%v` to fail", test.xml)
				return
			case !test.err && err != nil:
				t.Error(err)
				return
			case err != nil:
				return
			case s.Condition != test.se.Condition:
				t.Errorf("Expected Condition `%#v` but got `%#v`", test.se, s)
			}
		})
	}
}

func TestErrorReturnsErr(t *testing.T) {
	if streamerror.RestrictedXML.Error() != "restricted-xml" {
		t.Error("Error should return the name of the err")
	}
}

func TestHandledCountTooHigh(t *testing.T) {
	err := streamerror.HandledCountTooHigh()
	name, namespace, ok := err.Specialized()
	if !ok {
		t.Fatal("expected a specialized condition")
	}
	if name != "handled-count-too-high" {
		t.Errorf("unexpected specialized name: %q", name)
	}
	if namespace != "urn:xmpp:sm:3" {
		t.Errorf("unexpected specialized namespace: %q", namespace)
	}
}
