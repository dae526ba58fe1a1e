// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package form_test

import (
	"encoding/xml"
	"testing"

	"mellium.im/xmlstream"

	"git.sr.ht/~wocky/xmpp/form"
)

var (
	_ xml.Marshaler       = (*form.Data)(nil)
	_ xmlstream.Marshaler = (*form.Data)(nil)
)

var marshalTestCases = [...]struct {
	Data     *form.Data
	Expected string
}{
	0: {
		Data:     form.New(),
		Expected: `<x xmlns="jabber:x:data" type="form"></x>`,
	},
	1: {
		Data:     form.New(form.Title("caps")),
		Expected: `<x xmlns="jabber:x:data" type="form"><title>caps</title></x>`,
	},
	2: {
		Data: form.New(
			form.Hidden("FORM_TYPE", form.Value("urn:xmpp:dataforms:softwareinfo")),
			form.TextSingle("os", form.Value("Linux")),
		),
		Expected: `<x xmlns="jabber:x:data" type="form"><field type="hidden" var="FORM_TYPE"><value>urn:xmpp:dataforms:softwareinfo</value></field><field type="text-single" var="os"><value>Linux</value></field></x>`,
	},
}

func TestMarshal(t *testing.T) {
	for i, tc := range marshalTestCases {
		b, err := xml.Marshal(tc.Data)
		if err != nil {
			t.Fatalf("case %d: error marshaling: %v", i, err)
		}
		if string(b) != tc.Expected {
			t.Errorf("case %d: wrong XML:\nwant=%s\n got=%s", i, tc.Expected, b)
		}
	}
}

func TestFormTypeAndSortedFields(t *testing.T) {
	d := form.New(
		form.Hidden("FORM_TYPE", form.Value("urn:xmpp:dataforms:softwareinfo")),
		form.TextSingle("os", form.Value("Linux")),
		form.TextSingle("os_version", form.Value("5.10")),
	)
	ft, ok := d.FormType()
	if !ok || ft != "urn:xmpp:dataforms:softwareinfo" {
		t.Fatalf("FormType() = %q, %t, want urn:xmpp:dataforms:softwareinfo, true", ft, ok)
	}
	fields := d.SortedFields()
	if len(fields) != 2 {
		t.Fatalf("SortedFields() returned %d fields, want 2", len(fields))
	}
	if fields[0].Var != "os" || fields[1].Var != "os_version" {
		t.Errorf("SortedFields() = %+v, want os before os_version", fields)
	}
}

func TestFormTypeMissing(t *testing.T) {
	d := form.New(form.TextSingle("os", form.Value("Linux")))
	if _, ok := d.FormType(); ok {
		t.Error("FormType() reported ok for a form with no FORM_TYPE field")
	}
}
