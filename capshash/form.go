// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package capshash

import "git.sr.ht/~wocky/xmpp/form"

// FromData converts a locally-built form.Data into the Form representation
// Compute expects, for capability forms constructed with the form package's
// builder rather than decoded off the wire. It reports false if the form
// carries no usable FORM_TYPE field.
func FromData(d *form.Data) (Form, bool) {
	formType, ok := d.FormType()
	if !ok {
		return Form{}, false
	}
	f := Form{Fields: []Field{{Var: "FORM_TYPE", Hidden: true, Values: []string{formType}}}}
	for _, sf := range d.SortedFields() {
		f.Fields = append(f.Fields, Field{Var: sf.Var, Values: sf.Values})
	}
	return f, true
}
