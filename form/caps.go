// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package form

import "sort"

// FormType returns the value of this form's hidden FORM_TYPE field and
// whether one was found. XEP-0115's caps hash only folds in forms that
// carry a single-valued, hidden FORM_TYPE field.
func (d *Data) FormType() (string, bool) {
	for _, c := range d.children {
		f, ok := c.(field)
		if !ok {
			continue
		}
		if f.Var == "FORM_TYPE" && f.Typ == "hidden" && len(f.Value) == 1 {
			return f.Value[0], true
		}
	}
	return "", false
}

// CapsField is a form field reduced to the var/values pair the caps hash
// needs.
type CapsField struct {
	Var    string
	Values []string
}

// SortedFields returns every field other than FORM_TYPE, sorted by Var, with
// each field's own values sorted lexicographically.
func (d *Data) SortedFields() []CapsField {
	var out []CapsField
	for _, c := range d.children {
		f, ok := c.(field)
		if !ok || f.Var == "" || f.Var == "FORM_TYPE" {
			continue
		}
		values := append([]string(nil), f.Value...)
		sort.Strings(values)
		out = append(out, CapsField{Var: f.Var, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	return out
}
