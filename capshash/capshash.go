// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package capshash computes the XEP-0115 Entity Capabilities verification
// string: a SHA-1 hash over a deterministic byte sequence built from an
// entity's sorted identities, features, and extended (data-form) service
// discovery information, base64-encoded.
package capshash // import "git.sr.ht/~wocky/xmpp/capshash"

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"sort"

	"git.sr.ht/~wocky/xmpp/internal/ns"
	"git.sr.ht/~wocky/xmpp/stanza"
)

// ErrFormTypeValues is returned when a data form's FORM_TYPE field does not
// have exactly one value.
var ErrFormTypeValues = errors.New("capshash: FORM_TYPE field must have exactly one value")

// ErrAnonymousField is returned when a data form contains a field with no
// var attribute.
var ErrAnonymousField = errors.New("capshash: form field has no var attribute")

// ErrFieldNoValue is returned when a non-FORM_TYPE field has no values.
var ErrFieldNoValue = errors.New("capshash: form field has no value")

// ErrDuplicateForm is returned when two or more data forms share the same
// FORM_TYPE value.
var ErrDuplicateForm = errors.New("capshash: duplicate FORM_TYPE in data forms")

// Identity is a disco#info identity: a category/type pair with an optional
// human-readable name in an optional language.
type Identity struct {
	Category string
	Type     string
	Lang     string
	Name     string
}

// Field is a single field of a data form, as relevant to the caps hash: its
// var name and its (possibly multi-valued) contents.
type Field struct {
	// Var is the field's var attribute. A FORM_TYPE field is identified by
	// Var == "FORM_TYPE" and must be the form's hidden type field.
	Var string
	// Hidden reports whether the field's type attribute is "hidden". Only
	// a hidden FORM_TYPE field is included in the hash; any other form is
	// skipped.
	Hidden bool
	Values []string
}

// Form is an extended service discovery data form (XEP-0128), reduced to
// the fields the caps hash needs.
type Form struct {
	Fields []Field
}

// formType returns the form's FORM_TYPE field and whether it was found.
func (f Form) formType() (Field, bool) {
	for _, fld := range f.Fields {
		if fld.Var == "FORM_TYPE" {
			return fld, true
		}
	}
	return Field{}, false
}

// identityCmp mirrors wocky_disco_identity_cmp: compare by category, then
// type, then lang, then name.
func identityCmp(a, b Identity) bool {
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Lang != b.Lang {
		return a.Lang < b.Lang
	}
	return a.Name < b.Name
}

// formTypeValue returns a form's FORM_TYPE value, or "" if it has none, for
// sort-ordering purposes only (forms without a usable FORM_TYPE are dropped
// later, during hashing).
func formTypeValue(f Form) string {
	ft, ok := f.formType()
	if !ok || len(ft.Values) == 0 {
		return ""
	}
	return ft.Values[0]
}

// Compute hashes features, identities, and forms per XEP-0115 v1.5 §5.1 and
// returns the base64-encoded SHA-1 digest. It mirrors
// wocky_caps_hash_compute_from_lists: forms missing a hidden FORM_TYPE field
// are silently skipped, but a form with a malformed FORM_TYPE, an anonymous
// field, a valueless field, or a FORM_TYPE value already seen in an earlier
// form is an error.
func Compute(features []string, identities []Identity, forms []Form) (string, error) {
	sortedIdentities := append([]Identity(nil), identities...)
	sort.SliceStable(sortedIdentities, func(i, j int) bool {
		return identityCmp(sortedIdentities[i], sortedIdentities[j])
	})

	sortedFeatures := append([]string(nil), features...)
	sort.Strings(sortedFeatures)

	sortedForms := append([]Form(nil), forms...)
	sort.SliceStable(sortedForms, func(i, j int) bool {
		return formTypeValue(sortedForms[i]) < formTypeValue(sortedForms[j])
	})

	h := sha1.New()

	for _, id := range sortedIdentities {
		h.Write([]byte(id.Category + "/" + id.Type + "/" + id.Lang + "/" + id.Name))
		h.Write([]byte{'<'})
	}
	for _, feat := range sortedFeatures {
		h.Write([]byte(feat))
		h.Write([]byte{'<'})
	}

	seenForms := make(map[string]bool, len(sortedForms))
	for _, form := range sortedForms {
		ft, ok := form.formType()
		if !ok {
			// No FORM_TYPE field: skip this form, matching the original's
			// DEBUG-and-continue behavior.
			continue
		}
		if !ft.Hidden {
			continue
		}
		if len(ft.Values) != 1 {
			return "", ErrFormTypeValues
		}
		formName := ft.Values[0]
		if seenForms[formName] {
			return "", ErrDuplicateForm
		}
		seenForms[formName] = true

		h.Write([]byte(formName))
		h.Write([]byte{'<'})

		fields := append([]Field(nil), form.Fields...)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Var < fields[j].Var })

		for _, field := range fields {
			if field.Var == "" {
				return "", ErrAnonymousField
			}
			if field.Var == "FORM_TYPE" {
				continue
			}
			h.Write([]byte(field.Var))
			h.Write([]byte{'<'})

			if len(field.Values) == 0 {
				return "", ErrFieldNoValue
			}
			values := append([]string(nil), field.Values...)
			sort.Strings(values)
			for _, v := range values {
				h.Write([]byte(v))
				h.Write([]byte{'<'})
			}
		}
	}

	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// ComputeNode computes the caps hash from a received disco#info response
// node: its identity and feature children, plus any extended-info <x/>
// children in the jabber:x:data namespace, mirroring
// wocky_caps_hash_compute_from_node.
func ComputeNode(node *stanza.Node) (string, error) {
	var identities []Identity
	var features []string

	node.Each(func(c *stanza.Node) {
		switch c.Name {
		case "identity":
			category, ok := c.Attr("category")
			if !ok {
				return
			}
			typ, _ := c.Attr("type")
			name, _ := c.Attr("name")
			identities = append(identities, Identity{
				Category: category,
				Type:     typ,
				Lang:     c.Lang,
				Name:     name,
			})
		case "feature":
			v, ok := c.Attr("var")
			if !ok {
				return
			}
			features = append(features, v)
		}
	})

	var forms []Form
	node.Each(func(c *stanza.Node) {
		if c.Name != "x" || c.Namespace() != ns.Data {
			return
		}
		forms = append(forms, formFromNode(c))
	})

	return Compute(features, identities, forms)
}

// formFromNode decodes a jabber:x:data <x/> node's <field/> children into a
// Form, reading each field's type attribute ("hidden" matters, the rest are
// carried through as plain values) and its <value/> children.
func formFromNode(x *stanza.Node) Form {
	var form Form
	x.Each(func(field *stanza.Node) {
		if field.Name != "field" {
			return
		}
		v, _ := field.Attr("var")
		typ, _ := field.Attr("type")
		fld := Field{Var: v, Hidden: typ == "hidden"}
		field.Each(func(value *stanza.Node) {
			if value.Name != "value" {
				return
			}
			fld.Values = append(fld.Values, value.Content)
		})
		form.Fields = append(form.Fields, fld)
	})
	return form
}
