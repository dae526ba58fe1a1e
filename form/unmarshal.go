// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package form

import "encoding/xml"

// shadowData mirrors Data's wire shape with exported fields so that
// encoding/xml can decode directly into it; Data itself keeps its fields
// unexported to force callers through the Option-based constructors.
type shadowData struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title"`
	Field []field `xml:"field"`
}

// UnmarshalXML satisfies xml.Unmarshaler for *Data, allowing a data form
// received over the wire (e.g. in a disco#info response) to be decoded
// back into a Data value usable with FormType/SortedFields.
func (d *Data) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var shadow shadowData
	if err := dec.DecodeElement(&shadow, &start); err != nil {
		return err
	}
	d.typ = shadow.Type
	d.title.Text = shadow.Title
	d.children = d.children[:0]
	for _, f := range shadow.Field {
		d.children = append(d.children, f)
	}
	return nil
}
