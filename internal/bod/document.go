package bod

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// ParsedDocument is the result of a successful strict XML parse of one
// submission body. It keeps the raw bytes alongside the element tree so the
// pattern-based identifier fallback can scan text the tree does not expose.
type ParsedDocument struct {
	doc *etree.Document
	raw []byte
}

// Parse attempts a strict XML parse of raw. Any single well-formed document
// is accepted; multiple roots or content after the document element are
// rejected. No schema validation is applied. The returned error is the bare
// parser message so callers can surface it verbatim.
func Parse(raw []byte) (*ParsedDocument, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("no element found")
	}
	return &ParsedDocument{doc: doc, raw: raw}, nil
}

// Raw returns the exact bytes the document was parsed from.
func (d *ParsedDocument) Raw() []byte {
	return d.raw
}

// Pretty renders the document indented for storage and console display.
// Indentation happens on a copy so the probe tree stays untouched. If
// serialization fails the raw bytes are decoded instead; presentation never
// fails a request.
func (d *ParsedDocument) Pretty() string {
	clone := d.doc.Copy()
	clone.Indent(2)
	s, err := clone.WriteToString()
	if err != nil || s == "" {
		return DecodeRaw(d.raw)
	}
	return s
}

// DecodeRaw decodes bytes as UTF-8, substituting invalid sequences.
func DecodeRaw(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}
