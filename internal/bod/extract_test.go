package bod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *ParsedDocument {
	t.Helper()
	doc, err := Parse([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestExtractOrderID_ProbePaths(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "OrderID element",
			xml:  `<SalesOrder><Header><OrderID>ORD-20250101-120000</OrderID></Header></SalesOrder>`,
			want: "ORD-20250101-120000",
		},
		{
			name: "OrderId casing variant",
			xml:  `<Doc><OrderId>ORD-20250101-120001</OrderId></Doc>`,
			want: "ORD-20250101-120001",
		},
		{
			name: "OrderNumber",
			xml:  `<Doc><OrderNumber>PO-998877</OrderNumber></Doc>`,
			want: "PO-998877",
		},
		{
			name: "bare ID element",
			xml:  `<Doc><ID>42</ID></Doc>`,
			want: "42",
		},
		{
			name: "DocumentID",
			xml:  `<Doc><DocumentID>DOC-7</DocumentID></Doc>`,
			want: "DOC-7",
		},
		{
			name: "surrounding whitespace trimmed",
			xml:  "<Doc><OrderID>\n  ORD-20250101-120002  \n</OrderID></Doc>",
			want: "ORD-20250101-120002",
		},
		{
			name: "nested deep in the tree",
			xml:  `<Envelope><Body><SalesOrder><Lines/><Header><OrderID>ORD-20250301-080000</OrderID></Header></SalesOrder></Body></Envelope>`,
			want: "ORD-20250301-080000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractOrderID(mustParse(t, tt.xml))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractOrderID_ProbePrecedence(t *testing.T) {
	// OrderID outranks OrderNumber regardless of document order.
	xml := `<Doc><OrderNumber>SECOND</OrderNumber><OrderID>FIRST</OrderID></Doc>`
	assert.Equal(t, "FIRST", ExtractOrderID(mustParse(t, xml)))
}

func TestExtractOrderID_EmptyProbeFallsThrough(t *testing.T) {
	// An empty OrderID does not stop the probe sequence.
	xml := `<Doc><OrderID>  </OrderID><OrderNumber>PO-1</OrderNumber></Doc>`
	assert.Equal(t, "PO-1", ExtractOrderID(mustParse(t, xml)))
}

func TestExtractOrderID_PatternFallback(t *testing.T) {
	// No probe path matches, but a conforming id appears in free text.
	xml := `<Note><Text>please reconcile BULK-20250102-093000 with billing</Text></Note>`
	assert.Equal(t, "BULK-20250102-093000", ExtractOrderID(mustParse(t, xml)))
}

func TestExtractOrderID_Unknown(t *testing.T) {
	xml := `<Note><Text>no identifiers of any kind here</Text></Note>`
	assert.Equal(t, Unknown, ExtractOrderID(mustParse(t, xml)))
}

func TestExtractOrderID_RootElementNotProbed(t *testing.T) {
	// Probes search below the root, so a document whose root happens to be
	// named OrderID yields no structural match and falls through to the
	// pattern scan.
	assert.Equal(t, Unknown, ExtractOrderID(mustParse(t, `<OrderID>abc</OrderID>`)))
	assert.Equal(t, "ORD-20250101-120000",
		ExtractOrderID(mustParse(t, `<OrderID>ORD-20250101-120000</OrderID>`)))
}

func TestExtractOrderID_PatternShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "BULK prefix", text: "BULK-20250101-120000", want: "BULK-20250101-120000"},
		{name: "AUTO prefix", text: "AUTO-20250101-120000", want: "AUTO-20250101-120000"},
		{name: "wrong prefix", text: "PO-20250101-120000", want: Unknown},
		{name: "short date part", text: "ORD-2025-120000", want: Unknown},
		{name: "short time part", text: "ORD-20250101-1200", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := "<Note><Text>" + tt.text + "</Text></Note>"
			assert.Equal(t, tt.want, ExtractOrderID(mustParse(t, xml)))
		})
	}
}
