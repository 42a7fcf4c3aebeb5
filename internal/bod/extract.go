package bod

import (
	"regexp"
	"strings"
)

// Unknown is the sentinel identifier for documents where no order
// identifier could be extracted. Unknown submissions are exempt from
// duplicate detection.
const Unknown = "UNKNOWN"

// orderIDPattern matches the timestamp-suffixed convention used by the
// upstream generators: ORD-/BULK-/AUTO- followed by a date-time stamp.
var orderIDPattern = regexp.MustCompile(`\b(ORD|BULK|AUTO)-\d{8}-\d{6}\b`)

// probePaths are tried in priority order; each is a descendant search below
// the root element. Production documents place the identifier under many
// tag names, so the first probe with non-empty trimmed text wins.
var probePaths = []string{
	".//OrderID",
	".//OrderId",
	".//OrderNumber",
	".//Order/ID",
	".//ID",
	".//DocumentID",
	".//SalesOrder/OrderID",
	".//Header/OrderID",
	".//OrderHeader/OrderID",
}

// ExtractOrderID returns the best-effort order identifier of a parsed
// document: structural probes below the root first, then a pattern scan over
// the full raw decoded text, then Unknown. The root element itself is never a
// probe match.
func ExtractOrderID(d *ParsedDocument) string {
	root := d.doc.Root()
	for _, path := range probePaths {
		el := root.FindElement(path)
		if el == nil {
			continue
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
	}

	if m := orderIDPattern.FindString(DecodeRaw(d.raw)); m != "" {
		return m
	}

	return Unknown
}
