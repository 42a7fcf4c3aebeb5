// Package console renders the operator feed. It is observability only:
// nothing here influences the HTTP response or persistence.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"bodgate/internal/inbox"
)

const (
	// Renderings longer than this are cut with an explicit marker.
	previewLimit   = 1600
	truncateMarker = "\n... [truncated]"
	separatorHeavy = "================================================================================"
	separatorLight = "--------------------------------------------------------------------------------"
	noSourceMarker = "(none)"
)

type Presenter struct {
	out      io.Writer
	endpoint string
}

func New(out io.Writer, endpoint string) *Presenter {
	return &Presenter{out: out, endpoint: endpoint}
}

// ShowSubmission prints one accepted or duplicate submission.
func (p *Presenter) ShowSubmission(receivedAt time.Time, client, orderID string, headers map[string]string, size int, rendering string) {
	ts := receivedAt.Format(inbox.TimestampLayout)

	xSource := headers["X-Source"]
	if xSource == "" {
		xSource = noSourceMarker
	}

	fmt.Fprintln(p.out, separatorHeavy)
	fmt.Fprintf(p.out, "[%s] POST %s from %s\n", ts, p.endpoint, client)
	fmt.Fprintf(p.out, "X-Source: %s | Content-Type: %s\n", xSource, headers["Content-Type"])
	fmt.Fprintf(p.out, "ORDER_ID: %s | Size: %d bytes\n", orderID, size)
	fmt.Fprintln(p.out, separatorLight)
	fmt.Fprintln(p.out, Truncate(rendering))
	fmt.Fprintln(p.out, separatorHeavy)
}

// ShowMalformed prints one rejected parse failure. detail is the bare parser
// message; the prefix is added only on the console line.
func (p *Presenter) ShowMalformed(receivedAt time.Time, client, detail string) {
	ts := receivedAt.Format(inbox.TimestampLayout)
	fmt.Fprintf(p.out, "[%s] 400 MALFORMED from %s - XML parse error: %s\n", ts, client, detail)
}

// Truncate cuts a rendering above the preview limit, appending the marker.
// The cut never splits a multi-byte rune.
func Truncate(s string) string {
	if len(s) < previewLimit {
		return s
	}
	cut := previewLimit
	for cut > 0 && cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut--
	}
	var b strings.Builder
	b.WriteString(s[:cut])
	b.WriteString(truncateMarker)
	return b.String()
}
