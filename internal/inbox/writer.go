// Package inbox persists one artifact/metadata file pair per submission.
// Files are immutable once written; collisions under identical
// timestamp+identifier are last-write-wins.
package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout matches the second-granularity stamp used in filenames
// and metadata.
const TimestampLayout = "20060102-150405"

// Metadata is the sidecar record for a well-formed submission.
type Metadata struct {
	Timestamp string            `json:"timestamp"`
	Client    string            `json:"client"`
	Status    int               `json:"status"`
	OrderID   string            `json:"order_id"`
	Headers   map[string]string `json:"headers"`
	Bytes     int               `json:"bytes"`
	Endpoint  string            `json:"endpoint"`
}

// MalformedMetadata is the sidecar record for a submission that failed the
// XML parse. No order id field: identifier logic is bypassed entirely.
type MalformedMetadata struct {
	Timestamp string            `json:"timestamp"`
	Client    string            `json:"client"`
	Status    int               `json:"status"`
	Reason    string            `json:"reason"`
	Headers   map[string]string `json:"headers"`
}

type Writer struct {
	dir string
}

// NewWriter creates the inbox directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

// WriteArtifact stores the rendered document and its metadata, returning
// both file paths. Both files exist when this returns without error.
func (w *Writer) WriteArtifact(receivedAt time.Time, orderID, rendering string, meta Metadata) (string, string, error) {
	base := fmt.Sprintf("%s_%s", receivedAt.Format(TimestampLayout), SanitizeName(orderID))
	return w.writePair(base, []byte(rendering), meta)
}

// WriteMalformed stores the raw bytes unmodified under the malformed marker.
func (w *Writer) WriteMalformed(receivedAt time.Time, raw []byte, meta MalformedMetadata) (string, string, error) {
	base := fmt.Sprintf("%s_malformed", receivedAt.Format(TimestampLayout))
	return w.writePair(base, raw, meta)
}

func (w *Writer) writePair(base string, document []byte, meta interface{}) (string, string, error) {
	xmlPath := filepath.Join(w.dir, base+".xml")
	metaPath := filepath.Join(w.dir, base+".meta.json")

	if err := os.WriteFile(xmlPath, document, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write artifact %s: %w", xmlPath, err)
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal metadata for %s: %w", base, err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write metadata %s: %w", metaPath, err)
	}

	return xmlPath, metaPath, nil
}

// SanitizeName keeps filenames flat: structural extraction accepts any
// non-empty text as an identifier, so path separators and other hostile
// runes must not reach the filesystem layer.
func SanitizeName(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, id)
}
