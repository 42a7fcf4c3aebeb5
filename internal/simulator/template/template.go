// Package template loads BOD templates and fills their placeholders.
// Built-in templates ship with the binary; a templates directory can
// override them without a rebuild.
package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.xml
var builtinTemplates embed.FS

const (
	SalesOrder = "sales_order.xml"
	Malformed  = "malformed.xml"
)

// Values are substituted for the ${...} placeholder tokens. Empty fields
// leave their placeholder unresolved; for the malformed template that is
// the condition under test, not an error.
type Values struct {
	OrderID    string
	Timestamp  string
	CustomerID string
}

type Loader struct {
	dir string
}

// NewLoader returns a loader that prefers templates from dir when set,
// falling back to the built-in set.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) Load(name string) (string, error) {
	if l.dir != "" {
		path := filepath.Join(l.dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", path, err)
		}
	}

	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return string(data), nil
}

// Render substitutes the non-empty values into the template.
func Render(tmpl string, v Values) string {
	pairs := make([]string, 0, 6)
	if v.OrderID != "" {
		pairs = append(pairs, "${ORDER_ID}", v.OrderID)
	}
	if v.Timestamp != "" {
		pairs = append(pairs, "${TIMESTAMP}", v.Timestamp)
	}
	if v.CustomerID != "" {
		pairs = append(pairs, "${CUSTOMER_ID}", v.CustomerID)
	}
	if len(pairs) == 0 {
		return tmpl
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
