package explain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// transformerPrefixes are training-pipeline prefixes stripped from transformed
// column names before display.
var transformerPrefixes = []string{"cont__", "cat__", "bin__", "remainder__"}

var titler = cases.Title(language.English, cases.NoLower)

// Namer turns transformed column names into display names for attribution
// output. Overrides win; everything else gets prefix stripping, underscores
// to spaces, and word capitalization.
type Namer struct {
	Overrides map[string]string
	// Raw keeps column names untouched (minus overrides); the cervical
	// variant reports sanitized pipeline names verbatim.
	Raw bool
}

// Display returns the display name for a transformed column.
func (n *Namer) Display(col string) string {
	if n != nil {
		if v, ok := n.Overrides[col]; ok {
			return v
		}
		if n.Raw {
			return col
		}
	}
	name := col
	for _, p := range transformerPrefixes {
		name = strings.TrimPrefix(name, p)
	}
	name = strings.ReplaceAll(name, "_", " ")
	return titler.String(name)
}
