package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ClassNames is the canonical layout class table, in index order. The
// order is a contract with the shipped detector model and must not be
// rearranged.
var ClassNames = [...]string{
	"abstract",          // 0
	"algorithm",         // 1
	"aside_text",        // 2
	"chart",             // 3
	"content",           // 4
	"display_formula",   // 5
	"doc_title",         // 6
	"figure_title",      // 7
	"footer",            // 8
	"footer_image",      // 9
	"footnote",          // 10
	"formula_number",    // 11
	"header",            // 12
	"header_image",      // 13
	"image",             // 14
	"inline_formula",    // 15
	"number",            // 16
	"paragraph_title",   // 17
	"reference",         // 18
	"reference_content", // 19
	"seal",              // 20
	"table",             // 21
	"text",              // 22
	"vertical_text",     // 23
	"vision_footnote",   // 24
}

// ClassCount is the number of entries in the canonical class table.
const ClassCount = len(ClassNames)

// ClassText is the class index of plain body text, used by fallback
// analyses.
const ClassText = 22

// classAliases maps legacy class spellings (from an older table revision)
// to their canonical names. Aliases are accepted when reading
// configuration but never written back.
var classAliases = map[string]string{
	"document_title": "doc_title",
	"references":     "reference",
}

// ClassName returns the canonical name for a class index, or "" if the
// index is out of range.
func ClassName(id int) string {
	if id < 0 || id >= ClassCount {
		return ""
	}
	return ClassNames[id]
}

// ClassID returns the index for a class name, resolving legacy aliases.
// The second return value reports whether the name was recognized.
func ClassID(name string) (int, bool) {
	if canonical, ok := classAliases[name]; ok {
		name = canonical
	}
	for i, n := range ClassNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// DefaultNavigableClasses returns the class indices navigable in rail
// mode by default: readable text regions only.
func DefaultNavigableClasses() map[int]bool {
	names := []string{
		"abstract", "algorithm", "aside_text", "doc_title",
		"footnote", "paragraph_title", "reference", "text",
	}
	set := make(map[int]bool, len(names))
	for _, n := range names {
		if id, ok := ClassID(n); ok {
			set[id] = true
		}
	}
	return set
}

var titleCaser = cases.Title(language.English)

// ClassDisplayName returns a human-readable form of a class name for
// overlay legends and logs, e.g. "paragraph_title" becomes
// "Paragraph Title".
func ClassDisplayName(id int) string {
	name := ClassName(id)
	if name == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
