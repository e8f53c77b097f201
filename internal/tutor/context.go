package tutor

import (
	"fmt"
	"sort"
	"strings"
)

// MaxContextChars bounds the assembled context block fed to the model.
const MaxContextChars = 20000

// missingTextPlaceholder stands in for a passage whose text extraction
// failed upstream. The passage is kept, not dropped, so passage counts and
// source lists stay consistent.
const missingTextPlaceholder = "[Content missing]"

// AssembleContext concatenates the passages into one bounded context block
// and collects the distinct source documents that contributed. Passages are
// kept in the order received (already ranked by the index service). The
// block is truncated to MaxContextChars with a plain suffix cut; no attempt
// is made to keep whole passages at the boundary. Sources are returned
// sorted ascending. Pure function.
func AssembleContext(passages []Passage) (string, []string) {
	var b strings.Builder
	seen := make(map[string]struct{})
	for _, p := range passages {
		text := p.Text
		if text == "" {
			text = missingTextPlaceholder
		}
		fmt.Fprintf(&b, "--- Source: %s ---\n", p.PDFName)
		b.WriteString(text)
		b.WriteString("\n\n")
		seen[p.PDFName] = struct{}{}
	}

	block := b.String()
	if runes := []rune(block); len(runes) > MaxContextChars {
		block = string(runes[:MaxContextChars])
	}

	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return block, sources
}
