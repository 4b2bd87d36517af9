package chunker

import "strings"

// Section is a labeled span of the document opened by a heading and extending
// to the next heading or end of text.
type Section struct {
	Label string
	Start int
	End   int
}

// SectionDetector finds labeled sections in a document. Pluggable per document
// family: other corpora need different heading vocabularies.
type SectionDetector interface {
	Detect(text string) []Section
}

// legalHeadings are the section tokens of Brazilian court documents,
// recognized at line starts.
var legalHeadings = []string{
	"EMENTA",
	"RELATÓRIO",
	"VOTO",
	"ACÓRDÃO",
	"DECISÃO",
	"SENTENÇA",
	"INTIMAÇÃO",
	"CITAÇÃO",
	"EDITAL",
	"DISPOSITIVO",
	"FUNDAMENTAÇÃO",
}

// LegalSectionDetector recognizes Brazilian legal-document headings.
type LegalSectionDetector struct{}

// NewLegalSectionDetector creates the court-document section detector.
func NewLegalSectionDetector() *LegalSectionDetector {
	return &LegalSectionDetector{}
}

// Detect scans line starts for known heading tokens. Each heading opens a
// section at its line-start offset; the previous section closes there.
func (d *LegalSectionDetector) Detect(text string) []Section {
	var sections []Section

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := lineStart
		for lineEnd < len(text) && text[lineEnd] != '\n' {
			lineEnd++
		}
		if label, ok := headingLabel(text[lineStart:lineEnd]); ok {
			if n := len(sections); n > 0 {
				sections[n-1].End = lineStart
			}
			sections = append(sections, Section{Label: label, Start: lineStart, End: len(text)})
		}
		if lineEnd >= len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	return sections
}

// headingLabel reports whether the line opens a known section. The token must
// start the line (after indentation) and be followed by a separator or line
// end, so "VOTO:" and "VOTO - vencido" match but "VOTOU" does not.
func headingLabel(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, h := range legalHeadings {
		if !strings.HasPrefix(trimmed, h) {
			continue
		}
		rest := trimmed[len(h):]
		if rest == "" || isHeadingSeparator(rest[0]) {
			return h, true
		}
	}
	return "", false
}

func isHeadingSeparator(b byte) bool {
	switch b {
	case ':', ' ', '\t', '-', '.', '\r':
		return true
	}
	return false
}

// sectionAt returns the label of the section whose span contains offset, or
// empty when no heading encloses it.
func sectionAt(sections []Section, offset int) string {
	for _, s := range sections {
		if offset >= s.Start && offset < s.End {
			return s.Label
		}
	}
	return ""
}
