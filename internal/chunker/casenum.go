package chunker

import "regexp"

// caseNumberRe matches CNJ unified numbering: NNNNNNN-DD.YYYY.J.TR.OOOO.
var caseNumberRe = regexp.MustCompile(`\b\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}\b`)

// ExtractCaseNumber returns the first CNJ process number found in text, or
// empty when none matches.
func ExtractCaseNumber(text string) string {
	return caseNumberRe.FindString(text)
}
