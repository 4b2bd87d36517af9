// Package chunker splits normalized document text into overlapping,
// section-aware retrieval units. Pure functions, no I/O.
package chunker

// Piece is one retrieval unit produced by the chunker. Content is always the
// exact text[StartOffset:EndOffset] slice of the input, so a piece can be
// mapped back to its source span.
type Piece struct {
	Content       string
	StartOffset   int
	EndOffset     int
	Section       string
	CaseNumber    string
	TokenEstimate int
}

// Options tunes chunk sizing in estimated tokens (len/4 heuristic, tuned for
// Portuguese legal text).
type Options struct {
	TargetTokens  int // close the running buffer before exceeding this
	OverlapTokens int // trailing slice seeded into the next chunk
	MinTokens     int // trailing buffers below this floor are discarded
}

// DefaultOptions returns the production chunk sizing.
func DefaultOptions() Options {
	return Options{TargetTokens: 512, OverlapTokens: 100, MinTokens: 100}
}

// Chunker accumulates paragraphs into sized pieces and tags them with the
// enclosing document section.
type Chunker struct {
	opts     Options
	sections SectionDetector
}

// New creates a chunker. A nil detector disables section tagging.
func New(opts Options, sections SectionDetector) *Chunker {
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = DefaultOptions().TargetTokens
	}
	if opts.OverlapTokens <= 0 {
		opts.OverlapTokens = DefaultOptions().OverlapTokens
	}
	if opts.MinTokens <= 0 {
		opts.MinTokens = DefaultOptions().MinTokens
	}
	return &Chunker{opts: opts, sections: sections}
}

// EstimateTokens approximates the token count of text as len/4.
func EstimateTokens(text string) int { return len(text) / 4 }

type span struct {
	start, end int
}

// Chunk splits text into ordered pieces. Deterministic and restartable:
// identical input always yields identical output. Empty or blank input yields
// zero pieces; input below the minimum floor yields exactly one.
func (c *Chunker) Chunk(text string) []Piece {
	paras := paragraphSpans(text)
	if len(paras) == 0 {
		return nil
	}

	targetChars := c.opts.TargetTokens * 4
	overlapChars := c.opts.OverlapTokens * 4
	minChars := c.opts.MinTokens * 4

	var spans []span
	cur := paras[0]
	for _, p := range paras[1:] {
		if p.end-cur.start > targetChars {
			spans = append(spans, cur)
			// Seed the next buffer with the trailing word-boundary slice of
			// the chunk just closed.
			cur = span{start: overlapStart(text, cur, overlapChars), end: p.end}
			continue
		}
		cur.end = p.end
	}

	// A trailing partial buffer below the floor is dropped rather than
	// emitted as a tiny orphan, unless it would be the only chunk.
	if cur.end-cur.start >= minChars || len(spans) == 0 {
		spans = append(spans, cur)
	}

	var sections []Section
	if c.sections != nil {
		sections = c.sections.Detect(text)
	}

	pieces := make([]Piece, 0, len(spans))
	for _, s := range spans {
		content := text[s.start:s.end]
		pieces = append(pieces, Piece{
			Content:       content,
			StartOffset:   s.start,
			EndOffset:     s.end,
			Section:       sectionAt(sections, s.start),
			CaseNumber:    ExtractCaseNumber(content),
			TokenEstimate: EstimateTokens(content),
		})
	}
	return pieces
}

// overlapStart returns the offset where the next chunk's overlap begins:
// roughly overlapChars before the end of the closed span, advanced to the
// next word start so the overlap never begins mid-word.
func overlapStart(text string, closed span, overlapChars int) int {
	pos := closed.end - overlapChars
	if pos <= closed.start {
		return closed.start
	}
	for pos < closed.end && !isSpace(text[pos]) {
		pos++
	}
	for pos < closed.end && isSpace(text[pos]) {
		pos++
	}
	if pos >= closed.end {
		return closed.start
	}
	return pos
}

// paragraphSpans returns the offsets of maximal runs of non-blank lines.
// Offsets always index the original text, so consecutive blank lines only
// widen the gaps between spans and never shift them.
func paragraphSpans(text string) []span {
	var spans []span
	parStart := -1
	parEnd := -1

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := lineStart
		for lineEnd < len(text) && text[lineEnd] != '\n' {
			lineEnd++
		}
		blank := isBlank(text[lineStart:lineEnd])
		if !blank {
			if parStart < 0 {
				parStart = lineStart
			}
			parEnd = lineEnd
		} else if parStart >= 0 {
			spans = append(spans, span{parStart, parEnd})
			parStart = -1
		}
		if lineEnd >= len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	if parStart >= 0 {
		spans = append(spans, span{parStart, parEnd})
	}
	return spans
}

func isBlank(line string) bool {
	for i := 0; i < len(line); i++ {
		if !isSpace(line[i]) {
			return false
		}
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
