package ncxlate

import (
	"os"
	"regexp"
	"strings"
)

// Block is one line of G-code after normalization: an uppercase string of
// single-space-separated word tokens, with comments, tape markers,
// block-skip lines, leading zeros and address whitespace already removed.
type Block string

// BlockSource reads raw G-code text and normalizes it into an ordered
// sequence of canonical Blocks, recording the N-number to block-index
// mapping. It performs no semantic validation; malformed words surface at
// interpret time.
type BlockSource struct {
	Blocks          []Block
	sequenceNumbers map[int]int
}

var (
	inlineCommentRe  = regexp.MustCompile(`\s*\([^()]*\)\s*`)
	eolCommentRe     = regexp.MustCompile(`;.*$`)
	addressSpacingRe = regexp.MustCompile(`\b([A-Z])\s*([0-9.-]+)\b`)
	leadingZerosRe   = regexp.MustCompile(`\b([A-Z])0+([0-9])`)
	sequenceNumberRe = regexp.MustCompile(`^\s*N(\d+)\s*`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
)

// NewBlockSourceFromString normalizes an in-memory G-code program, applying
// the normalization pipeline in order: load+trim, tape markers, inline
// comments, end-of-line comments, block-skip, address whitespace, leading
// zeros, sequence numbers. Each step is idempotent; running the whole
// pipeline twice is a no-op the second time.
func NewBlockSourceFromString(source string) *BlockSource {
	lines := loadAndTrim(source)    // 1
	lines = stripTapeMarkers(lines) // 2
	for i, l := range lines {
		l = stripInlineComments(l) // 3
		l = stripEOLComments(l)    // 4
		lines[i] = l
	}
	lines = dropEmpty(lines)            // a line that was pure comment vanishes
	lines = removeBlockSkipLines(lines) // 5
	for i, l := range lines {
		l = strings.ToUpper(l)                           // address regexes below match uppercase letters only
		l = addressSpacingRe.ReplaceAllString(l, "$1$2") // 6
		l = leadingZerosRe.ReplaceAllString(l, "$1$2")   // 7
		l = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(l, " "))
		lines[i] = l
	}
	sequenceNumbers, lines := extractSequenceNumbers(lines) // 8

	blocks := make([]Block, len(lines))
	for i, l := range lines {
		blocks[i] = Block(strings.ToUpper(l))
	}
	return &BlockSource{Blocks: blocks, sequenceNumbers: sequenceNumbers}
}

// NewBlockSourceFromFile reads and normalizes a G-code file.
func NewBlockSourceFromFile(path string) (*BlockSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewBlockSourceFromString(string(data)), nil
}

// BlockIndex returns the block index recorded for sequence number n, and
// whether that sequence number was seen.
func (bs *BlockSource) BlockIndex(n int) (int, bool) {
	i, ok := bs.sequenceNumbers[n]
	return i, ok
}

// loadAndTrim strips surrounding whitespace from every raw line and drops
// every line that is empty after trimming.
func loadAndTrim(source string) []string {
	rawLines := strings.Split(source, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		l = strings.TrimSpace(strings.TrimRight(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func dropEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func stripTapeMarkers(lines []string) []string {
	if len(lines) > 0 && strings.HasPrefix(lines[0], "%") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "%") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// stripInlineComments repeatedly removes (…) spans (no nested parens) until
// a full pass makes no change, handling multiple comments per line.
func stripInlineComments(line string) string {
	for {
		next := strings.TrimSpace(inlineCommentRe.ReplaceAllString(line, " "))
		if next == line {
			return line
		}
		line = next
	}
}

func stripEOLComments(line string) string {
	return eolCommentRe.ReplaceAllString(line, "")
}

func removeBlockSkipLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" || t[0] != '/' {
			out = append(out, l)
		}
	}
	return out
}

// extractSequenceNumbers strips a leading N<digits> word from every line
// that has one, recording int(n) -> resulting block index.
func extractSequenceNumbers(lines []string) (map[int]int, []string) {
	seq := make(map[int]int)
	for i, l := range lines {
		m := sequenceNumberRe.FindStringSubmatchIndex(l)
		if m == nil {
			continue
		}
		n := 0
		for _, c := range l[m[2]:m[3]] {
			n = n*10 + int(c-'0')
		}
		seq[n] = i
		lines[i] = l[m[1]:]
	}
	return seq, lines
}
