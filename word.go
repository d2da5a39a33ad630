package ncxlate

import (
	"fmt"
	"strconv"
)

// Word is a letter address immediately followed by a signed decimal, e.g.
// "X10" or "G90.1". The numeric text is kept verbatim (post leading-zero
// stripping) alongside the parsed value so G/M dispatch can match on the
// exact code (distinguishing G90 from G90.1) without float-equality games.
type Word struct {
	Letter byte
	Value  float64
	text   string
}

// parseWord parses a single canonical token into a Word. The token must
// already be free of internal whitespace (the BlockSource guarantees this).
func parseWord(tok string) (Word, error) {
	if len(tok) < 2 {
		return Word{}, fmt.Errorf("malformed word %q: too short", tok)
	}
	letter := tok[0]
	if letter < 'A' || letter > 'Z' {
		return Word{}, fmt.Errorf("malformed word %q: address is not a letter", tok)
	}
	rest := tok[1:]
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return Word{}, fmt.Errorf("malformed word %q: %w", tok, err)
	}
	return Word{Letter: letter, Value: v, text: rest}, nil
}

// Code returns the dispatch key for a command word, e.g. "G1", "G90.1".
func (w Word) Code() string {
	return string(w.Letter) + w.text
}

// Int truncates Value to an int, the way T<n> tool numbers and L<n> repeat
// counts are read.
func (w Word) Int() int {
	return int(w.Value)
}
