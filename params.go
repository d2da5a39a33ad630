package ncxlate

import (
	"fmt"
	"regexp"
	"strconv"
)

// ParameterTable maps #parameter ids to real numbers. Writable ids are
// 1..33, 100..199 and 500..999; all others may be read but never written.
type ParameterTable struct {
	values map[int]float64
}

// NewParameterTable returns an empty parameter table.
func NewParameterTable() ParameterTable {
	return ParameterTable{values: make(map[int]float64)}
}

// Writable reports whether id may be assigned.
func Writable(id int) bool {
	return (id >= 1 && id <= 33) || (id >= 100 && id <= 199) || (id >= 500 && id <= 999)
}

// Get returns the value stored for id, and whether it has been set.
func (p ParameterTable) Get(id int) (float64, bool) {
	v, ok := p.values[id]
	return v, ok
}

// Set stores value for id, rejecting ids outside the writable ranges.
func (p ParameterTable) Set(id int, value float64) error {
	if !Writable(id) {
		return &ParameterWriteError{ID: id}
	}
	p.values[id] = value
	return nil
}

var (
	paramAssignRe  = regexp.MustCompile(`^\s*#(\d+)\s*=\s*(.*?)\s*$`)
	paramRefRe     = regexp.MustCompile(`#(\d+)`)
	decimalLiteral = regexp.MustCompile(`^-?[0-9.]+$`)
)

// parseParameterAssignment recognizes a "#<id> = <expr>" block. ok is false
// when the block is not a parameter assignment at all.
func parseParameterAssignment(block Block) (id int, expr string, ok bool) {
	m := paramAssignRe.FindStringSubmatch(string(block))
	if m == nil {
		return 0, "", false
	}
	id, _ = strconv.Atoi(m[1])
	return id, m[2], true
}

// evalExpression accepts only a signed decimal literal; anything else is an
// ExpressionError per spec.md's "Non-goals: expression evaluation beyond
// signed decimal literals".
func evalExpression(expr string) (float64, error) {
	if !decimalLiteral.MatchString(expr) {
		return 0, &ExpressionError{Expr: expr}
	}
	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, &ExpressionError{Expr: expr}
	}
	return v, nil
}

// substituteParameters replaces every #<id> occurrence in block with its
// current value, formatted as an integer if integral, otherwise as a
// decimal with no trailing noise.
func substituteParameters(block Block, params ParameterTable) (Block, error) {
	s := string(block)
	for {
		loc := paramRefRe.FindStringSubmatchIndex(s)
		if loc == nil {
			return Block(s), nil
		}
		id, _ := strconv.Atoi(s[loc[2]:loc[3]])
		v, ok := params.Get(id)
		if !ok {
			return "", fmt.Errorf("parameter #%d is not set", id)
		}
		s = s[:loc[0]] + formatParameter(v) + s[loc[1]:]
	}
}

// formatParameter prints v as "%d" when integral, else as a trimmed decimal.
func formatParameter(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
