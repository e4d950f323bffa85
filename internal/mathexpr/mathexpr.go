// Package mathexpr evaluates arithmetic expressions against a closed
// allow-list of functions and constants. The grammar is parsed by a
// dedicated recursive-descent parser; nothing outside the allow-list can
// execute, which makes the package safe for model-supplied input.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrDivisionByZero is returned for x/0 and x%0.
var ErrDivisionByZero = errors.New("Division by zero")

// NotAllowedError reports an identifier outside the allow-list.
type NotAllowedError struct {
	Word string
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("'%s' not allowed", e.Word)
}

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression at position %d: %s", e.Pos, e.Msg)
}

// Evaluate parses and evaluates expr, returning the formatted result.
func Evaluate(expr string) (string, error) {
	tokens, err := lex(expr)
	if err != nil {
		return "", err
	}
	node, err := parse(tokens)
	if err != nil {
		return "", err
	}
	value, err := node.eval()
	if err != nil {
		return "", err
	}
	return Format(value), nil
}

// Format renders a result: integral values print without a decimal point,
// everything else is rounded to ten decimal places.
func Format(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	rounded := roundTo(v, 10)
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
